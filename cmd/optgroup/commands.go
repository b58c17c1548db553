// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/yeetrun/optgroup/pkg/cobraopt"
	"github.com/yeetrun/optgroup/pkg/env"
	"github.com/yeetrun/optgroup/pkg/groupspec"
	"github.com/yeetrun/optgroup/pkg/optgroup"
	"github.com/yeetrun/optgroup/pkg/version"
)

const specEnv = "OPTGROUP_SPEC"

func newRootCmd() *cobra.Command {
	var specFile string
	root := &cobra.Command{
		Use:   "optgroup",
		Short: "Check command lines against option group specs",
		Long: "optgroup parses a command line against a spec file that declares options\n" +
			"and option groups, enforces the group constraints and prints the values.",
	}
	root.PersistentFlags().StringVarP(&specFile, "file", "f", "", "Spec file (default $"+specEnv+", then optgroup.toml/yaml in parent dirs)")
	load := func() (*groupspec.Spec, error) {
		path, err := specPath(specFile)
		if err != nil {
			return nil, err
		}
		return groupspec.Load(path)
	}
	root.AddCommand(
		newCheckCmd(load),
		newDescribeCmd(load),
		newLintCmd(load),
		newVersionCmd(),
	)
	return root
}

func specPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv(specEnv); p != "" {
		return p, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	p, err := groupspec.Find(cwd)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("no spec file: use -f or set %s", specEnv)
	}
	return p, err
}

type checkFlags struct {
	json   bool
	env    bool
	prefix string
	out    string
}

func newCheckCmd(load func() (*groupspec.Spec, error)) *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check [flags] -- [ARGS...]",
		Short: "Parse ARGS against the spec file and print the resolved values",
		Example: "  eval \"$(optgroup check -f deploy.toml -- \"$@\")\"\n" +
			"  optgroup check -f deploy.toml --json -- --host web1",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, load, flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.prefix, "prefix", "OPT", "Variable name prefix for env output")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Write env output to `FILE` instead of stdout")

	b := cobraopt.NewBuilder(cmd)
	must(b.Option(&optgroup.Option{Decls: []string{"--env"}, Help: "Print KEY='value' lines (default)", Value: cobraopt.Bool(&flags.env, false)}))
	must(b.Option(&optgroup.Option{Decls: []string{"--json"}, Help: "Print a JSON object", Value: cobraopt.Bool(&flags.json, false)}))
	_, err := b.Group("Output", optgroup.WithPolicy(optgroup.MutuallyExclusive))
	must(err)
	must(b.Finish())
	return cmd
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

type checkResult struct {
	Values map[string]string `json:"values"`
	Given  []string          `json:"given"`
	Args   []string          `json:"args"`
}

func runCheck(cmd *cobra.Command, load func() (*groupspec.Spec, error), flags checkFlags, args []string) error {
	s, err := load()
	if err != nil {
		return err
	}
	s.Warnf = warnTo(cmd.ErrOrStderr())
	built, err := s.Build()
	if err != nil {
		return err
	}
	defer cobraopt.Unbind(built.Cobra)
	built.Cobra.SetArgs(append([]string{}, args...))
	built.Cobra.SetOut(cmd.ErrOrStderr())
	built.Cobra.SetErr(cmd.ErrOrStderr())
	if code := cobraopt.ExecuteContext(cmd.Context(), built.Cobra); code != 0 {
		return &cobraopt.ExitError{Code: code}
	}
	if !built.Ran {
		// Help was requested.
		return nil
	}

	w := cmd.OutOrStdout()
	if flags.json {
		res := checkResult{Values: built.Resolved(), Given: built.Given(), Args: built.Args}
		if res.Given == nil {
			res.Given = []string{}
		}
		if res.Args == nil {
			res.Args = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if flags.out != "" {
		return env.WriteFile(flags.out, flags.prefix, built.Resolved())
	}
	return env.Write(w, flags.prefix, built.Resolved())
}

func newDescribeCmd(load func() (*groupspec.Spec, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the help of the spec'd command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			s.Warnf = warnTo(cmd.ErrOrStderr())
			built, err := s.Build()
			if err != nil {
				return err
			}
			defer cobraopt.Unbind(built.Cobra)
			built.Cobra.InitDefaultHelpFlag()
			built.Cobra.SetOut(cmd.OutOrStdout())
			built.Cobra.SetErr(cmd.ErrOrStderr())
			return built.Cobra.Help()
		},
	}
}

func newLintCmd(load func() (*groupspec.Spec, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Report every problem in the spec file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load()
			if err != nil {
				return reportAll(cmd.ErrOrStderr(), err)
			}
			if err := s.Validate(); err != nil {
				return reportAll(cmd.ErrOrStderr(), err)
			}
			s.Warnf = warnTo(cmd.ErrOrStderr())
			if _, err := s.Build(); err != nil {
				return reportAll(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// reportAll prints one line per aggregated error and ends the command
// with status 1.
func reportAll(w io.Writer, err error) error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Fprintf(w, "Error: %v\n", e)
		}
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return &cobraopt.ExitError{Code: 1}
}

func warnTo(w io.Writer) func(string, ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, "Warning: "+format+"\n", args...)
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the optgroup version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintln(w, version.Version())
				return nil
			}
			return json.NewEncoder(w).Encode(version.Read())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
