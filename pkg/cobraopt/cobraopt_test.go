// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(cmd *cobra.Command, args ...string) result {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	code := Execute(cmd)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func opt(decls ...string) *optgroup.Option {
	return &optgroup.Option{Decls: decls, Help: strings.TrimLeft(decls[0], "-") + " help"}
}

// twoGroupCLI declares hello, Group 1 (foo1, bar1), lol, Group 2 (foo2,
// bar2) with policy2 and goodbye, in that order. got receives the resolved
// values.
func twoGroupCLI(t *testing.T, got map[string]string, policy2 optgroup.Policy) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{
		Use: "cli",
		RunE: func(c *cobra.Command, _ []string) error {
			b, _ := Lookup(c)
			for k, v := range b.Values() {
				got[k] = fmt.Sprint(v)
			}
			return nil
		},
	}
	b := NewBuilder(cmd)
	cmd.Flags().String("hello", "", "hello help")
	require.NoError(t, b.Option(opt("--foo1")))
	require.NoError(t, b.Option(opt("--bar1")))
	_, err := b.Group("Group 1", optgroup.WithHelp("Group 1 description"))
	require.NoError(t, err)
	cmd.Flags().String("lol", "", "lol help")
	require.NoError(t, b.Option(opt("--foo2")))
	require.NoError(t, b.Option(opt("--bar2")))
	_, err = b.Group("Group 2", optgroup.WithHelp("Group 2 description"), optgroup.WithPolicy(policy2))
	require.NoError(t, err)
	cmd.Flags().String("goodbye", "", "goodbye help")
	require.NoError(t, b.Finish())
	return cmd
}

func TestHelpShowsGroupSections(t *testing.T) {
	res := run(twoGroupCLI(t, map[string]string{}, optgroup.RequiredAny), "--help")
	require.Equal(t, 0, res.code, res.stderr)

	out := res.stdout
	for _, want := range []string{"Flags:", "--hello", "--lol", "--goodbye",
		"Group 1:", "Group 1 description", "--foo1", "--bar1",
		"Group 2 [required_any]:", "Group 2 description", "--foo2", "--bar2"} {
		assert.Contains(t, out, want)
	}
	flags := strings.Index(out, "Flags:")
	g1 := strings.Index(out, "Group 1:")
	g2 := strings.Index(out, "Group 2 [required_any]:")
	assert.True(t, flags < g1 && g1 < g2, "sections out of order:\n%s", out)
	assert.Less(t, strings.Index(out, "--goodbye"), g1, "ungrouped flag listed under a group")
	assert.Greater(t, strings.Index(out, "--foo1"), g1, "grouped flag listed with ungrouped flags")
	assert.Less(t, strings.Index(out, "--foo1"), strings.Index(out, "--bar1"), "member order not kept")
}

func TestInvokeResolvesGroupedValues(t *testing.T) {
	got := map[string]string{}
	res := run(twoGroupCLI(t, got, optgroup.RequiredAny), "--foo1", "a", "--bar2", "b", "--hello", "h")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, map[string]string{"foo1": "a", "bar2": "b"}, got)

	res = run(twoGroupCLI(t, map[string]string{}, optgroup.RequiredAny), "--hello", "h")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `Missing one of the required options from "Group 2" option group: "--foo2" or "--bar2"`)
}

func TestDefaultGroupsResolveAllValues(t *testing.T) {
	got := map[string]string{}
	cmd := twoGroupCLI(t, got, optgroup.NoConstraint)
	res := run(cmd, "--foo1", "1", "--bar1", "2", "--foo2", "3", "--bar2", "4")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stderr)
	assert.Equal(t, map[string]string{"foo1": "1", "bar1": "2", "foo2": "3", "bar2": "4"}, got)

	help := run(twoGroupCLI(t, map[string]string{}, optgroup.NoConstraint), "--help").stdout
	g1 := strings.Index(help, "Group 1:")
	g2 := strings.Index(help, "Group 2:")
	assert.True(t, g1 >= 0 && g1 < g2, "group sections missing or out of order:\n%s", help)
	assert.Less(t, strings.Index(help, "Group 1 description"), g2)
}

func TestUnnamedGroupTitle(t *testing.T) {
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	b := NewBuilder(cmd)
	require.NoError(t, b.Option(opt("--foo")))
	require.NoError(t, b.Option(opt("--bar")))
	g, err := b.Group("")
	require.NoError(t, err)
	assert.Equal(t, "(foo|bar)", g.DisplayName())
	assert.Contains(t, UsageString(cmd), "(foo|bar):")
}

func TestOrderErrors(t *testing.T) {
	t.Run("plain flag between options", func(t *testing.T) {
		cmd := &cobra.Command{Use: "cli"}
		b := NewBuilder(cmd)
		require.NoError(t, b.Option(opt("--bar")))
		cmd.Flags().String("hello", "", "")
		err := b.Option(opt("--foo"))
		var oerr *optgroup.OrderError
		require.True(t, errors.As(err, &oerr), "error = %v", err)
		assert.Equal(t, []string{"--hello"}, oerr.Decls)
		assert.Contains(t, err.Error(), "Check decorator position for [--hello] option in 'cli'")
	})
	t.Run("plain flag before group", func(t *testing.T) {
		cmd := &cobra.Command{Use: "cli"}
		b := NewBuilder(cmd)
		require.NoError(t, b.Option(opt("--bar")))
		require.NoError(t, b.Option(opt("--foo")))
		cmd.Flags().String("hello", "", "")
		_, err := b.Group("Group")
		assert.ErrorContains(t, err, "Check decorator position for [--hello] option")
	})
	t.Run("second plain flag", func(t *testing.T) {
		cmd := &cobra.Command{Use: "cli"}
		b := NewBuilder(cmd)
		cmd.Flags().String("hello", "", "")
		require.NoError(t, b.Option(opt("--bar")))
		cmd.Flags().StringP("hello2", "x", "", "")
		err := b.Option(opt("--foo"))
		assert.ErrorContains(t, err, "Check decorator position for [--hello2 -x] option")
	})
	t.Run("persistent flag between options", func(t *testing.T) {
		cmd := &cobra.Command{Use: "cli"}
		b := NewBuilder(cmd)
		require.NoError(t, b.Option(opt("--foo")))
		cmd.PersistentFlags().String("hello", "", "")
		err := b.Option(opt("--bar"))
		assert.ErrorContains(t, err, "Check decorator position for [--hello] option in 'cli'")
	})
	t.Run("persistent flag before group", func(t *testing.T) {
		cmd := &cobra.Command{Use: "cli"}
		cmd.PersistentFlags().String("early", "", "")
		b := NewBuilder(cmd)
		require.NoError(t, b.Option(opt("--foo")))
		cmd.PersistentFlags().StringP("hello", "x", "", "")
		_, err := b.Group("G")
		assert.ErrorContains(t, err, "Check decorator position for [--hello -x] option")
	})
	t.Run("subcommand", func(t *testing.T) {
		root := &cobra.Command{Use: "cli"}
		sub := &cobra.Command{Use: "command2 [args]"}
		root.AddCommand(sub)
		b := NewBuilder(sub)
		require.NoError(t, b.Option(opt("--foo")))
		sub.Flags().String("hello", "", "")
		_, err := b.Group("")
		assert.ErrorContains(t, err, "Check decorator position for [--hello] option in 'command2'")
	})
}

func TestEmptyGroupWarns(t *testing.T) {
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	b := NewBuilder(cmd)
	var warnings []string
	b.Warnf = func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	g, err := b.Group("Group 1")
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Equal(t, []string{`The empty option group "Group 1" was found. The group will not be added.`}, warnings)

	res := run(cmd, "--help")
	assert.Equal(t, 0, res.code)
	assert.NotContains(t, res.stdout, "Group 1")
}

func TestMissingGroup(t *testing.T) {
	newCLI := func() (*cobra.Command, *Builder) {
		cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
		b := NewBuilder(cmd)
		cmd.Flags().String("hello1", "", "")
		require.NoError(t, b.Option(opt("--foo")))
		require.NoError(t, b.Option(opt("--bar")))
		return cmd, b
	}
	cmd, b := newCLI()
	var merr *optgroup.MissingGroupError
	require.True(t, errors.As(b.Finish(), &merr))
	assert.Equal(t, "cli", merr.Command)
	require.Error(t, Verify(cmd))

	for _, args := range [][]string{{"--help"}, {}, {"--hello1", "x"}, {"--foo", "foo"}} {
		cmd, _ := newCLI()
		res := run(cmd, args...)
		assert.Equal(t, 1, res.code, "args %v", args)
		assert.Contains(t, res.stderr, "Missing option group decorator in 'cli' command for the following grouped options:", "args %v", args)
		assert.Contains(t, res.stderr, `"--foo"`, "args %v", args)
		assert.Contains(t, res.stderr, `"--bar"`, "args %v", args)
		assert.NotContains(t, res.stdout, "Usage:", "args %v", args)
	}
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		policy  optgroup.Policy
		args    []string
		code    int
		message string
	}{
		{optgroup.RequiredAll, nil, 2, `Missing required options from "Group" option group: "--foo", "--bar"`},
		{optgroup.RequiredAll, []string{"--foo", "1"}, 2, `Missing required options from "Group" option group: "--bar"`},
		{optgroup.RequiredAll, []string{"--foo", "1", "--bar", "2"}, 0, ""},
		{optgroup.RequiredAny, nil, 2, `Missing one of the required options from "Group" option group: "--foo" or "--bar"`},
		{optgroup.RequiredAny, []string{"--bar", "2"}, 0, ""},
		{optgroup.MutuallyExclusive, nil, 0, ""},
		{optgroup.MutuallyExclusive, []string{"--foo", "1", "--bar", "2"}, 2, `The given mutually exclusive options cannot be used at the same time: "--foo", "--bar"`},
		{optgroup.RequiredMutuallyExclusive, nil, 2, `Missing one of the required mutually exclusive options from "Group" option group: "--foo" or "--bar"`},
		{optgroup.RequiredMutuallyExclusive, []string{"--foo", "1"}, 0, ""},
		{optgroup.NoConstraint, nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v %v", tt.policy, tt.args), func(t *testing.T) {
			ran := false
			cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) { ran = true }}
			b := NewBuilder(cmd)
			require.NoError(t, b.Option(opt("--foo")))
			require.NoError(t, b.Option(opt("--bar")))
			_, err := b.Group("Group", optgroup.WithPolicy(tt.policy))
			require.NoError(t, err)

			res := run(cmd, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
			assert.Equal(t, tt.code == 0, ran)
			if tt.message == "" {
				return
			}
			want := "Usage: cli [flags]\nTry 'cli --help' for help.\n\nError: " + tt.message + "\n"
			assert.Equal(t, want, res.stderr)
		})
	}
}

func TestForbiddenRequired(t *testing.T) {
	for _, p := range []optgroup.Policy{optgroup.MutuallyExclusive, optgroup.RequiredMutuallyExclusive} {
		cmd := &cobra.Command{Use: "cli"}
		b := NewBuilder(cmd)
		require.NoError(t, b.Option(&optgroup.Option{Decls: []string{"--foo"}, Required: true}))
		_, err := b.Group("", optgroup.WithPolicy(p))
		assert.EqualError(t, err, fmt.Sprintf("'required' attribute is not allowed for '%v' options", p))
		assert.Nil(t, cmd.Flags().Lookup("foo"))
	}
}

func TestRequiredMember(t *testing.T) {
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	b := NewBuilder(cmd)
	require.NoError(t, b.Option(&optgroup.Option{Decls: []string{"--foo"}, Required: true}))
	require.NoError(t, b.Option(opt("--bar")))
	_, err := b.Group("Group")
	require.NoError(t, err)

	res := run(cmd, "--bar", "x")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `Error: Missing option "--foo"`)
}

func TestReuseGroupAcrossCommands(t *testing.T) {
	newCLI := func() *cobra.Command {
		root := &cobra.Command{Use: "cli"}
		cmd1 := &cobra.Command{Use: "command1", Run: func(*cobra.Command, []string) {}}
		cmd2 := &cobra.Command{Use: "command2", Run: func(*cobra.Command, []string) {}}
		root.AddCommand(cmd1, cmd2)
		g, err := optgroup.New("", optgroup.WithPolicy(optgroup.RequiredAny))
		require.NoError(t, err)
		require.NoError(t, AddOption(cmd1, g, opt("--foo")))
		require.NoError(t, AddOption(cmd1, g, opt("--bar")))
		require.NoError(t, AddOption(cmd2, g, opt("--foo1")))
		require.NoError(t, AddOption(cmd2, g, opt("--bar1")))
		return root
	}

	res := run(newCLI(), "command1", "--help")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "(foo|bar) [required_any]:")
	assert.NotContains(t, res.stdout, "--foo1")

	res = run(newCLI(), "command2")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `"--foo1" or "--bar1"`)
	assert.Contains(t, res.stderr, "Usage: cli command2 [flags]")

	res = run(newCLI(), "command1", "--bar", "x")
	assert.Equal(t, 0, res.code, res.stderr)
}

func TestAddRejectsDefinedFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "cli"}
	cmd.Flags().StringP("foo", "f", "", "")
	g, err := optgroup.New("G")
	require.NoError(t, err)
	assert.ErrorIs(t, AddOption(cmd, g, opt("--foo")), optgroup.ErrInvalidDecl)
	assert.ErrorIs(t, AddOption(cmd, g, opt("--other", "-f")), optgroup.ErrInvalidDecl)
	assert.Empty(t, g.Options())
}

func TestAddRejectsSharedDestination(t *testing.T) {
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	b := NewBuilder(cmd)
	require.NoError(t, b.Option(opt("--a-b")))
	_, err := b.Group("G1", optgroup.WithPolicy(optgroup.RequiredAny))
	require.NoError(t, err)
	require.NoError(t, b.Option(opt("--other", "a_b")))
	_, err = b.Group("G2")
	assert.ErrorIs(t, err, optgroup.ErrInvalidDecl)
	assert.ErrorContains(t, err, `destination "a_b" is already used by "--a-b" on 'cli'`)
	assert.Nil(t, cmd.Flags().Lookup("other"))

	g3, err := optgroup.New("G3")
	require.NoError(t, err)
	assert.ErrorIs(t, AddOption(cmd, g3, opt("--x", "a_b")), optgroup.ErrInvalidDecl)

	res := run(cmd)
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `Missing one of the required options from "G1" option group: "--a-b"`)
}

func TestAddRejectsPersistentFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "cli"}
	cmd.PersistentFlags().StringP("foo", "f", "", "")
	g, err := optgroup.New("G")
	require.NoError(t, err)
	assert.ErrorIs(t, AddOption(cmd, g, opt("--foo")), optgroup.ErrInvalidDecl)
	assert.ErrorIs(t, AddOption(cmd, g, opt("--other", "-f")), optgroup.ErrInvalidDecl)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	res := run(cmd, "--nope")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Error: unknown flag: --nope")
}

func TestTypedValues(t *testing.T) {
	var (
		asJSON  bool
		verbose int
		tags    []string
	)
	cmd := &cobra.Command{Use: "cli", Run: func(*cobra.Command, []string) {}}
	b := NewBuilder(cmd)
	require.NoError(t, b.Option(&optgroup.Option{Decls: []string{"--json"}, Value: Bool(&asJSON, false)}))
	require.NoError(t, b.Option(&optgroup.Option{Decls: []string{"--verbose", "-v"}, Value: Count(&verbose)}))
	require.NoError(t, b.Option(&optgroup.Option{Decls: []string{"--tag"}, Value: StringSlice(&tags, nil)}))
	_, err := b.Group("Output")
	require.NoError(t, err)

	res := run(cmd, "--json", "-v", "-v", "--tag", "a,b", "--tag", "c")
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, asJSON)
	assert.Equal(t, 2, verbose)
	assert.Equal(t, []string{"a", "b", "c"}, tags)
}

func TestPreRunKept(t *testing.T) {
	var calls []string
	cmd := &cobra.Command{
		Use:    "cli",
		PreRun: func(*cobra.Command, []string) { calls = append(calls, "prerun") },
		Run:    func(*cobra.Command, []string) { calls = append(calls, "run") },
	}
	b := NewBuilder(cmd)
	require.NoError(t, b.Option(opt("--foo")))
	_, err := b.Group("G", optgroup.WithPolicy(optgroup.RequiredAny))
	require.NoError(t, err)

	assert.Equal(t, 2, run(cmd).code)
	assert.Empty(t, calls)
	assert.Equal(t, 0, run(cmd, "--foo", "x").code)
	assert.Equal(t, []string{"prerun", "run"}, calls)
}

func TestBindIsIdempotent(t *testing.T) {
	cmd := &cobra.Command{Use: "cli"}
	b1 := Bind(cmd)
	b2 := Bind(cmd)
	assert.Same(t, b1, b2)
	got, ok := Lookup(cmd)
	assert.True(t, ok)
	assert.Same(t, b1, got)
	_, ok = Lookup(&cobra.Command{})
	assert.False(t, ok)
}

func TestVerifyNamesEveryCommand(t *testing.T) {
	root := &cobra.Command{Use: "cli"}
	sub := &cobra.Command{Use: "sub", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(sub)
	require.NoError(t, Verify(root))

	b := NewBuilder(sub)
	require.NoError(t, b.Option(opt("--foo")))
	err := Verify(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in 'sub' command")
}

func TestUnbind(t *testing.T) {
	root := &cobra.Command{Use: "cli"}
	sub := &cobra.Command{Use: "sub", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(sub)
	Bind(root)
	Bind(sub)

	Unbind(root)
	_, ok := Lookup(root)
	assert.False(t, ok)
	_, ok = Lookup(sub)
	assert.False(t, ok)
}
