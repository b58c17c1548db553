// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command optgroup checks command lines against option group specs so
// shell scripts can use grouped options.
//
//	optgroup check -f deploy.toml -- --host web1 --image app:1
//	optgroup describe -f deploy.toml
//	optgroup lint -f deploy.toml
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/yeetrun/optgroup/pkg/cobraopt"
	"github.com/yeetrun/optgroup/pkg/optgroup"
	"github.com/yeetrun/optgroup/pkg/tui"
	"github.com/yeetrun/optgroup/pkg/yargsopt"
)

type globalFlagsParsed struct {
	Color   bool `flag:"color" group:"Color" help:"Always color help output"`
	NoColor bool `flag:"no-color" group:"Color" help:"Never color help output (NO_COLOR)"`
}

var globalGroups = mustGroups(globalFlagsParsed{}, map[string]optgroup.Policy{
	"Color": optgroup.MutuallyExclusive,
})

func mustGroups(flags any, policies map[string]optgroup.Policy) []*optgroup.Group {
	groups, err := yargsopt.Groups(flags, policies)
	if err != nil {
		panic(err)
	}
	return groups
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	result, err := yargsopt.Parse[globalFlagsParsed](args, globalGroups...)
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

func applyGlobalUIFlags(flags globalFlagsParsed) {
	switch {
	case flags.Color:
		on := true
		tui.SetOverride(&on)
	case flags.NoColor:
		off := false
		tui.SetOverride(&off)
	}
}

// run executes the optgroup CLI and returns its exit status.
func run(args []string, stdout, stderr io.Writer) int {
	globalFlags, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var uerr *optgroup.UsageError
		if errors.As(err, &uerr) {
			return uerr.ExitCode()
		}
		return 1
	}
	applyGlobalUIFlags(globalFlags)

	root := newRootCmd()
	root.SetArgs(remaining)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return cobraopt.Execute(root)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("optgroup: ")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
