// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cobraopt attaches option groups to cobra commands.
//
// Options are declared either in reading order through a Builder, which
// collects them until the group that owns them is declared, or attached
// to an existing group with AddOption. Either way each option becomes a
// pflag flag on the command, listed in help under its group's title and
// checked against the group's policy before the command runs.
//
//	cmd := &cobra.Command{Use: "deploy", RunE: run}
//	b := cobraopt.NewBuilder(cmd)
//	b.Option(&optgroup.Option{Decls: []string{"--host"}, Help: "Target host"})
//	b.Option(&optgroup.Option{Decls: []string{"--fleet"}, Help: "Target fleet"})
//	b.Group("Target", optgroup.WithPolicy(optgroup.RequiredMutuallyExclusive))
//	if err := b.Finish(); err != nil {
//	    log.Fatal(err)
//	}
//	os.Exit(cobraopt.Execute(cmd))
//
// Grouped flags are local to the command they are bound to.
package cobraopt
