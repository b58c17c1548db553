// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optgroup models option groups: named sets of command-line options
// that are shown together in help output and validated together after
// parsing.
//
// A group carries one Policy from a closed set:
//   - NoConstraint: grouping for help output only
//   - RequiredAny: at least one option must be given
//   - RequiredAll: every option must be given
//   - MutuallyExclusive: at most one option may be given
//   - RequiredMutuallyExclusive: exactly one option must be given
//
// The package does not parse command lines. Frameworks resolve values,
// build a Values map keyed by option destination and call Group.Validate.
// See package cobraopt for the cobra/pflag binding and package yargsopt for
// yargs structs.
//
// # Usage
//
//	g, err := optgroup.New("Output", optgroup.WithPolicy(optgroup.MutuallyExclusive))
//	if err != nil {
//	    return err
//	}
//	if err := g.Add(&optgroup.Option{Decls: []string{"--json"}}); err != nil {
//	    return err
//	}
//	if err := g.Add(&optgroup.Option{Decls: []string{"--yaml"}}); err != nil {
//	    return err
//	}
//	err = g.Validate(optgroup.Values{"json": "true", "yaml": "true"})
//	// err is a *UsageError:
//	// The given mutually exclusive options cannot be used at the same time: "--json", "--yaml"
//
// # Help Titles
//
// A group without a name is titled from its destinations, "(json|yaml)".
// Policies add bracketed tags: "Output [mutually_exclusive]".
package optgroup
