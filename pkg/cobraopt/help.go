// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/optgroup/pkg/optgroup"
	"github.com/yeetrun/optgroup/pkg/tui"
)

// Help is the cobra help func installed by Bind. If the command has
// options that were never attached to a group it prints that error instead
// of the help text; Execute reports it with exit status 1.
func Help(c *cobra.Command, _ []string) {
	if b, ok := Lookup(c); ok {
		b.helpErr = b.Pending()
		if b.helpErr != nil {
			fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", b.helpErr)
			return
		}
	}
	w := c.OutOrStdout()
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}
	if desc = strings.TrimRight(desc, " \t\r\n"); desc != "" {
		fmt.Fprintf(w, "%s\n\n", desc)
	}
	if c.Runnable() || c.HasSubCommands() {
		writeUsage(w, c)
	}
}

// Usage is the cobra usage func installed by Bind.
func Usage(c *cobra.Command) error {
	writeUsage(c.OutOrStderr(), c)
	return nil
}

// UsageString renders the usage of c, including its group sections.
func UsageString(c *cobra.Command) string {
	var sb strings.Builder
	writeUsage(&sb, c)
	return sb.String()
}

func writeUsage(w io.Writer, c *cobra.Command) {
	col := tui.ForWriter(w)
	width := tui.Width(w)

	fmt.Fprintln(w, col.Heading("Usage:"))
	if c.Runnable() {
		fmt.Fprintf(w, "  %s\n", c.UseLine())
	}
	if c.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s [command]\n", c.CommandPath())
	}
	if len(c.Aliases) > 0 {
		fmt.Fprintf(w, "\n%s\n  %s\n", col.Heading("Aliases:"), c.NameAndAliases())
	}
	if c.HasExample() {
		fmt.Fprintf(w, "\n%s\n%s\n", col.Heading("Examples:"), c.Example)
	}
	if c.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", col.Heading("Available Commands:"))
		for _, sub := range c.Commands() {
			if sub.IsAvailableCommand() || sub.Name() == "help" {
				fmt.Fprintf(w, "  %-*s %s\n", c.NamePadding(), sub.Name(), sub.Short)
			}
		}
	}

	if local := ungroupedFlags(c); local.HasAvailableFlags() {
		fmt.Fprintf(w, "\n%s\n%s\n", col.Heading("Flags:"), trimRight(local.FlagUsagesWrapped(width)))
	}
	if b, ok := Lookup(c); ok {
		for _, g := range b.Groups() {
			writeGroup(w, col, width, c, g)
		}
	}
	if c.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n%s\n", col.Heading("Global Flags:"), trimRight(c.InheritedFlags().FlagUsagesWrapped(width)))
	}

	var topics []*cobra.Command
	for _, sub := range c.Commands() {
		if sub.IsAdditionalHelpTopicCommand() {
			topics = append(topics, sub)
		}
	}
	if len(topics) > 0 {
		fmt.Fprintf(w, "\n%s\n", col.Heading("Additional help topics:"))
		for _, sub := range topics {
			fmt.Fprintf(w, "  %-*s %s\n", c.CommandPathPadding(), sub.CommandPath(), sub.Short)
		}
	}
	if c.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\nUse \"%s [command] --help\" for more information about a command.\n", c.CommandPath())
	}
}

// writeGroup renders one group section: its title, the indented help and
// the member flags in the order they were attached.
func writeGroup(w io.Writer, col tui.Colorizer, width int, c *cobra.Command, g *optgroup.Group) {
	fs := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)
	fs.SortFlags = false
	for _, o := range g.Options() {
		if f := c.Flags().Lookup(o.Name()); f != nil {
			fs.AddFlag(f)
		}
	}
	if !fs.HasAvailableFlags() {
		return
	}
	fmt.Fprintf(w, "\n%s\n", col.Heading(g.Title()+":"))
	if g.Help() != "" {
		fmt.Fprintf(w, "  %s\n", col.Dim(g.Help()))
	}
	fmt.Fprintln(w, trimRight(fs.FlagUsagesWrapped(width)))
}

// ungroupedFlags returns the local flags of c that no binding registered.
func ungroupedFlags(c *cobra.Command) *pflag.FlagSet {
	local := c.LocalFlags()
	fs := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)
	fs.SortFlags = local.SortFlags
	local.VisitAll(func(f *pflag.Flag) {
		if !IsGrouped(f) {
			fs.AddFlag(f)
		}
	})
	return fs
}

func trimRight(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}
