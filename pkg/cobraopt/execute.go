// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

// ExitError ends a command with Code without printing anything. Use it
// when the command has already reported the problem.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the command tree containing cmd and returns the process
// exit status.
func Execute(cmd *cobra.Command) int {
	return ExecuteContext(context.Background(), cmd)
}

// ExecuteContext runs the command tree containing cmd with ctx. Usage
// errors, including group constraint failures, print a usage banner to
// stderr and return 2. Other errors print "Error: <msg>" and return 1.
func ExecuteContext(ctx context.Context, cmd *cobra.Command) int {
	root := cmd.Root()
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetFlagErrorFunc(flagError)
	walk(root, func(b *Binding) { b.helpErr = nil })
	c, err := root.ExecuteContextC(ctx)
	if c == nil {
		c = root
	}
	if err == nil {
		code := 0
		walk(root, func(b *Binding) {
			if b.helpErr != nil {
				code = 1
			}
		})
		return code
	}
	var xerr *ExitError
	if errors.As(err, &xerr) {
		return xerr.Code
	}
	w := c.ErrOrStderr()
	var uerr *optgroup.UsageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(w, "Usage: %s\n", c.UseLine())
		fmt.Fprintf(w, "Try '%s --help' for help.\n\n", c.CommandPath())
		fmt.Fprintf(w, "Error: %s\n", uerr.Msg)
		return uerr.ExitCode()
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// Verify reports options left without a group on root or any of its
// descendants. The returned error wraps one *optgroup.MissingGroupError
// per affected command.
func Verify(root *cobra.Command) error {
	var errs *multierror.Error
	walk(root, func(b *Binding) {
		if err := b.Pending(); err != nil {
			errs = multierror.Append(errs, err)
		}
	})
	return errs.ErrorOrNil()
}

// walk calls fn for the binding of c and of each bound descendant.
func walk(c *cobra.Command, fn func(*Binding)) {
	if b, ok := Lookup(c); ok {
		fn(b)
	}
	for _, sub := range c.Commands() {
		walk(sub, fn)
	}
}
