// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optgroup

import (
	"errors"
	"fmt"
	"strings"
)

// ExitBadUsage is the process exit status for usage errors.
const ExitBadUsage = 2

// Sentinel errors for definition problems.
var (
	// ErrInvalidPolicy is returned when a group is created with a policy
	// outside the closed set of known policies.
	ErrInvalidPolicy = errors.New("invalid option group policy")

	// ErrInvalidDecl is returned when option declarations cannot be parsed.
	ErrInvalidDecl = errors.New("invalid option declaration")

	// ErrAlreadyGrouped is returned when an option is attached to a second group.
	ErrAlreadyGrouped = errors.New("option already belongs to a group")
)

// UsageError is returned when resolved values violate a group constraint.
// Frameworks turn it into a usage banner and exit status 2.
type UsageError struct {
	Group   *Group    // The group whose constraint failed. Nil for plain flag errors.
	Options []*Option // The options named in the message.
	Msg     string
	Err     error // Underlying framework error, if any.
}

func (e *UsageError) Error() string {
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ExitCode reports the exit status for the error.
func (e *UsageError) ExitCode() int {
	return ExitBadUsage
}

// AttrError is returned when an option sets an attribute its group's policy
// does not allow.
type AttrError struct {
	Attr   string
	Policy Policy
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("'%s' attribute is not allowed for '%s' options", e.Attr, e.Policy)
}

// OrderError is returned when a plain option is declared between grouped
// options that are still waiting for their group.
type OrderError struct {
	Command string   // May be empty when the command has no name yet.
	Decls   []string // Declarations of the interleaved option.
}

func (e *OrderError) Error() string {
	msg := fmt.Sprintf("grouped options must not be mixed with other options. Check decorator position for %v option", e.Decls)
	if e.Command != "" {
		msg += fmt.Sprintf(" in '%s'", e.Command)
	}
	return msg
}

// MissingGroupError is returned when grouped options were declared but no
// group was declared to collect them.
type MissingGroupError struct {
	Command string
	Options []*Option
}

func (e *MissingGroupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Missing option group decorator in '%s' command for the following grouped options:", e.Command)
	for _, o := range e.Options {
		b.WriteString("\n  ")
		b.WriteString(o.ErrorHint())
	}
	return b.String()
}

func hints(opts []*Option, sep string) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.ErrorHint()
	}
	return strings.Join(parts, sep)
}
