// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optgroup

import (
	"fmt"
	"slices"
	"strings"
)

// Group is a named set of options rendered and validated together.
type Group struct {
	name    string
	help    string
	policy  Policy
	options []*Option
	parent  *Group // Set on scoped views.
}

// GroupOption configures a Group in New.
type GroupOption func(*Group)

// WithHelp sets the group description shown under its help header.
func WithHelp(help string) GroupOption {
	return func(g *Group) { g.help = help }
}

// WithPolicy sets the group's validation policy.
func WithPolicy(p Policy) GroupOption {
	return func(g *Group) { g.policy = p }
}

// New creates an empty group. An empty name means the help header is
// derived from the option destinations.
func New(name string, opts ...GroupOption) (*Group, error) {
	g := &Group{name: name}
	for _, opt := range opts {
		opt(g)
	}
	if !g.policy.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, g.policy)
	}
	return g, nil
}

// Name returns the explicit group name, or "" if none was set.
func (g *Group) Name() string { return g.name }

// Help returns the group description, or "".
func (g *Group) Help() string { return g.help }

// Policy returns the group's validation policy.
func (g *Group) Policy() Policy { return g.policy }

// Options returns the group's options in attach order.
func (g *Group) Options() []*Option {
	return slices.Clone(g.options)
}

// NameExtra returns the policy tags shown after the group title.
func (g *Group) NameExtra() []string {
	return g.policy.NameExtra()
}

// Add attaches o to the group. It fails if o cannot be parsed, already
// belongs to a group, sets an attribute the policy forbids, or reuses a
// destination of another member.
func (g *Group) Add(o *Option) error {
	if g.parent != nil {
		return fmt.Errorf("cannot add options to a scoped view of group %q", g.DisplayName())
	}
	if o == nil {
		return fmt.Errorf("%w: nil option", ErrInvalidDecl)
	}
	if o.group != nil {
		return fmt.Errorf("%w: %s is in group %q", ErrAlreadyGrouped, o.ErrorHint(), o.group.DisplayName())
	}
	if err := o.parse(); err != nil {
		return err
	}
	for _, attr := range g.policy.ForbiddenAttrs() {
		if o.attrSet(attr) {
			return &AttrError{Attr: attr, Policy: g.policy}
		}
	}
	for _, m := range g.options {
		if m.dest == o.dest {
			return fmt.Errorf("%w: destination %q is already used by %s", ErrInvalidDecl, o.dest, m.ErrorHint())
		}
	}
	o.group = g
	g.options = append(g.options, o)
	return nil
}

// DisplayName returns the group name, or "(dest1|dest2)" built from the
// member destinations when the group has no name.
func (g *Group) DisplayName() string {
	if g.name != "" {
		return g.name
	}
	dests := make([]string, len(g.options))
	for i, o := range g.options {
		dests[i] = o.Dest()
	}
	return "(" + strings.Join(dests, "|") + ")"
}

// Title returns the help header: the display name followed by the policy
// tags in brackets, e.g. "Group 1 [required_any]".
func (g *Group) Title() string {
	extra := g.NameExtra()
	if len(extra) == 0 {
		return g.DisplayName()
	}
	return fmt.Sprintf("%s [%s]", g.DisplayName(), strings.Join(extra, ", "))
}

// Scope returns a view of g restricted to opts, which must be members of
// g. Views share name, help and policy with g; they are used when one
// group spans several commands.
func (g *Group) Scope(opts []*Option) *Group {
	root := g
	if g.parent != nil {
		root = g.parent
	}
	view := &Group{name: root.name, help: root.help, policy: root.policy, parent: root}
	for _, o := range opts {
		if o.group == root {
			view.options = append(view.options, o)
		}
	}
	return view
}

// Owns reports whether o was attached to g (or to the group g is a view of).
func (g *Group) Owns(o *Option) bool {
	if g.parent != nil {
		return o.group == g.parent
	}
	return o.group == g
}

// Validate checks v against the group's policy. Failures are *UsageError.
func (g *Group) Validate(v Values) error {
	return g.policy.Validate(g, v)
}

func (g *Group) present(v Values) []*Option {
	var out []*Option
	for _, o := range g.options {
		if v.Present(o.Dest()) {
			out = append(out, o)
		}
	}
	return out
}
