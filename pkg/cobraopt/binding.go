// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

// AnnotationGroup is the pflag annotation set on every grouped flag. Its
// value is the group name, which is empty for unnamed groups.
const AnnotationGroup = "optgroup:group"

// Binding holds the option groups attached to one cobra command and the
// hooks that render and validate them.
type Binding struct {
	cmd      *cobra.Command
	entries  []*entry
	builders []*Builder
	helpErr  error
}

// entry is one group as seen by one command.
type entry struct {
	group *optgroup.Group
	opts  []*optgroup.Option
}

func (e *entry) view() *optgroup.Group {
	return e.group.Scope(e.opts)
}

// The hooks cobra calls only receive the command, so bindings are found
// by command. Pending options never live here; they stay in Builders.
var bindings = struct {
	sync.Mutex
	m map[*cobra.Command]*Binding
}{m: make(map[*cobra.Command]*Binding)}

// Bind returns the binding for cmd, installing the validation and help
// hooks the first time. PreRunE or PreRun set on cmd before Bind still
// run, after group validation; assigning them after Bind replaces the
// validation hook. The binding keeps cmd reachable until Unbind.
func Bind(cmd *cobra.Command) *Binding {
	bindings.Lock()
	defer bindings.Unlock()
	if b, ok := bindings.m[cmd]; ok {
		return b
	}
	b := &Binding{cmd: cmd}
	b.install()
	bindings.m[cmd] = b
	return b
}

// Lookup returns the binding for cmd, if Bind was called for it.
func Lookup(cmd *cobra.Command) (*Binding, bool) {
	bindings.Lock()
	defer bindings.Unlock()
	b, ok := bindings.m[cmd]
	return b, ok
}

// Unbind drops cmd and its descendants from the binding registry so they
// can be garbage collected. Call it once the commands will not be executed
// again; help rendered afterwards shows no group sections.
func Unbind(cmd *cobra.Command) {
	bindings.Lock()
	delete(bindings.m, cmd)
	bindings.Unlock()
	for _, sub := range cmd.Commands() {
		Unbind(sub)
	}
}

// AddOption attaches opt to g on cmd. It is shorthand for Bind(cmd).Add.
func AddOption(cmd *cobra.Command, g *optgroup.Group, opt *optgroup.Option) error {
	return Bind(cmd).Add(g, opt)
}

func (b *Binding) install() {
	preRunE, preRun := b.cmd.PreRunE, b.cmd.PreRun
	b.cmd.PreRun = nil
	b.cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if err := b.Validate(); err != nil {
			return err
		}
		if preRunE != nil {
			return preRunE(c, args)
		}
		if preRun != nil {
			preRun(c, args)
		}
		return nil
	}
	b.cmd.SetFlagErrorFunc(flagError)
	b.cmd.SetUsageFunc(Usage)
	b.cmd.SetHelpFunc(Help)
}

// flagError reports unattached grouped options before flag errors, since
// those options were never registered and show up as unknown flags.
func flagError(c *cobra.Command, err error) error {
	if b, ok := Lookup(c); ok {
		if perr := b.Pending(); perr != nil {
			return perr
		}
	}
	return &optgroup.UsageError{Msg: err.Error(), Err: err}
}

// Command returns the bound command.
func (b *Binding) Command() *cobra.Command {
	return b.cmd
}

// Groups returns views of the groups bound to the command, restricted to
// the options bound here, in the order the groups were first attached.
func (b *Binding) Groups() []*optgroup.Group {
	out := make([]*optgroup.Group, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.view()
	}
	return out
}

// Add attaches opt to g and registers it as a flag on the command. A
// group may be used on several commands; each command sees only the
// options added through its own binding.
func (b *Binding) Add(g *optgroup.Group, opt *optgroup.Option) error {
	if g == nil || opt == nil {
		return fmt.Errorf("cobraopt: nil group or option")
	}
	long, short, dest, err := optgroup.ParseDecls(opt.Decls...)
	if err != nil {
		return err
	}
	// Values are keyed by destination, so it must be unique on the command
	// and not only within one group.
	for _, e := range b.entries {
		for _, o := range e.opts {
			if o.Dest() == dest {
				return fmt.Errorf("%w: destination %q is already used by %s on '%s'", optgroup.ErrInvalidDecl, dest, o.ErrorHint(), b.cmd.Name())
			}
		}
	}
	fs, pfs := b.cmd.Flags(), b.cmd.PersistentFlags()
	if fs.Lookup(long) != nil || pfs.Lookup(long) != nil {
		return fmt.Errorf("%w: flag --%s is already defined on '%s'", optgroup.ErrInvalidDecl, long, b.cmd.Name())
	}
	if short != "" && (fs.ShorthandLookup(short) != nil || pfs.ShorthandLookup(short) != nil) {
		return fmt.Errorf("%w: shorthand -%s is already defined on '%s'", optgroup.ErrInvalidDecl, short, b.cmd.Name())
	}
	if err := g.Add(opt); err != nil {
		return err
	}
	fs.AddFlag(newFlag(g, opt))
	e := b.entryFor(g)
	e.opts = append(e.opts, opt)
	return nil
}

func (b *Binding) entryFor(g *optgroup.Group) *entry {
	for _, e := range b.entries {
		if e.group == g {
			return e
		}
	}
	e := &entry{group: g}
	b.entries = append(b.entries, e)
	return e
}

func newFlag(g *optgroup.Group, opt *optgroup.Option) *pflag.Flag {
	if opt.Value == nil {
		var s string
		opt.Value = String(&s, "")
	}
	f := &pflag.Flag{
		Name:        opt.Name(),
		Shorthand:   opt.Shorthand(),
		Usage:       opt.Help,
		Value:       opt.Value,
		DefValue:    opt.Value.String(),
		NoOptDefVal: opt.NoOptDefVal,
		Hidden:      opt.Hidden,
		Annotations: map[string][]string{AnnotationGroup: {g.Name()}},
	}
	if f.NoOptDefVal == "" {
		switch opt.Value.Type() {
		case "bool":
			f.NoOptDefVal = "true"
		case "count":
			f.NoOptDefVal = "+1"
		}
	}
	return f
}

// IsGrouped reports whether f was registered by a binding.
func IsGrouped(f *pflag.Flag) bool {
	_, ok := f.Annotations[AnnotationGroup]
	return ok
}

// Pending returns a *optgroup.MissingGroupError if any builder on the
// command holds options that were never collected by a group.
func (b *Binding) Pending() error {
	var left []*optgroup.Option
	for _, bl := range b.builders {
		for _, p := range bl.pending {
			left = append(left, p.opt)
		}
	}
	if len(left) == 0 {
		return nil
	}
	return &optgroup.MissingGroupError{Command: b.cmd.Name(), Options: left}
}

// Values returns the values given on the command line for the bound
// options, keyed by destination. Options left at their defaults are absent.
func (b *Binding) Values() optgroup.Values {
	v := optgroup.Values{}
	fs := b.cmd.Flags()
	for _, e := range b.entries {
		for _, o := range e.opts {
			if f := fs.Lookup(o.Name()); f != nil && f.Changed {
				v[o.Dest()] = f.Value.String()
			}
		}
	}
	return v
}

// Validate checks pending options, individually required options and then
// every group constraint against the parsed flags.
func (b *Binding) Validate() error {
	if err := b.Pending(); err != nil {
		return err
	}
	v := b.Values()
	for _, e := range b.entries {
		for _, o := range e.opts {
			if o.Required && !v.Present(o.Dest()) {
				return &optgroup.UsageError{
					Group:   e.group,
					Options: []*optgroup.Option{o},
					Msg:     fmt.Sprintf("Missing option %s", o.ErrorHint()),
				}
			}
		}
	}
	for _, e := range b.entries {
		if err := e.view().Validate(v); err != nil {
			return err
		}
	}
	return nil
}
