// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

// Builder declares grouped options on a command in reading order. Options
// passed to Option are held until the next Group call, which creates the
// group and attaches them to the command in the order they were given.
//
//	b := cobraopt.NewBuilder(cmd)
//	b.Option(&optgroup.Option{Decls: []string{"--json"}})
//	b.Option(&optgroup.Option{Decls: []string{"--yaml"}})
//	b.Group("Output", optgroup.WithPolicy(optgroup.MutuallyExclusive))
//
// Plain flags, local or persistent, must not be defined on the command
// between the options of a group and their Group call.
type Builder struct {
	// Warnf reports non-fatal problems, such as a group with no options.
	// It defaults to log.Printf.
	Warnf func(format string, args ...any)

	bind    *Binding
	pending []pendingOption
}

type pendingOption struct {
	opt *optgroup.Option
	// local and persistent count the command's flags when opt was declared.
	local, persistent int
}

// NewBuilder returns a Builder for cmd. The command is bound with Bind.
func NewBuilder(cmd *cobra.Command) *Builder {
	bind := Bind(cmd)
	b := &Builder{Warnf: log.Printf, bind: bind}
	bindings.Lock()
	bind.builders = append(bind.builders, b)
	bindings.Unlock()
	return b
}

// Option declares a grouped option. It fails with *optgroup.OrderError if
// a plain flag was defined after the previous pending option.
func (b *Builder) Option(o *optgroup.Option) error {
	if _, _, _, err := optgroup.ParseDecls(o.Decls...); err != nil {
		return err
	}
	local, persistent := b.flags()
	if err := b.checkOrder(b.pending, local, persistent); err != nil {
		return err
	}
	b.pending = append(b.pending, pendingOption{opt: o, local: len(local), persistent: len(persistent)})
	return nil
}

// Group creates a group from name and opts and attaches every pending
// option to it. With nothing pending it reports a warning and returns a
// nil group and nil error.
func (b *Builder) Group(name string, opts ...optgroup.GroupOption) (*optgroup.Group, error) {
	pending := b.pending
	b.pending = nil
	if len(pending) == 0 {
		if name == "" {
			b.warnf("The empty option group was found. The group will not be added.")
		} else {
			b.warnf("The empty option group %q was found. The group will not be added.", name)
		}
		return nil, nil
	}
	local, persistent := b.flags()
	if err := b.checkOrder(pending, local, persistent); err != nil {
		return nil, err
	}
	g, err := optgroup.New(name, opts...)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if err := b.bind.Add(g, p.opt); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Finish returns a *optgroup.MissingGroupError if options are still
// pending. The same check runs again before the command executes and when
// its help is shown.
func (b *Builder) Finish() error {
	if len(b.pending) == 0 {
		return nil
	}
	left := make([]*optgroup.Option, len(b.pending))
	for i, p := range b.pending {
		left[i] = p.opt
	}
	return &optgroup.MissingGroupError{Command: b.bind.cmd.Name(), Options: left}
}

func (b *Builder) warnf(format string, args ...any) {
	if b.Warnf == nil {
		log.Printf(format, args...)
		return
	}
	b.Warnf(format, args...)
}

// flags returns the command's local and persistent flags in definition
// order. Persistent flags already merged into the local set are only
// counted as persistent.
func (b *Builder) flags() (local, persistent []*pflag.Flag) {
	pfs := b.bind.cmd.PersistentFlags()
	persistent = orderedFlags(pfs)
	for _, f := range orderedFlags(b.bind.cmd.Flags()) {
		if pfs.Lookup(f.Name) == nil {
			local = append(local, f)
		}
	}
	return local, persistent
}

// checkOrder fails if flags were added to the command after the last of
// pending was declared. The error names the most recently added flag.
func (b *Builder) checkOrder(pending []pendingOption, local, persistent []*pflag.Flag) error {
	if len(pending) == 0 {
		return nil
	}
	last := pending[len(pending)-1]
	var added *pflag.Flag
	switch {
	case len(persistent) > last.persistent:
		added = persistent[len(persistent)-1]
	case len(local) > last.local:
		added = local[len(local)-1]
	default:
		return nil
	}
	return &optgroup.OrderError{
		Command: b.bind.cmd.Name(),
		Decls:   flagDecls(added),
	}
}

func flagDecls(f *pflag.Flag) []string {
	decls := []string{"--" + f.Name}
	if f.Shorthand != "" {
		decls = append(decls, "-"+f.Shorthand)
	}
	return decls
}

// orderedFlags returns the flags of fs in definition order.
func orderedFlags(fs *pflag.FlagSet) []*pflag.Flag {
	sorted := fs.SortFlags
	fs.SortFlags = false
	defer func() { fs.SortFlags = sorted }()
	var out []*pflag.Flag
	fs.VisitAll(func(f *pflag.Flag) {
		out = append(out, f)
	})
	return out
}
