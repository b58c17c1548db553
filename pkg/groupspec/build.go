// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package groupspec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/optgroup/pkg/cobraopt"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

// Types lists the option types a spec may name.
var Types = []string{"string", "bool", "int", "int64", "float64", "duration", "stringSlice", "count"}

// newValue returns a pflag value of type typ holding def.
func newValue(typ, def string) (pflag.Value, error) {
	var v pflag.Value
	switch typ {
	case "", "string":
		v = cobraopt.String(new(string), def)
		return v, nil
	case "bool":
		v = cobraopt.Bool(new(bool), false)
	case "int":
		v = cobraopt.Int(new(int), 0)
	case "int64":
		v = cobraopt.Int64(new(int64), 0)
	case "float64":
		v = cobraopt.Float64(new(float64), 0)
	case "duration":
		v = cobraopt.Duration(new(time.Duration), 0)
	case "stringSlice":
		var def0 []string
		if def != "" {
			def0 = strings.Split(def, ",")
		}
		return cobraopt.StringSlice(new([]string), def0), nil
	case "count":
		n := 0
		if def != "" {
			var err error
			if n, err = strconv.Atoi(def); err != nil {
				return nil, fmt.Errorf("invalid count default %q", def)
			}
		}
		p := new(int)
		v = cobraopt.Count(p)
		*p = n
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported option type %q, want one of %s", typ, strings.Join(Types, ", "))
	}
	if def != "" {
		if err := v.Set(def); err != nil {
			return nil, fmt.Errorf("invalid %s default %q: %w", typ, def, err)
		}
	}
	return v, nil
}

// Command is a cobra command built from a Spec.
type Command struct {
	Cobra  *cobra.Command
	Groups []*optgroup.Group
	// Ran and Args report whether the last execution reached the run step
	// and the positional arguments it got.
	Ran  bool
	Args []string

	dests []destFlag
}

type destFlag struct {
	dest string
	flag string
}

// Build validates s and builds its command. Options are declared in file
// order: ungrouped options first, then each group with its options.
func (s *Spec) Build() (*Command, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Command{}
	c.Cobra = &cobra.Command{
		Use:     s.Command.Name,
		Short:   s.Command.Short,
		Long:    s.Command.Long,
		Example: s.Command.Example,
		Args:    cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			c.Ran = true
			c.Args = args
			return nil
		},
	}
	var required []*optgroup.Option
	c.Cobra.PreRunE = func(cmd *cobra.Command, _ []string) error {
		for _, opt := range required {
			if !cmd.Flags().Changed(opt.Name()) {
				return &optgroup.UsageError{
					Options: []*optgroup.Option{opt},
					Msg:     fmt.Sprintf("Missing option %s", opt.ErrorHint()),
				}
			}
		}
		return nil
	}
	// Bind after PreRunE is set so group validation runs first.
	b := cobraopt.NewBuilder(c.Cobra)
	if s.Warnf != nil {
		b.Warnf = s.Warnf
	}

	fs := c.Cobra.Flags()
	for _, o := range s.Options {
		opt, err := s.option(o)
		if err != nil {
			return nil, err
		}
		f := fs.VarPF(opt.Value, opt.Name(), opt.Shorthand(), opt.Help)
		f.Hidden = opt.Hidden
		switch opt.Value.Type() {
		case "bool":
			f.NoOptDefVal = "true"
		case "count":
			f.NoOptDefVal = "+1"
		}
		if opt.Required {
			required = append(required, opt)
		}
		c.dests = append(c.dests, destFlag{dest: opt.Dest(), flag: opt.Name()})
	}

	for _, gs := range s.Groups {
		p, err := optgroup.ParsePolicy(gs.Policy)
		if err != nil {
			return nil, err
		}
		var opts []*optgroup.Option
		for _, o := range gs.Options {
			opt, err := s.option(o)
			if err != nil {
				return nil, err
			}
			if err := b.Option(opt); err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
		g, err := b.Group(gs.Name, optgroup.WithHelp(gs.Help), optgroup.WithPolicy(p))
		if err != nil {
			return nil, err
		}
		if g == nil {
			continue
		}
		c.Groups = append(c.Groups, g)
		for _, opt := range opts {
			c.dests = append(c.dests, destFlag{dest: opt.Dest(), flag: opt.Name()})
		}
	}
	if err := b.Finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Spec) option(o *OptionSpec) (*optgroup.Option, error) {
	v, err := newValue(o.Type, o.Default)
	if err != nil {
		return nil, err
	}
	opt := &optgroup.Option{
		Decls:    o.Decls,
		Help:     o.Help,
		Value:    v,
		Required: o.Required,
		Hidden:   o.Hidden,
	}
	if _, _, _, err := optgroup.ParseDecls(o.Decls...); err != nil {
		return nil, err
	}
	return opt, nil
}

// Resolved returns the value of every option after a run, keyed by
// destination, including options left at their defaults. Slices are
// comma separated.
func (c *Command) Resolved() map[string]string {
	out := make(map[string]string, len(c.dests))
	fs := c.Cobra.Flags()
	for _, d := range c.dests {
		f := fs.Lookup(d.flag)
		if f == nil {
			continue
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			out[d.dest] = strings.Join(sv.GetSlice(), ",")
			continue
		}
		out[d.dest] = f.Value.String()
	}
	return out
}

// Given returns the destinations of the options set on the command line.
func (c *Command) Given() []string {
	var out []string
	fs := c.Cobra.Flags()
	for _, d := range c.dests {
		if f := fs.Lookup(d.flag); f != nil && f.Changed {
			out = append(out, d.dest)
		}
	}
	return out
}
