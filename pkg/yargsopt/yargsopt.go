// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yargsopt validates option groups for commands that parse their
// flags with yargs structs.
//
// Struct fields name their flag with the `flag` tag (default: lower-cased
// field name) and may join a group with the `group` tag:
//
//	type deployFlags struct {
//	    Host  string `flag:"host" group:"Target" help:"Target host"`
//	    Fleet string `flag:"fleet" group:"Target" help:"Target fleet"`
//	}
//
// A group option's destination is its flag name with "-" replaced by "_".
package yargsopt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/optgroup/pkg/optgroup"
)

type field struct {
	name  string
	short string
	help  string
	group string
	index int
}

func fields(t reflect.Type) []field {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("flag")
		if name == "" {
			name = strings.ToLower(sf.Name)
		}
		out = append(out, field{
			name:  name,
			short: sf.Tag.Get("short"),
			help:  sf.Tag.Get("help"),
			group: sf.Tag.Get("group"),
			index: i,
		})
	}
	return out
}

func dest(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// ValuesOf returns the values set in a yargs flag struct, keyed by
// destination. Nil pointers, empty slices and zero values are absent.
func ValuesOf(flags any) optgroup.Values {
	v := optgroup.Values{}
	rv := reflect.ValueOf(flags)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	for _, f := range fields(rv.Type()) {
		fv := rv.Field(f.index)
		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				continue
			}
		case reflect.Slice, reflect.Map:
			if fv.Len() == 0 {
				continue
			}
		default:
			if fv.IsZero() {
				continue
			}
		}
		v[dest(f.name)] = fv.Interface()
	}
	return v
}

// Groups builds the groups declared with `group` tags on the fields of
// flags, in order of first appearance. policies sets the policy per group
// name; groups not listed have no constraint.
func Groups(flags any, policies map[string]optgroup.Policy) ([]*optgroup.Group, error) {
	var (
		out    []*optgroup.Group
		byName = map[string]*optgroup.Group{}
	)
	for _, f := range fields(reflect.TypeOf(flags)) {
		if f.group == "" {
			continue
		}
		g, ok := byName[f.group]
		if !ok {
			var err error
			g, err = optgroup.New(f.group, optgroup.WithPolicy(policies[f.group]))
			if err != nil {
				return nil, err
			}
			byName[f.group] = g
			out = append(out, g)
		}
		decls := []string{"--" + f.name}
		if f.short != "" {
			decls = append(decls, "-"+f.short)
		}
		if err := g.Add(&optgroup.Option{Decls: decls, Help: f.help}); err != nil {
			return nil, fmt.Errorf("field for --%s: %w", f.name, err)
		}
	}
	for name := range policies {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("policy given for unknown group %q", name)
		}
	}
	return out, nil
}

// Parse parses the flags of T from args with yargs and validates groups
// against them. Constraint failures are *optgroup.UsageError.
func Parse[T any](args []string, groups ...*optgroup.Group) (*yargs.KnownFlagsResult[T], error) {
	res, err := yargs.ParseKnownFlags[T](args, yargs.KnownFlagsOptions{SplitCommaSlices: true})
	if err != nil {
		return nil, err
	}
	if err := optgroup.ValidateAll(ValuesOf(res.Flags), groups...); err != nil {
		return nil, err
	}
	return res, nil
}

// HelpSection renders groups in the layout of yargs' OPTIONS section.
func HelpSection(groups ...*optgroup.Group) string {
	var b strings.Builder
	for _, g := range groups {
		opts := g.Options()
		if len(opts) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(g.Title()) + ":\n")
		if g.Help() != "" {
			b.WriteString("    " + g.Help() + "\n")
		}
		for _, o := range opts {
			if o.Hidden {
				continue
			}
			flagStr := fmt.Sprintf("    --%s", o.Name())
			if o.Shorthand() != "" {
				flagStr = fmt.Sprintf("    -%s, --%s", o.Shorthand(), o.Name())
			}
			if o.Help != "" {
				b.WriteString(fmt.Sprintf("%-28s %s", flagStr, o.Help))
			} else {
				b.WriteString(flagStr)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
