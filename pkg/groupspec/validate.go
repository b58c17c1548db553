// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package groupspec

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/yeetrun/optgroup/pkg/optgroup"
	"github.com/yeetrun/optgroup/pkg/version"
)

var (
	topKeys     = []string{"version", "requires", "command", "options", "groups"}
	commandKeys = []string{"name", "short", "long", "example"}
	optionKeys  = []string{"decls", "type", "help", "default", "required", "hidden"}
	groupKeys   = []string{"name", "help", "policy", "options"}
)

// checkKeys reports every key of a decoded document that Spec does not
// define, naming the group or option it appeared in.
func checkKeys(raw map[string]any) error {
	var errs *multierror.Error
	unknown := func(m map[string]any, known []string, where string) {
		for _, k := range sortedKeys(m) {
			if slices.Contains(known, k) {
				continue
			}
			msg := fmt.Sprintf("unexpected attribute %q", k)
			if where != "" {
				msg += " in " + where
			}
			errs = multierror.Append(errs, fmt.Errorf("%s", msg))
		}
	}
	unknown(raw, topKeys, "")
	if cmd, ok := raw["command"].(map[string]any); ok {
		unknown(cmd, commandKeys, "command")
	}
	for i, o := range maps(raw["options"]) {
		unknown(o, optionKeys, optionLabel(o, i))
	}
	for i, g := range maps(raw["groups"]) {
		where := groupLabel(g, i)
		unknown(g, groupKeys, where)
		for j, o := range maps(g["options"]) {
			unknown(o, optionKeys, optionLabel(o, j)+" of "+where)
		}
	}
	return errs.ErrorOrNil()
}

// maps returns the tables of an array of tables as decoded by either TOML
// or YAML.
func maps(v any) []map[string]any {
	switch v := v.(type) {
	case []map[string]any:
		return v
	case []any:
		var out []map[string]any
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func groupLabel(g map[string]any, i int) string {
	if name, ok := g["name"].(string); ok && name != "" {
		return fmt.Sprintf("group %q", name)
	}
	return fmt.Sprintf("groups[%d]", i)
}

func optionLabel(o map[string]any, i int) string {
	switch decls := o["decls"].(type) {
	case []any:
		if len(decls) > 0 {
			return fmt.Sprintf("option %q", fmt.Sprint(decls[0]))
		}
	case []string:
		if len(decls) > 0 {
			return fmt.Sprintf("option %q", decls[0])
		}
	}
	return fmt.Sprintf("options[%d]", i)
}

// Validate reports every problem in s. The error is a
// *multierror.Error listing them in file order.
func (s *Spec) Validate() error {
	var errs *multierror.Error
	add := func(err error) {
		errs = multierror.Append(errs, err)
	}

	if s.Version < 0 || s.Version > CurrentVersion {
		add(fmt.Errorf("unsupported spec version %d, want %d", s.Version, CurrentVersion))
	}
	if s.Requires != "" {
		ok, err := version.Satisfies(s.Requires)
		switch {
		case err != nil:
			add(fmt.Errorf("invalid requires %q: %w", s.Requires, err))
		case !ok:
			add(fmt.Errorf("spec requires optgroup %s, have %s", s.Requires, version.Version()))
		}
	}
	if strings.TrimSpace(s.Command.Name) == "" {
		add(fmt.Errorf("command name is required"))
	}

	longs := map[string]bool{}
	shorts := map[string]bool{}
	dests := map[string]bool{}
	checkOption := func(o *OptionSpec, where string) {
		long, short, dest, err := optgroup.ParseDecls(o.Decls...)
		if err != nil {
			add(fmt.Errorf("%s: %w", where, err))
			return
		}
		switch {
		case longs[long]:
			add(fmt.Errorf("%s: flag --%s is declared twice", where, long))
		case dests[dest]:
			add(fmt.Errorf("%s: destination %q is declared twice", where, dest))
		}
		longs[long] = true
		dests[dest] = true
		if short != "" {
			if shorts[short] {
				add(fmt.Errorf("%s: shorthand -%s is declared twice", where, short))
			}
			shorts[short] = true
		}
		if _, err := newValue(o.Type, o.Default); err != nil {
			add(fmt.Errorf("%s: %w", where, err))
		}
	}

	for i, o := range s.Options {
		checkOption(o, optionWhere(o, i))
	}
	for i, g := range s.Groups {
		gw := groupWhere(g, i)
		p, err := optgroup.ParsePolicy(g.Policy)
		if err != nil {
			add(fmt.Errorf("%s: %w", gw, err))
		}
		for j, o := range g.Options {
			ow := optionWhere(o, j) + " of " + gw
			checkOption(o, ow)
			if err == nil && o.Required && slices.Contains(p.ForbiddenAttrs(), "required") {
				add(fmt.Errorf("%s: %w", ow, &optgroup.AttrError{Attr: "required", Policy: p}))
			}
		}
	}
	return errs.ErrorOrNil()
}

func groupWhere(g *GroupSpec, i int) string {
	if g.Name != "" {
		return fmt.Sprintf("group %q", g.Name)
	}
	return fmt.Sprintf("groups[%d]", i)
}

func optionWhere(o *OptionSpec, i int) string {
	if len(o.Decls) > 0 {
		return fmt.Sprintf("option %q", o.Decls[0])
	}
	return fmt.Sprintf("options[%d]", i)
}
