// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optgroup

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/pflag"
)

// Option is a grouped option. The zero value is not usable: Decls must
// name at least a long flag.
type Option struct {
	// Decls holds the declarations: exactly one "--long" name, an optional
	// "-s" shorthand and an optional bare destination name.
	Decls []string
	Help  string
	// Value stores the parsed value. Nil means the framework allocates a
	// string value.
	Value pflag.Value
	// NoOptDefVal is the value used when the flag is given without one.
	NoOptDefVal string
	Required    bool
	Hidden      bool

	long  string
	short string
	dest  string
	group *Group
}

// ParseDecls splits option declarations into long name, shorthand and
// destination. The destination defaults to the long name with dashes
// replaced by underscores.
func ParseDecls(decls ...string) (long, short, dest string, err error) {
	if len(decls) == 0 {
		return "", "", "", fmt.Errorf("%w: no declarations", ErrInvalidDecl)
	}
	for _, d := range decls {
		switch {
		case strings.HasPrefix(d, "--"):
			name := d[2:]
			if name == "" || strings.ContainsAny(name, " =") {
				return "", "", "", fmt.Errorf("%w: %q", ErrInvalidDecl, d)
			}
			if long != "" {
				return "", "", "", fmt.Errorf("%w: more than one long name in %v", ErrInvalidDecl, decls)
			}
			long = name
		case strings.HasPrefix(d, "-"):
			name := d[1:]
			if utf8.RuneCountInString(name) != 1 || name == "-" {
				return "", "", "", fmt.Errorf("%w: shorthand %q must be a single character", ErrInvalidDecl, d)
			}
			if short != "" {
				return "", "", "", fmt.Errorf("%w: more than one shorthand in %v", ErrInvalidDecl, decls)
			}
			short = name
		default:
			if !isIdentifier(d) {
				return "", "", "", fmt.Errorf("%w: %q is not a valid destination name", ErrInvalidDecl, d)
			}
			if dest != "" {
				return "", "", "", fmt.Errorf("%w: more than one destination in %v", ErrInvalidDecl, decls)
			}
			dest = d
		}
	}
	if long == "" {
		return "", "", "", fmt.Errorf("%w: %v has no long name", ErrInvalidDecl, decls)
	}
	if dest == "" {
		dest = strings.ReplaceAll(long, "-", "_")
	}
	return long, short, dest, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (o *Option) parse() error {
	if o.long != "" {
		return nil
	}
	long, short, dest, err := ParseDecls(o.Decls...)
	if err != nil {
		return err
	}
	o.long, o.short, o.dest = long, short, dest
	return nil
}

// Name returns the long flag name without dashes. Name, Shorthand and
// Dest assume valid declarations: they return "" when Decls do not parse,
// so check them with ParseDecls or Group.Add first.
func (o *Option) Name() string {
	if o.long == "" {
		_ = o.parse()
	}
	return o.long
}

// Shorthand returns the one-letter flag name, if any.
func (o *Option) Shorthand() string {
	o.Name()
	return o.short
}

// Dest returns the destination name the option's value is exposed under.
func (o *Option) Dest() string {
	o.Name()
	return o.dest
}

// Group returns the group the option was attached to, or nil.
func (o *Option) Group() *Group {
	return o.group
}

// Flags returns the dash declarations, in declaration order.
func (o *Option) Flags() []string {
	var out []string
	for _, d := range o.Decls {
		if strings.HasPrefix(d, "-") {
			out = append(out, d)
		}
	}
	return out
}

// ErrorHint renders the option for error messages: each dash declaration
// quoted, joined by " / ".
func (o *Option) ErrorHint() string {
	flags := o.Flags()
	if len(flags) == 0 {
		return fmt.Sprintf("%q", o.Dest())
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = fmt.Sprintf("%q", f)
	}
	return strings.Join(parts, " / ")
}

func (o *Option) attrSet(attr string) bool {
	switch attr {
	case "required":
		return o.Required
	case "hidden":
		return o.Hidden
	}
	return false
}
