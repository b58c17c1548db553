// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optgroup

import (
	"fmt"
	"strings"
)

// Policy is the presence rule a group applies to its options after parsing.
// The set of policies is closed.
type Policy int

const (
	// NoConstraint only groups options for help output.
	NoConstraint Policy = iota
	// RequiredAny requires at least one option of the group.
	RequiredAny
	// RequiredAll requires every option of the group.
	RequiredAll
	// MutuallyExclusive allows at most one option of the group.
	MutuallyExclusive
	// RequiredMutuallyExclusive requires exactly one option of the group.
	RequiredMutuallyExclusive
)

type policyInfo struct {
	name      string
	key       string
	extra     []string
	forbidden []string
	validate  func(g *Group, v Values) error
}

var policies = [...]policyInfo{
	NoConstraint: {
		name:     "OptionGroup",
		key:      "none",
		validate: func(*Group, Values) error { return nil },
	},
	RequiredAny: {
		name:     "RequiredAnyOptionGroup",
		key:      "required_any",
		extra:    []string{"required_any"},
		validate: validateRequiredAny,
	},
	RequiredAll: {
		name:     "RequiredAllOptionGroup",
		key:      "required_all",
		extra:    []string{"required_all"},
		validate: validateRequiredAll,
	},
	MutuallyExclusive: {
		name:      "MutuallyExclusiveOptionGroup",
		key:       "mutually_exclusive",
		extra:     []string{"mutually_exclusive"},
		forbidden: []string{"required"},
		validate:  validateMutuallyExclusive,
	},
	RequiredMutuallyExclusive: {
		name:      "RequiredMutuallyExclusiveOptionGroup",
		key:       "required_mutually_exclusive",
		extra:     []string{"mutually_exclusive", "required"},
		forbidden: []string{"required"},
		validate:  validateRequiredMutuallyExclusive,
	},
}

// Policies returns every known policy in declaration order.
func Policies() []Policy {
	return []Policy{NoConstraint, RequiredAny, RequiredAll, MutuallyExclusive, RequiredMutuallyExclusive}
}

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	return p >= 0 && int(p) < len(policies)
}

func (p Policy) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policies[p].name
}

// Key is the snake_case identifier used in spec files.
func (p Policy) Key() string {
	if !p.Valid() {
		return ""
	}
	return policies[p].key
}

// NameExtra returns the tags appended to the group title in help output.
func (p Policy) NameExtra() []string {
	if !p.Valid() {
		return nil
	}
	return append([]string(nil), policies[p].extra...)
}

// ForbiddenAttrs returns option attributes that members of a group with
// this policy may not set.
func (p Policy) ForbiddenAttrs() []string {
	if !p.Valid() {
		return nil
	}
	return append([]string(nil), policies[p].forbidden...)
}

// Validate checks the resolved values of g's options against the policy.
func (p Policy) Validate(g *Group, v Values) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, p)
	}
	return policies[p].validate(g, v)
}

// ParsePolicy parses a policy key ("required_any") or name
// ("RequiredAnyOptionGroup"). The empty string is NoConstraint.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoConstraint, nil
	}
	for i, info := range policies {
		if strings.EqualFold(s, info.key) || strings.EqualFold(s, info.name) {
			return Policy(i), nil
		}
	}
	keys := make([]string, len(policies))
	for i, info := range policies {
		keys[i] = info.key
	}
	return NoConstraint, fmt.Errorf("%w %q: must be one of %s", ErrInvalidPolicy, s, strings.Join(keys, ", "))
}

func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, p)
	}
	return []byte(p.Key()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func validateRequiredAny(g *Group, v Values) error {
	if len(g.present(v)) > 0 {
		return nil
	}
	return &UsageError{
		Group:   g,
		Options: g.Options(),
		Msg: fmt.Sprintf("Missing one of the required options from %q option group: %s",
			g.DisplayName(), hints(g.options, " or ")),
	}
}

func validateRequiredAll(g *Group, v Values) error {
	var missing []*Option
	for _, o := range g.options {
		if !v.Present(o.Dest()) {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &UsageError{
		Group:   g,
		Options: missing,
		Msg: fmt.Sprintf("Missing required options from %q option group: %s",
			g.DisplayName(), hints(missing, ", ")),
	}
}

func validateMutuallyExclusive(g *Group, v Values) error {
	given := g.present(v)
	if len(given) <= 1 {
		return nil
	}
	return &UsageError{
		Group:   g,
		Options: given,
		Msg:     "The given mutually exclusive options cannot be used at the same time: " + hints(given, ", "),
	}
}

func validateRequiredMutuallyExclusive(g *Group, v Values) error {
	if len(g.present(v)) == 0 {
		return &UsageError{
			Group:   g,
			Options: g.Options(),
			Msg: fmt.Sprintf("Missing one of the required mutually exclusive options from %q option group: %s",
				g.DisplayName(), hints(g.options, " or ")),
		}
	}
	return validateMutuallyExclusive(g, v)
}
