// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optgroup

// Values maps option destinations to the values given on the command line.
// An option is absent when its key is missing or maps to nil.
type Values map[string]any

// Present reports whether dest was given.
func (v Values) Present(dest string) bool {
	val, ok := v[dest]
	return ok && val != nil
}

// ValidateAll validates v against each group in order and returns the
// first failure.
func ValidateAll(v Values, groups ...*Group) error {
	for _, g := range groups {
		if err := g.Validate(v); err != nil {
			return err
		}
	}
	return nil
}
