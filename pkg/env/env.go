// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Key returns the variable name for dest, e.g. Key("OPT", "dry-run") is
// "OPT_DRY_RUN". Characters other than ASCII letters and digits become "_".
func Key(prefix, dest string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(strings.ToUpper(prefix))
		b.WriteByte('_')
	}
	for _, r := range dest {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Quote single-quotes s for POSIX shells.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Write writes one KEY='value' line per entry of values, sorted by key.
func Write(w io.Writer, prefix string, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", Key(prefix, k), Quote(values[k])); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes values to the env file name, replacing it.
func WriteFile(name, prefix string, values map[string]string) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := Write(f, prefix, values); err != nil {
		return fmt.Errorf("failed to write env: %v", err)
	}
	return f.Close()
}
