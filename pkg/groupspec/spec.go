// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package groupspec loads command definitions with option groups from TOML
// or YAML files and builds cobra commands from them.
//
//	version = 1
//	[command]
//	name = "deploy"
//	[[groups]]
//	name = "Target"
//	policy = "required_mutually_exclusive"
//	[[groups.options]]
//	decls = ["--host"]
package groupspec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the newest spec file version this package reads.
const CurrentVersion = 1

// Names searched for by Find, in order.
var specNames = []string{"optgroup.toml", "optgroup.yaml", "optgroup.yml"}

// Format is a spec file encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("unknown spec format for %q: want .toml, .yaml or .yml", path)
}

// Spec is a command definition.
type Spec struct {
	Version  int           `toml:"version" yaml:"version"`
	Requires string        `toml:"requires" yaml:"requires"`
	Command  CommandSpec   `toml:"command" yaml:"command"`
	Options  []*OptionSpec `toml:"options" yaml:"options"`
	Groups   []*GroupSpec  `toml:"groups" yaml:"groups"`

	// Warnf receives build warnings such as empty groups. Nil means
	// log.Printf.
	Warnf func(format string, args ...any) `toml:"-" yaml:"-"`
}

type CommandSpec struct {
	Name    string `toml:"name" yaml:"name"`
	Short   string `toml:"short" yaml:"short"`
	Long    string `toml:"long" yaml:"long"`
	Example string `toml:"example" yaml:"example"`
}

// OptionSpec declares one option. Type is one of the names in Types; empty
// means "string".
type OptionSpec struct {
	Decls    []string `toml:"decls" yaml:"decls"`
	Type     string   `toml:"type" yaml:"type"`
	Help     string   `toml:"help" yaml:"help"`
	Default  string   `toml:"default" yaml:"default"`
	Required bool     `toml:"required" yaml:"required"`
	Hidden   bool     `toml:"hidden" yaml:"hidden"`
}

// GroupSpec declares a group. Policy is a policy key such as
// "required_any" or a policy name; empty means no constraint.
type GroupSpec struct {
	Name    string        `toml:"name" yaml:"name"`
	Help    string        `toml:"help" yaml:"help"`
	Policy  string        `toml:"policy" yaml:"policy"`
	Options []*OptionSpec `toml:"options" yaml:"options"`
}

// Load reads the spec file at path.
func Load(path string) (*Spec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a spec. Keys the format does not define are errors.
func Parse(data []byte, format Format) (*Spec, error) {
	var (
		raw map[string]any
		s   Spec
	)
	switch format {
	case TOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if err := checkKeys(raw); err != nil {
			return nil, err
		}
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, err
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if err := checkKeys(raw); err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown spec format %v", format)
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	return &s, nil
}

// Find looks for a spec file in startDir and its parents.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		for _, name := range specNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
