// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// DefaultWidth is the help width used when the output is not a terminal
// whose size can be read.
const DefaultWidth = 80

// Colorizer decorates help output. The zero value writes plain text.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer that is enabled only if enabled is true,
// NO_COLOR is unset and TERM names a real terminal.
func NewColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	t := os.Getenv("TERM")
	if t == "" || t == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

var override atomic.Pointer[bool]

// SetOverride forces ForWriter to enable or disable color. Nil restores
// terminal detection.
func SetOverride(on *bool) {
	override.Store(on)
}

// ForWriter returns a Colorizer enabled when w is a terminal, unless
// SetOverride was called.
func ForWriter(w io.Writer) Colorizer {
	if on := override.Load(); on != nil {
		return Colorizer{Enabled: *on}
	}
	return NewColorizer(IsTerminal(w))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// wrap ignores color.NoColor; the Colorizer already decided.
func (c Colorizer) wrap(attr color.Attribute, text string) string {
	if !c.Enabled || text == "" {
		return text
	}
	a := color.New(attr)
	a.EnableColor()
	return a.Sprint(text)
}

// Heading renders a section heading such as "Flags:".
func (c Colorizer) Heading(text string) string {
	return c.wrap(color.Bold, text)
}

// Dim renders secondary text such as a group description.
func (c Colorizer) Dim(text string) string {
	return c.wrap(color.Faint, text)
}

// Error renders an error prefix.
func (c Colorizer) Error(text string) string {
	return c.wrap(color.FgRed, text)
}

// Width returns the column count of w when it is a terminal, and 0 when
// it is not, which disables wrapping.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return DefaultWidth
	}
	return cols
}
