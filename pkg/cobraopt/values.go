// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobraopt

import (
	"time"

	"github.com/spf13/pflag"
)

// The constructors below return pflag's own Value implementations for use
// in optgroup.Option.Value. Each stores into p and starts at value.

// newValue defines a flag on a scratch FlagSet and returns its Value.
func newValue(define func(fs *pflag.FlagSet)) pflag.Value {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	define(fs)
	return fs.Lookup("v").Value
}

func String(p *string, value string) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.StringVar(p, "v", value, "") })
}

// Bool values accept a bare flag as true.
func Bool(p *bool, value bool) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.BoolVar(p, "v", value, "") })
}

func Int(p *int, value int) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.IntVar(p, "v", value, "") })
}

func Int64(p *int64, value int64) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.Int64Var(p, "v", value, "") })
}

func Float64(p *float64, value float64) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.Float64Var(p, "v", value, "") })
}

func Duration(p *time.Duration, value time.Duration) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.DurationVar(p, "v", value, "") })
}

// StringSlice values accept repeated and comma separated arguments.
func StringSlice(p *[]string, value []string) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.StringSliceVar(p, "v", value, "") })
}

// Count increments p each time the flag is given.
func Count(p *int) pflag.Value {
	return newValue(func(fs *pflag.FlagSet) { fs.CountVar(p, "v", "") })
}
