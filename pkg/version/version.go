// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package version reports the optgroup build and checks spec files'
// version constraints against it.
package version

import (
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// buildVersion is injected at build time via -ldflags.
var buildVersion string

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go,omitempty"`
}

// Read collects the build information. Commit is "unknown" when the binary
// carries no build info and "dev" when it was built outside a checkout.
func Read() BuildInfo {
	info := BuildInfo{Commit: "unknown"}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		info.Commit = "dev"
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value[:min(len(s.Value), 9)]
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	info.Version = strings.TrimSpace(buildVersion)
	if info.Version == "" {
		info.Version = info.commit()
	}
	return info
}

func (i BuildInfo) commit() string {
	if i.Dirty {
		return i.Commit + "+dirty"
	}
	return i.Commit
}

// Version returns the release version, or the commit for untagged builds.
func Version() string {
	return Read().Version
}

// Semver returns the release version, or false for development builds
// that only carry a commit hash.
func Semver() (*semver.Version, bool) {
	v, err := semver.NewVersion(strings.TrimSpace(buildVersion))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Satisfies reports whether the release version meets constraint, such as
// ">= 0.2". Development builds satisfy every constraint.
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	v, ok := Semver()
	if !ok {
		return true, nil
	}
	return c.Check(v), nil
}
