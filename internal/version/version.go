// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package version

import (
	"fmt"
	"runtime/debug"
)

// These are populated at build time
var Version string
var CommitHash string

var readBuildInfo = debug.ReadBuildInfo

func GetVersionString() string {
	version := Version
	if version == "" {
		version = "devel"
	}
	return fmt.Sprintf("%s (commit %s)", version, commit())
}

// commit falls back to the VCS revision stamped by the Go toolchain when no
// commit hash was set at build time
func commit() string {
	if CommitHash != "" {
		return CommitHash
	}
	info, ok := readBuildInfo()
	if !ok {
		return "unknown"
	}
	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return "unknown"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}
