// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package version

import (
	"runtime/debug"
	"testing"
)

func TestGetVersionString(t *testing.T) {
	origVersion, origCommitHash := Version, CommitHash
	origReadBuildInfo := readBuildInfo
	t.Cleanup(func() {
		Version, CommitHash = origVersion, origCommitHash
		readBuildInfo = origReadBuildInfo
	})
	buildInfo := func(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Settings: settings}, true
		}
	}
	noBuildInfo := func() (*debug.BuildInfo, bool) {
		return nil, false
	}
	testDefs := []struct {
		version       string
		commitHash    string
		readBuildInfo func() (*debug.BuildInfo, bool)
		expected      string
	}{
		{version: "v1.2.3", commitHash: "abc123", readBuildInfo: noBuildInfo, expected: "v1.2.3 (commit abc123)"},
		{version: "", commitHash: "abc123", readBuildInfo: noBuildInfo, expected: "devel (commit abc123)"},
		{version: "", commitHash: "", readBuildInfo: noBuildInfo, expected: "devel (commit unknown)"},
		{version: "", commitHash: "", readBuildInfo: buildInfo(), expected: "devel (commit unknown)"},
		{
			version:    "v1.2.3",
			commitHash: "",
			readBuildInfo: buildInfo(
				debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				debug.BuildSetting{Key: "vcs.modified", Value: "false"},
			),
			expected: "v1.2.3 (commit 0123456789ab)",
		},
		{
			version:    "",
			commitHash: "",
			readBuildInfo: buildInfo(
				debug.BuildSetting{Key: "vcs.revision", Value: "fedcba"},
				debug.BuildSetting{Key: "vcs.modified", Value: "true"},
			),
			expected: "devel (commit fedcba-dirty)",
		},
		{
			version:    "",
			commitHash: "abc123",
			readBuildInfo: buildInfo(
				debug.BuildSetting{Key: "vcs.revision", Value: "fedcba"},
			),
			expected: "devel (commit abc123)",
		},
	}
	for _, td := range testDefs {
		Version, CommitHash = td.version, td.commitHash
		readBuildInfo = td.readBuildInfo
		if got := GetVersionString(); got != td.expected {
			t.Fatalf("did not get expected version string: got %q, wanted %q", got, td.expected)
		}
	}
}
