// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for timezoner binaries.
//
// Release builds inject the variables below with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/timezoner/lib/version.Version=1.2.0"
//
// When GitCommit is not injected, the VCS stamp the Go toolchain
// embeds (vcs.revision, vcs.modified, vcs.time) is used instead.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC build or commit time.
	BuildTime = "unknown"
)

var fillFromBuildInfo = sync.OnceFunc(func() {
	if GitCommit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	applyBuildSettings(info.Settings)
})

func applyBuildSettings(settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			GitCommit = setting.Value
			if len(GitCommit) > 12 {
				GitCommit = GitCommit[:12]
			}
		case "vcs.modified":
			GitDirty = setting.Value
		case "vcs.time":
			if BuildTime == "unknown" {
				BuildTime = setting.Value
			}
		}
	}
}

// Info is the one-line --version output.
func Info() string {
	fillFromBuildInfo()
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full is Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns Version alone.
func Short() string {
	return Version
}
