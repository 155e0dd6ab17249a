// Package config loads kitforge settings and carries its build stamp.
package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/good-yellow-bee/kitforge/pkg/config.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildInfo is what `kitforge version` reports.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo returns the build stamp. Without ldflags the commit falls back
// to the VCS revision embedded by the Go toolchain, when there is one.
func GetBuildInfo() BuildInfo {
	commit := Commit
	if commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 12 {
					commit = s.Value[:12]
				}
			}
		}
	}
	return BuildInfo{
		Version:   Version,
		Commit:    commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func VersionString() string {
	b := GetBuildInfo()
	return fmt.Sprintf("kitforge %s (%s, %s) %s", b.Version, b.Commit, b.Platform, b.GoVersion)
}

// UserAgent identifies kitforge to registries and the GitHub API.
func UserAgent() string {
	return "kitforge/" + Version
}
