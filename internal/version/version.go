package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Set at build time via -ldflags "-X bennypowers.dev/sitecheck/internal/version.Version=v0.1.0"
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// GetVersion returns the ldflags version, falling back to the module version
// recorded by `go install`.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// GetFullVersion returns the version with commit and build time when known
func GetFullVersion() string {
	v := GetVersion()
	if GitCommit != "unknown" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		v = fmt.Sprintf("%s (commit: %s)", v, commit)
	}
	if BuildTime != "unknown" {
		v = fmt.Sprintf("%s built %s", v, BuildTime)
	}
	return v
}
