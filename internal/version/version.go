package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// shortCommitLength is how much of a VCS revision is shown.
const shortCommitLength = 7

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and Go version.
// When ldflags left Commit or BuildTime unset, the VCS stamp of the binary is used.
func Full() string {
	commit, built := Commit, BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "none" && s.Value != "":
				commit = s.Value[:min(len(s.Value), shortCommitLength)]
			case s.Key == "vcs.time" && built == "unknown" && s.Value != "":
				built = s.Value
			}
		}
	}

	return fmt.Sprintf("ans-renamer %s, commit: %s, built at: %s, %s", Version, commit, built, runtime.Version())
}
