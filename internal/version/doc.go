// Package version exposes build metadata for ans-renamer.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
package version
