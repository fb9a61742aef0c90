// Package deps checks the dashboard's Python dependency manifest from the
// command line.
package deps
