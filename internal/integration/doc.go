// Package integration holds end-to-end tests that drive the services against
// real directory trees.
package integration
