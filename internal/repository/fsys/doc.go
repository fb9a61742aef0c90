// Package fsys performs the file system mutations of the renamer.
//
// OSMover renames directories in place. When enabled, a rename that fails
// because source and target live on different file systems is retried as a
// recursive copy followed by removal of the source.
package fsys
