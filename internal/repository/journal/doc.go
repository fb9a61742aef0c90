// Package journal persists the report of the last run.
//
// The FileRepository stores and loads a rename.Report as JSON on disk and
// exposes a Repository interface that the renamer service depends on.
package journal
