// Package renamer runs the folder normalization workflows.
//
// Run applies the fixed rename table under the configured root. Every pair is
// attempted exactly once, in order; a pair whose move fails for any reason is
// skipped without a visible error. RunSlug renames every directory below a
// root to its slug. Both print the completion message exactly once, whatever
// happened to the individual renames, and record a report in the journal.
package renamer
