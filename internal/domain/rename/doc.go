// Package rename contains the domain types of the folder rename utility:
// the source/target Pair, the per-attempt Outcome, the Report of a whole run
// and the Actor that ran it.
package rename
