// Package status prints the journal of the last run.
package status
