// Package manifest reads the Python dependency manifest (requirements.txt)
// that ships next to the ANS dashboard and checks version selections
// against it.
//
// Only the two constraint forms the manifest uses are understood: lower
// bounds (">=") and exact pins ("=="). Everything else is reported as a parse
// error with its line number, so that a manifest that passes Parse is one a
// resolver can satisfy with plain version comparisons.
package manifest
