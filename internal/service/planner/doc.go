// Package planner predicts what the fixed rename table would do to the tree
// as it is right now, without touching it.
package planner
