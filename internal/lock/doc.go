// Package lock keeps two ans-renamer processes from mutating the same tree.
//
// The lock is an advisory file lock. Its holder writes its PID into the lock
// file so that a rejected process can name who is in the way.
package lock
