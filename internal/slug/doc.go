// Package slug turns human-readable folder names into ASCII snake_case.
package slug
