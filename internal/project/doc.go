// Package project loads the optional per-crate configuration file.
//
// The file provides defaults for pipeline runs; command-line flags take
// precedence over every value it sets.
package project
