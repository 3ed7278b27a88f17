// Package cli implements the crateforge command-line interface.
//
// The root command parses global flags and dispatches to the build,
// fixture, targets, and version subcommands. Logging is reconfigured
// after flag parsing so -q/-v/-d take effect for the whole run.
package cli
