// Package assemble packs a finished binary into a minimal runtime image.
//
// The produced OCI archive has no base image: one layer with exactly one
// executable under /app, an entry point invoking it directly (no shell),
// and the container runtime marker in the environment. The packaged
// application reads the marker at startup to adjust its behavior, so the
// marker's name and value are frozen constants.
//
// Output is deterministic: all timestamps are pinned and blob order is
// fixed, so identical inputs produce byte-identical archives.
package assemble
