// Package target resolves build platforms to cross-compilation toolchains.
//
// Each supported architecture maps to exactly one [Toolchain]: the Rust
// target triple, the cross linker and its cargo environment variable, the
// static-link rustflags, and the toolchain package the builder container
// must install when cross-compiling. Resolution is a table lookup; an
// architecture outside the table fails closed before any compilation is
// attempted.
package target
