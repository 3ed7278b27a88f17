// Package manifest loads a crate's dependency manifest pair.
//
// A [Manifest] holds the raw Cargo.toml and Cargo.lock of the crate being
// built, identifies the binary the pipeline extracts, and digests the pair
// to key the warm dependency cache. It also writes the skeleton crate the
// dependency cache stage compiles: the same manifest pair with a
// placeholder entry point and no application source.
package manifest
