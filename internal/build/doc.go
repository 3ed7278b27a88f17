// Package build orchestrates the cross-architecture build pipeline.
//
// A pipeline run takes a crate (source tree plus its dependency manifest
// pair), a builder image archive, and a set of target platforms, and
// produces one minimal runtime image per platform. Each platform is built
// in four strictly sequential stages:
//
//  1. Target resolution: the requested architecture is mapped to a
//     toolchain (target triple, cross linker, static-link flags) by the
//     target package. Unsupported architectures fail here, before any
//     container is started.
//  2. Dependency warm-up: a skeleton crate carrying only the manifest
//     pair is compiled inside a builder container, producing a warm
//     dependency tree. The tree is cached on the host keyed by (triple,
//     manifest digest) and restored on later runs instead of recompiled.
//  3. Artifact build: the real source is copied over the skeleton, the
//     entry point is touched to defeat timestamp heuristics, and the
//     release build runs against the warmed dependencies. Exactly one
//     statically linked binary comes out, at a deterministic path.
//  4. Assembly: the binary is packaged into an empty-base OCI archive by
//     the assemble package, carrying the container runtime marker.
//
// Container operations are delegated to the runtime package through
// narrow interfaces, so stage logic is testable without a containerd
// daemon. Build containers are destroyed when the run completes.
//
// Example usage:
//
//	result, err := build.Run(ctx, build.Adapt(rt), build.Options{
//	    Manifest:  crate,
//	    Context:   ".",
//	    Builder:   "rust-builder.tar",
//	    Output:    "dist",
//	    Platforms: []string{"linux/amd64", "linux/arm64"},
//	})
//	if err != nil {
//	    return err
//	}
package build
