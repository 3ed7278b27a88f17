// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image import
// and container creation for the build pipeline. Builder and base OCI
// archives are imported, tagged with a deterministic content hash,
// unpacked for the target platform, and used to create containers with
// overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Build commands are
// executed inside the container, source trees and artifacts are copied in
// and out as tar streams, and the final filesystem state can be committed
// and exported as a new OCI archive with an [ExportSpec] applied to its
// config. When a container is no longer needed it should be destroyed to
// release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "crateforge")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "rust-builder.tar", "warmup-1", "linux/arm64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "cargo build --release", nil, "/build")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ExportSpec{Entrypoint: []string{"/app/oxker"}})
package runtime
