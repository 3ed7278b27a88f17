package build

import (
	"context"
	"io"

	"github.com/crateforge/crateforge/internal/runtime"
)

// Operations the pipeline needs from a running build container.
//
// Implemented by [runtime.Container]; faked in tests.
type Container interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
	MkdirAll(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	CopyFrom(ctx context.Context, w io.Writer, path string) error
	ReadFile(ctx context.Context, w io.Writer, path string) error
	Destroy(ctx context.Context)
}

// Starts build containers from OCI archives.
//
// Implemented by the containerd-backed [runtime.Runtime] via [Adapt];
// faked in tests.
type Runtime interface {
	StartContainer(ctx context.Context, path, id, platform string) (Container, error)
}

// Wraps the containerd runtime behind the pipeline's [Runtime] interface.
func Adapt(rt *runtime.Runtime) Runtime {
	return containerdRuntime{rt: rt}
}

type containerdRuntime struct {
	rt *runtime.Runtime
}

func (r containerdRuntime) StartContainer(ctx context.Context, path, id, platform string) (Container, error) {
	return r.rt.StartContainer(ctx, path, id, platform)
}
