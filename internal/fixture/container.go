package fixture

import (
	"context"
	"io"

	"github.com/crateforge/crateforge/internal/runtime"
)

// Container is the slice of container behaviour the fixture builder
// needs.
type Container interface {
	CopyTo(ctx context.Context, content io.Reader, destDir string) error
	Stop(ctx context.Context) error
	Export(ctx context.Context, output string, spec runtime.ExportSpec) error
	Destroy(ctx context.Context)
}

// Runtime starts containers from OCI image archives.
type Runtime interface {
	StartContainer(ctx context.Context, path, id, platform string) (Container, error)
}

// Adapt wraps the containerd runtime to satisfy Runtime.
func Adapt(rt *runtime.Runtime) Runtime {
	return containerdRuntime{rt: rt}
}

type containerdRuntime struct {
	rt *runtime.Runtime
}

func (c containerdRuntime) StartContainer(ctx context.Context, path, id, platform string) (Container, error) {
	return c.rt.StartContainer(ctx, path, id, platform)
}
