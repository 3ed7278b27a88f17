package build

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/crateforge/crateforge/internal/cache"
	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/manifest"
	"github.com/crateforge/crateforge/internal/paths"
)

// Controls pipeline execution.
type Options struct {
	Manifest  *manifest.Manifest // Dependency manifest pair of the crate being built.
	Context   string             // Crate root, containing Cargo.toml and src/.
	Builder   string             // Path to the builder image OCI archive.
	Output    string             // Directory for the exported images.
	Resource  string             // Name prefix for container IDs. Defaults to the package name.
	Platforms []string           // Target platforms (e.g., ["linux/arm64"]). Defaults to host.
	Cache     *cache.Store       // Warm dependency cache. Nil disables cache reuse.
}

// Returned after successful pipeline execution.
type Result struct {
	Images []string // Paths of the exported image archives, one per platform.
}

// Executes the build pipeline for every requested platform.
//
// Platforms are built in order; the first failure aborts the run. Each
// platform resolves its toolchain before any container is started, warms
// or restores the dependency cache, builds the release binary, and packs
// it into an empty-base runtime image.
func Run(ctx context.Context, rt Runtime, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}
	if opts.Resource == "" {
		opts.Resource = opts.Manifest.Package
	}

	slog.Info("executing pipeline",
		"crate", opts.Manifest.Package,
		"binary", opts.Manifest.Binary,
		"output", opts.Output,
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, errs.Wrap(ErrFileSystemOperation, err)
	}

	return newPipeline(rt, opts).run(ctx)
}
