package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/crateforge/crateforge/internal/assemble"
	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/paths"
	"github.com/crateforge/crateforge/internal/target"
)

// Working directory for the crate inside the build container.
const containerWorkdir = "/build"

// Holds shared state for building all platforms of a pipeline run.
type pipeline struct {
	rt         Runtime     // Container runtime for builder containers.
	opts       Options     // Pipeline options, fully defaulted by Run.
	containers []Container // Builder containers across all platforms, destroyed after the run.
}

// Creates a new [pipeline] from the given options.
func newPipeline(rt Runtime, opts Options) *pipeline {
	return &pipeline{rt: rt, opts: opts}
}

// Builds every requested platform in order.
//
// All builder containers are destroyed when the run completes, whether or
// not it succeeded.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	defer p.destroyContainers(ctx)

	result := &Result{}

	for _, platform := range p.opts.Platforms {
		image, err := p.buildPlatform(ctx, platform)
		if err != nil {
			return nil, errs.Wrapf(ErrBuild, "platform %s: %w", platform, err)
		}
		result.Images = append(result.Images, image)
	}

	return result, nil
}

// Runs the four pipeline stages for a single platform and returns the
// path of the exported image archive.
//
// The toolchain is resolved before the builder container starts, so an
// unsupported architecture never costs a container or a compile.
func (p *pipeline) buildPlatform(ctx context.Context, platform string) (string, error) {
	bp, err := target.Parse(platform)
	if err != nil {
		return "", err
	}

	tc, err := target.Resolve(bp)
	if err != nil {
		return "", err
	}

	slog.Info("building platform",
		"platform", platform,
		"triple", tc.Triple,
		"cross", tc.Cross(),
	)

	output := p.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return "", errs.Wrap(ErrFileSystemOperation, err)
	}

	ctr, err := p.rt.StartContainer(ctx, p.opts.Builder, p.containerID(platform), platform)
	if err != nil {
		return "", err
	}
	p.containers = append(p.containers, ctr)

	if err := provisionToolchain(ctx, ctr, tc); err != nil {
		return "", err
	}

	if err := p.warmDependencies(ctx, ctr, tc); err != nil {
		return "", err
	}

	binary, err := p.buildArtifact(ctx, ctr, tc)
	if err != nil {
		return "", err
	}

	return p.assemble(output, binary, bp.Arch)
}

// Packs the finished binary into the empty-base runtime image.
func (p *pipeline) assemble(output string, binary []byte, arch string) (string, error) {
	path := filepath.Join(output, assemble.Filename)

	err := assemble.Write(path, assemble.Image{
		Binary:       binary,
		Name:         p.opts.Manifest.Binary,
		Architecture: arch,
	})
	if err != nil {
		return "", err
	}

	return path, nil
}

// Destroys all builder containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a platform, scoped to this resource.
func (p *pipeline) containerID(platform string) string {
	return fmt.Sprintf("%s-%s-builder", p.opts.Resource, platformSlug(platform))
}

// Returns the output directory for a specific platform.
//
// When building for a single platform, the output directory is left as-is
// to preserve the {output}/image.tar convention. For multi-platform runs,
// each platform gets a subdirectory (e.g., {output}/linux-arm64).
func (p *pipeline) platformOutput(platform string) string {
	if len(p.opts.Platforms) == 1 {
		return p.opts.Output
	}
	return filepath.Join(p.opts.Output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/arm/v6" becomes
// "linux-arm-v6").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
