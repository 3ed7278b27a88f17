package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crateforge/crateforge/internal/build"
	"github.com/crateforge/crateforge/internal/cache"
	"github.com/crateforge/crateforge/internal/manifest"
	"github.com/crateforge/crateforge/internal/paths"
	"github.com/crateforge/crateforge/internal/project"
	"github.com/crateforge/crateforge/internal/runtime"
)

// Represents the 'crateforge build' command.
type BuildCmd struct {
	Context  string   `help:"Crate root directory containing Cargo.toml and src/." placeholder:"DIR" default:"."`
	Builder  string   `help:"Builder image OCI archive." placeholder:"ARCHIVE"`
	Output   string   `help:"Output directory for exported images." placeholder:"DIR"`
	Platform []string `help:"Target platform, repeatable (e.g. linux/arm64)." placeholder:"PLATFORM"`
	NoCache  bool     `help:"Disable the warm dependency cache."`
	Resource string   `help:"Name prefix for build containers. Defaults to the package name." placeholder:"NAME"`
}

// Executes the build command.
//
// Options resolve in order: flags, then the project file, then built-in
// defaults. The pipeline runs once per requested platform.
func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := project.Load(c.Context)
	if err != nil {
		return err
	}
	c.applyProject(cfg)

	if c.Builder == "" {
		return fmt.Errorf("no builder image archive given (set --builder or the project file's builder key)")
	}

	man, err := manifest.Load(c.Context)
	if err != nil {
		return err
	}

	var store *cache.Store
	if !c.NoCache {
		store, err = cache.Open()
		if err != nil {
			return err
		}
	}

	rt, err := runtime.New(containerdAddress(), namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, build.Adapt(rt), build.Options{
		Manifest:  man,
		Context:   c.Context,
		Builder:   c.Builder,
		Output:    c.Output,
		Resource:  c.Resource,
		Platforms: c.Platform,
		Cache:     store,
	})
	if err != nil {
		return err
	}

	for _, image := range result.Images {
		slog.Info("image ready", "path", image)
	}
	return nil
}

// Fills unset options from the project file, then built-in defaults.
func (c *BuildCmd) applyProject(cfg *project.Config) {
	if c.Context == "." && cfg.Context != "" {
		c.Context = cfg.Context
	}
	if c.Builder == "" {
		c.Builder = cfg.Builder
	}
	if c.Output == "" {
		c.Output = cfg.Output
	}
	if c.Output == "" {
		c.Output = paths.DefaultOutput()
	}
	if len(c.Platform) == 0 {
		c.Platform = cfg.Platforms
	}
	if !c.NoCache && !cfg.CacheEnabled() {
		c.NoCache = true
	}
}
