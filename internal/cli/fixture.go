package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/crateforge/crateforge/internal/fixture"
	"github.com/crateforge/crateforge/internal/paths"
	"github.com/crateforge/crateforge/internal/project"
	"github.com/crateforge/crateforge/internal/runtime"
)

// Represents the 'crateforge fixture' command.
type FixtureCmd struct {
	Base     string `help:"Shell-capable base image OCI archive." placeholder:"ARCHIVE"`
	Output   string `help:"Output directory for the fixture image." placeholder:"DIR"`
	Resource string `help:"Name prefix for the build container." placeholder:"NAME" default:"crateforge"`
}

// Executes the fixture command.
//
// Builds the always-unhealthy image used for exercising health-check
// handling. The fixture build never touches the crate pipeline.
func (c *FixtureCmd) Run(ctx context.Context) error {
	cfg, err := project.Load(".")
	if err != nil {
		return err
	}
	if c.Base == "" {
		c.Base = cfg.Base
	}
	if c.Base == "" {
		return fmt.Errorf("no base image archive given (set --base or the project file's base key)")
	}
	if c.Output == "" {
		c.Output = cfg.Output
	}
	if c.Output == "" {
		c.Output = paths.DefaultOutput()
	}

	if err := os.MkdirAll(c.Output, paths.DefaultDirMode); err != nil {
		return err
	}

	rt, err := runtime.New(containerdAddress(), namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = fixture.Build(ctx, fixture.Adapt(rt), fixture.Options{
		Base:     c.Base,
		Output:   c.Output,
		Resource: c.Resource,
	})
	if err != nil {
		return err
	}

	slog.Info("fixture image ready", "output", c.Output)
	return nil
}
