package project

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/crateforge/crateforge/internal/errs"
)

// Filename of the optional project configuration file, looked up in the
// crate context directory.
const Filename = "crateforge.yaml"

// Project-level defaults for pipeline runs. Command-line flags override
// any value set here.
type Config struct {
	Context   string   `yaml:"context"`   // Crate root directory.
	Builder   string   `yaml:"builder"`   // Builder image OCI archive.
	Base      string   `yaml:"base"`      // Fixture base image OCI archive.
	Output    string   `yaml:"output"`    // Output directory for images.
	Platforms []string `yaml:"platforms"` // Target platforms.
	Cache     *bool    `yaml:"cache"`     // Warm dependency cache toggle. Nil means enabled.
}

// Loads the project configuration from dir.
//
// A missing file is not an error; it yields the zero configuration.
// Unknown keys are rejected so a typo fails loudly instead of being
// silently ignored.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, Filename)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(ErrConfig, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); errors.Is(err, io.EOF) {
		return &Config{}, nil
	} else if err != nil {
		return nil, errs.Wrapf(ErrConfig, "%s: %w", path, err)
	}

	return &cfg, nil
}

// Reports whether the warm dependency cache is enabled.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}
