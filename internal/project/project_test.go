package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, Filename), []byte(content), 0644)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `
context: crate
builder: images/builder.tar
base: images/alpine.tar
output: out
platforms:
  - linux/amd64
  - linux/arm64
cache: false
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Context != "crate" {
		t.Fatalf("Context = %q, want %q", cfg.Context, "crate")
	}
	if cfg.Builder != "images/builder.tar" {
		t.Fatalf("Builder = %q, want %q", cfg.Builder, "images/builder.tar")
	}
	if cfg.Base != "images/alpine.tar" {
		t.Fatalf("Base = %q, want %q", cfg.Base, "images/alpine.tar")
	}
	if cfg.Output != "out" {
		t.Fatalf("Output = %q, want %q", cfg.Output, "out")
	}
	if len(cfg.Platforms) != 2 || cfg.Platforms[1] != "linux/arm64" {
		t.Fatalf("Platforms = %v, want two entries ending in linux/arm64", cfg.Platforms)
	}
	if cfg.CacheEnabled() {
		t.Fatal("CacheEnabled() = true, want false")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Context != "" || len(cfg.Platforms) != 0 {
		t.Fatalf("missing file did not yield zero config: %+v", cfg)
	}
	if !cfg.CacheEnabled() {
		t.Fatal("CacheEnabled() = false by default, want true")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := writeConfig(t, "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.CacheEnabled() {
		t.Fatal("CacheEnabled() = false for empty file, want true")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	dir := writeConfig(t, "platfroms: [linux/amd64]\n")

	_, err := Load(dir)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("Load() error = %v, want ErrConfig", err)
	}
}
