package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testManifest = `[package]
name = "oxker"
version = "0.10.0"
edition = "2021"

[dependencies]
bollard = "0.18"
`

const testLock = `version = 3

[[package]]
name = "bollard"
version = "0.18.1"
`

func writeCrate(t *testing.T, manifest, lock string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(lock), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeCrate(t, testManifest, testLock)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Package != "oxker" {
		t.Fatalf("package = %q, want oxker", m.Package)
	}
	if m.Binary != "oxker" {
		t.Fatalf("binary = %q, want oxker", m.Binary)
	}
}

func TestLoadExplicitBin(t *testing.T) {
	withBin := testManifest + "\n[[bin]]\nname = \"monitor\"\npath = \"src/main.rs\"\n"
	dir := writeCrate(t, withBin, testLock)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Binary != "monitor" {
		t.Fatalf("binary = %q, want monitor", m.Binary)
	}
}

func TestLoadMissingLock(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); !errors.Is(err, ErrManifest) {
		t.Fatalf("error = %v, want ErrManifest", err)
	}
}

func TestLoadMissingPackageName(t *testing.T) {
	dir := writeCrate(t, "[dependencies]\nserde = \"1\"\n", testLock)

	if _, err := Load(dir); !errors.Is(err, ErrManifest) {
		t.Fatalf("error = %v, want ErrManifest", err)
	}
}

func TestDigestDependsOnManifestPairOnly(t *testing.T) {
	dir := writeCrate(t, testManifest, testLock)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := m.Digest()
	if base == "" {
		t.Fatal("empty digest")
	}

	// Identical inputs digest identically.
	again, err := Load(writeCrate(t, testManifest, testLock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Digest() != base {
		t.Fatal("digest is not deterministic for identical manifests")
	}

	// A lockfile change must change the digest.
	bumped, err := Load(writeCrate(t, testManifest, testLock+"\n[[package]]\nname = \"serde\"\nversion = \"1.0.0\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bumped.Digest() == base {
		t.Fatal("lockfile change did not change the digest")
	}
}

func TestWriteSkeleton(t *testing.T) {
	m, err := Load(writeCrate(t, testManifest, testLock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir := t.TempDir()
	if err := m.WriteSkeleton(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	main, err := os.ReadFile(filepath.Join(dir, "src", "main.rs"))
	if err != nil {
		t.Fatalf("placeholder main.rs missing: %v", err)
	}
	if string(main) != placeholderMain {
		t.Fatalf("main.rs = %q, want placeholder", main)
	}

	manifest, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatalf("Cargo.toml missing: %v", err)
	}
	if string(manifest) != testManifest {
		t.Fatal("skeleton Cargo.toml differs from the source manifest")
	}
}
