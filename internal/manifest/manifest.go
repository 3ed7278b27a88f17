package manifest

import (
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/pelletier/go-toml/v2"

	"github.com/crateforge/crateforge/internal/errs"
)

const (

	// Crate manifest filename.
	manifestFile = "Cargo.toml"

	// Lockfile pinning the full dependency graph.
	lockFile = "Cargo.lock"
)

// The declared dependency set of a crate: its manifest and lockfile.
//
// The pair is loaded once per pipeline run and treated as read-only input.
// Its digest keys the warm dependency cache: editing either file changes
// the digest, editing source code does not.
type Manifest struct {
	Package  string // Crate package name from Cargo.toml.
	Binary   string // Name of the produced binary.
	Manifest []byte // Raw Cargo.toml contents.
	Lock     []byte // Raw Cargo.lock contents.
}

// Subset of Cargo.toml needed to identify the crate and its binary.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
}

// Loads the manifest pair from a crate directory.
//
// The binary name defaults to the package name; an explicit [[bin]] entry
// overrides it. A missing manifest or lockfile is fatal: without the lock
// the dependency cache key would not be reproducible.
func Load(dir string) (*Manifest, error) {
	manifest, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}

	lock, err := os.ReadFile(filepath.Join(dir, lockFile))
	if err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}

	var parsed cargoManifest
	if err := toml.Unmarshal(manifest, &parsed); err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}
	if parsed.Package.Name == "" {
		return nil, errs.Wrapf(ErrManifest, "%s has no package name", manifestFile)
	}

	binary := parsed.Package.Name
	if len(parsed.Bin) > 0 && parsed.Bin[0].Name != "" {
		binary = parsed.Bin[0].Name
	}

	return &Manifest{
		Package:  parsed.Package.Name,
		Binary:   binary,
		Manifest: manifest,
		Lock:     lock,
	}, nil
}

// Returns the content digest of the manifest pair.
//
// The digest covers Cargo.toml and Cargo.lock only. It changes exactly when
// the declared dependency set changes, making it a correct cache key for
// compiled dependencies.
func (m *Manifest) Digest() digest.Digest {
	h := digest.SHA256.Digester()
	h.Hash().Write(m.Manifest)
	h.Hash().Write([]byte{0})
	h.Hash().Write(m.Lock)
	return h.Digest()
}
