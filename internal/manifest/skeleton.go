package manifest

import (
	"os"
	"path/filepath"

	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/paths"
)

// Placeholder entry point compiled during the dependency warm-up phase.
// It produces a valid (empty) binary while pulling in every declared
// dependency, which is all the warm-up needs.
const placeholderMain = "fn main() {}\n"

// Writes a skeleton crate into dir: the real manifest pair plus a
// placeholder src/main.rs.
//
// The skeleton deliberately contains no application source, so compiling
// it produces dependency objects whose validity depends only on the
// manifest pair. The artifact stage later overwrites the placeholder with
// the real source tree.
func (m *Manifest) WriteSkeleton(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "src"), paths.DefaultDirMode); err != nil {
		return errs.Wrap(ErrManifest, err)
	}

	files := map[string][]byte{
		manifestFile:                  m.Manifest,
		lockFile:                      m.Lock,
		filepath.Join("src", "main.rs"): []byte(placeholderMain),
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, paths.DefaultFileMode); err != nil {
			return errs.Wrap(ErrManifest, err)
		}
	}

	return nil
}
