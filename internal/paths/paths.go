package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "crateforge"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for warm dependency caches.
//
//	Linux:   ~/.cache/crateforge/deps
//	macOS:   ~/Library/Caches/crateforge/deps
func DependencyCache() string {
	return filepath.Join(xdg.CacheHome, toolName, "deps")
}

// Path to the directory for scratch build state (skeleton crates, staging
// files for atomic writes).
//
//	Linux:   $XDG_RUNTIME_DIR/crateforge or /run/user/<uid>/crateforge
//	macOS:   ~/Library/Caches/crateforge/run
func Scratch() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default output directory for exported image archives, relative to the
// working directory.
func DefaultOutput() string {
	return "dist"
}
