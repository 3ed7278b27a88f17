package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/crateforge/crateforge/internal/cache"
	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/target"
)

// Shell used for build commands inside the builder container.
const buildShell = "/bin/sh"

// Installs the toolchain the resolved target needs inside the builder
// container.
//
// Every target compiles against musl; cross targets additionally need the
// host gcc package providing the cross linker. The rustup target is added
// last so a missing toolchain surfaces here, cheaply, rather than halfway
// through a dependency build.
func provisionToolchain(ctx context.Context, ctr Container, tc target.Toolchain) error {
	packages := []string{"musl-tools"}
	if tc.Cross() {
		packages = append(packages, tc.HostPackage)
	}

	steps := []string{
		"apt-get update -qq",
		"apt-get install -y -qq --no-install-recommends " + strings.Join(packages, " "),
		"rustup target add " + tc.Triple,
	}

	for _, step := range steps {
		if err := sh(ctx, ctr, ErrToolchainSetup, step, nil, ""); err != nil {
			return err
		}
	}

	return nil
}

// Warms the dependency cache for the resolved target.
//
// The skeleton crate (manifest pair plus placeholder entry point) is
// copied into the container and compiled, producing a target tree whose
// contents depend only on (triple, manifest digest). When the host cache
// holds an entry for that key the tree is restored instead; when it does
// not, the freshly built tree is stored for later runs. The skeleton
// carries no application source, so source edits can never invalidate
// this stage.
func (p *pipeline) warmDependencies(ctx context.Context, ctr Container, tc target.Toolchain) error {
	if err := ctr.MkdirAll(ctx, containerWorkdir); err != nil {
		return err
	}

	skeleton, err := os.MkdirTemp("", "skeleton-*")
	if err != nil {
		return errs.Wrap(ErrFileSystemOperation, err)
	}
	defer os.RemoveAll(skeleton)

	if err := p.opts.Manifest.WriteSkeleton(skeleton); err != nil {
		return err
	}
	if err := copyTree(ctx, ctr, skeleton, containerWorkdir, "."); err != nil {
		return err
	}

	key := p.opts.Manifest.Digest()

	if p.restoreWarmCache(ctx, ctr, tc, key) {
		return nil
	}

	slog.Info("warming dependencies", "triple", tc.Triple)

	if err := sh(ctx, ctr, ErrDependencyBuild, cargoBuild(tc), tc.Environ(), containerWorkdir); err != nil {
		return err
	}

	// The placeholder produced a binary at the artifact's deterministic
	// path. Drop it so a later failure cannot be masked by a stale,
	// empty binary.
	if err := ctr.RemoveAll(ctx, artifactPath(tc, p.opts.Manifest.Binary)); err != nil {
		return err
	}

	p.storeWarmCache(ctx, ctr, tc, key)
	return nil
}

// Restores a warm dependency tree from the host cache, if one exists for
// the key. Returns true when the tree was restored.
func (p *pipeline) restoreWarmCache(ctx context.Context, ctr Container, tc target.Toolchain, key digest.Digest) bool {
	if p.opts.Cache == nil {
		return false
	}

	r, err := p.opts.Cache.Get(tc.Triple, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("warm cache read failed, rebuilding dependencies", "error", err)
		}
		return false
	}
	defer r.Close()

	if err := ctr.CopyTo(ctx, r, containerWorkdir); err != nil {
		slog.Warn("warm cache restore failed, rebuilding dependencies", "error", err)
		return false
	}

	slog.Info("warm cache restored", "key", cache.Key(tc.Triple, key))
	return true
}

// Stores the container's warmed target tree in the host cache.
//
// A failure to store is logged and ignored: the build already has its
// warm tree, only future runs lose the shortcut.
func (p *pipeline) storeWarmCache(ctx context.Context, ctr Container, tc target.Toolchain, key digest.Digest) {
	if p.opts.Cache == nil {
		return
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(ctr.CopyFrom(ctx, pw, containerWorkdir+"/target"))
	}()

	if err := p.opts.Cache.Put(tc.Triple, key, pr); err != nil {
		slog.Warn("warm cache store failed", "error", err)
		return
	}

	slog.Info("warm cache stored", "key", cache.Key(tc.Triple, key))
}

// Builds the release binary against the warmed dependency tree and copies
// it out of the container.
//
// The real source tree replaces the skeleton placeholder, then the entry
// point is touched so the build system can never reuse the placeholder's
// compilation unit, even when cache transfer has skewed file timestamps.
// Compiler diagnostics propagate verbatim on failure.
func (p *pipeline) buildArtifact(ctx context.Context, ctr Container, tc target.Toolchain) ([]byte, error) {
	src := filepath.Join(p.opts.Context, "src")
	if err := copyTree(ctx, ctr, src, containerWorkdir, "src"); err != nil {
		return nil, err
	}

	if err := sh(ctx, ctr, ErrCompile, "touch src/main.rs", nil, containerWorkdir); err != nil {
		return nil, err
	}

	slog.Info("compiling release binary", "triple", tc.Triple, "binary", p.opts.Manifest.Binary)

	if err := sh(ctx, ctr, ErrCompile, cargoBuild(tc), tc.Environ(), containerWorkdir); err != nil {
		return nil, err
	}

	var binary bytes.Buffer
	if err := ctr.ReadFile(ctx, &binary, artifactPath(tc, p.opts.Manifest.Binary)); err != nil {
		return nil, err
	}
	if binary.Len() == 0 {
		return nil, errs.Wrapf(ErrCompile, "empty artifact at %s", artifactPath(tc, p.opts.Manifest.Binary))
	}

	return binary.Bytes(), nil
}

// Returns the release build command for a toolchain.
func cargoBuild(tc target.Toolchain) string {
	return "cargo build --release --target " + tc.Triple
}

// Returns the deterministic in-container path of the finished binary.
func artifactPath(tc target.Toolchain, binary string) string {
	return fmt.Sprintf("%s/target/%s/release/%s", containerWorkdir, tc.Triple, binary)
}

// Runs a shell command inside the container, wrapping a non-zero exit
// under the given sentinel with the captured stderr attached verbatim.
func sh(ctx context.Context, ctr Container, sentinel error, command string, env []string, workdir string) error {
	slog.Debug("run", "command", command, "workdir", workdir)

	result, err := ctr.Exec(ctx, buildShell, command, env, workdir)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return errs.Wrapf(sentinel, "%q exited with code %d:\n%s", command, result.ExitCode, result.Stderr)
	}
	return nil
}
