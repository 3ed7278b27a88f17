package cache

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"

	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/paths"
)

// Stores warm dependency caches as gzip-compressed tar archives on the
// host, keyed by (target triple, manifest digest).
//
// A key identifies one compiled-dependency set: same triple, same declared
// dependencies. Source changes never touch the key, so a cache entry built
// for one revision of a crate stays valid for every later revision with an
// unchanged manifest pair.
type Store struct {
	dir string // Directory holding the cache archives.
}

// Opens the store rooted at the default dependency cache directory.
func Open() (*Store, error) {
	return OpenAt(paths.DependencyCache())
}

// Opens a store rooted at dir, creating it when missing.
func OpenAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return nil, errs.Wrap(ErrCache, err)
	}
	return &Store{dir: dir}, nil
}

// Returns the archive path for a cache key without checking existence.
//
// The key collapses the triple and the manifest digest into one sha256 so
// the filename stays fixed-length regardless of triple naming.
func (s *Store) path(triple string, manifest digest.Digest) string {
	key := digest.FromString(triple + "\x00" + manifest.String())
	return filepath.Join(s.dir, key.Encoded()+".tar.gz")
}

// Reports whether a warm cache exists for the key.
func (s *Store) Has(triple string, manifest digest.Digest) bool {
	_, err := os.Stat(s.path(triple, manifest))
	return err == nil
}

// Opens the warm cache archive for reading as an uncompressed tar stream.
//
// The caller must close the returned reader.
func (s *Store) Get(triple string, manifest digest.Digest) (io.ReadCloser, error) {
	f, err := os.Open(s.path(triple, manifest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrapf(ErrCacheMiss, "triple %s", triple)
		}
		return nil, errs.Wrap(ErrCache, err)
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(ErrCache, err)
	}

	return &cacheReader{zr: zr, f: f}, nil
}

// Stores a tar stream as the warm cache for the key.
//
// The archive is written to a temporary file and renamed into place, so a
// failed or cancelled store never leaves a partial entry behind. An
// existing entry for the same key is replaced.
func (s *Store) Put(triple string, manifest digest.Digest, r io.Reader) (err error) {
	final := s.path(triple, manifest)

	tmp, err := os.CreateTemp(s.dir, ".cache-*")
	if err != nil {
		return errs.Wrap(ErrCache, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	// BestSpeed: the archives are large compiled-object trees that get
	// rewritten whenever the manifest changes; compression time dominates.
	zw, err := gzip.NewWriterLevel(tmp, gzip.BestSpeed)
	if err != nil {
		tmp.Close()
		return errs.Wrap(ErrCache, err)
	}

	if _, err = io.Copy(zw, r); err != nil {
		zw.Close()
		tmp.Close()
		return errs.Wrap(ErrCache, err)
	}
	if err = zw.Close(); err != nil {
		tmp.Close()
		return errs.Wrap(ErrCache, err)
	}
	if err = tmp.Close(); err != nil {
		return errs.Wrap(ErrCache, err)
	}

	if err = os.Rename(tmp.Name(), final); err != nil {
		return errs.Wrap(ErrCache, err)
	}

	slog.Debug("warm cache stored", "triple", triple, "path", final)
	return nil
}

// Removes the cache entry for the key, if present.
func (s *Store) Remove(triple string, manifest digest.Digest) error {
	if err := os.Remove(s.path(triple, manifest)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(ErrCache, err)
	}
	return nil
}

// Wraps a gzip reader together with its backing file so one Close releases
// both.
type cacheReader struct {
	zr *gzip.Reader
	f  *os.File
}

func (r *cacheReader) Read(p []byte) (int, error) {
	return r.zr.Read(p)
}

func (r *cacheReader) Close() error {
	zerr := r.zr.Close()
	ferr := r.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// Formats a key for log output.
func Key(triple string, manifest digest.Digest) string {
	return fmt.Sprintf("%s@%s", triple, manifest.Encoded()[:12])
}
