package build

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/crateforge/crateforge/internal/errs"
)

// Copies a host directory tree into the container.
//
// The tree rooted at hostDir is streamed as a tar archive and extracted
// into destDir, with entries rooted at prefix ("." extracts the
// directory's contents directly into destDir).
func copyTree(ctx context.Context, ctr Container, hostDir, destDir, prefix string) error {
	if _, err := os.Stat(hostDir); err != nil {
		return errs.Wrap(ErrFileSystemOperation, err)
	}

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		err := writeDirToTar(tw, hostDir, prefix)
		tw.Close()
		pw.CloseWithError(err)
	}()

	if err := ctr.CopyTo(ctx, pr, destDir); err != nil {
		return errs.Wrap(ErrFileSystemOperation, err)
	}

	return nil
}

// Writes a directory tree to a tar writer rooted at the given archive
// prefix.
func writeDirToTar(tw *tar.Writer, hostDir, prefix string) error {
	return filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}

		archivePath := filepath.ToSlash(filepath.Join(prefix, relPath))
		return writeTarEntry(tw, path, archivePath, d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}
