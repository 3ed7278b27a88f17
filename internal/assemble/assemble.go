package assemble

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/crateforge/crateforge/internal/errs"
	imagecfg "github.com/crateforge/crateforge/internal/image"
	"github.com/crateforge/crateforge/internal/paths"
)

const (

	// Name of the environment variable the packaged binary reads to detect
	// that it is running inside a container. Frozen contract with the
	// monitored application: changing either constant breaks a consumer
	// this repository does not control.
	RuntimeMarkerName = "OXKER_RUNTIME"

	// Value of the runtime marker.
	RuntimeMarkerValue = "container"

	// In-image directory holding the sole executable.
	binaryDir = "/app"

	// Layer tar entry name for the binary directory (no leading slash;
	// tar paths are archive-relative).
	layerDirName = "app"

	// Filename of the OCI archive produced by Write.
	Filename = "image.tar"
)

// Returns the runtime marker as a single environment entry.
func RuntimeMarker() string {
	return RuntimeMarkerName + "=" + RuntimeMarkerValue
}

// All timestamps in the archive are pinned to the epoch so that identical
// inputs produce byte-identical archives.
var epoch = time.Unix(0, 0).UTC()

// Describes the runtime image to assemble.
type Image struct {
	Binary       []byte // Contents of the statically linked executable.
	Name         string // Executable name; the entry point becomes /app/<Name>.
	Architecture string // OCI architecture of the binary (e.g., "arm64").
	Variant      string // Optional architecture variant (e.g., "v6").
}

// Writes a minimal runtime image as an OCI archive at path.
//
// The image has no base: a single layer containing exactly one executable
// at /app/<Name>, a config carrying the runtime marker environment
// variable, and the executable as the sole entry point with no shell
// indirection. No package manager, shell, or dynamic loader
// is present; the binary must be self-contained. The archive is staged in
// a temporary file and renamed into place, so an aborted run never leaves
// a partial archive at path.
func Write(path string, img Image) error {
	if len(img.Binary) == 0 {
		return errs.Wrapf(ErrAssemble, "empty binary for %q", img.Name)
	}
	if img.Name == "" {
		return errs.Wrapf(ErrAssemble, "missing binary name")
	}
	if img.Architecture == "" {
		return errs.Wrapf(ErrAssemble, "missing architecture")
	}

	layer, diffID, err := buildLayer(img)
	if err != nil {
		return err
	}

	config, err := buildConfig(img, diffID)
	if err != nil {
		return err
	}

	manifest, err := buildManifest(config, layer)
	if err != nil {
		return err
	}

	index, err := buildIndex(manifest, img)
	if err != nil {
		return err
	}

	return writeArchive(path, index, []blob{config, layer, manifest})
}

// A serialized OCI blob and its descriptor.
type blob struct {
	desc ocispec.Descriptor
	data []byte
}

// Builds the image's single layer: a gzip tar stream containing exactly
// the executable at /app/<Name>.
//
// Returns the compressed layer blob and the diff ID of the uncompressed
// stream.
func buildLayer(img Image) (blob, digest.Digest, error) {
	var uncompressed bytes.Buffer
	tw := tar.NewWriter(&uncompressed)

	dir := &tar.Header{
		Name:     layerDirName + "/",
		Typeflag: tar.TypeDir,
		Mode:     0755,
		ModTime:  epoch,
	}
	if err := tw.WriteHeader(dir); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}

	file := &tar.Header{
		Name:     layerDirName + "/" + img.Name,
		Typeflag: tar.TypeReg,
		Mode:     0755,
		Size:     int64(len(img.Binary)),
		ModTime:  epoch,
	}
	if err := tw.WriteHeader(file); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}
	if _, err := tw.Write(img.Binary); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}
	if err := tw.Close(); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}

	diffID := digest.FromBytes(uncompressed.Bytes())

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(uncompressed.Bytes()); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}
	if err := zw.Close(); err != nil {
		return blob{}, "", errs.Wrap(ErrAssemble, err)
	}

	return newBlob(ocispec.MediaTypeImageLayerGzip, compressed.Bytes()), diffID, nil
}

// Builds the image config: empty base, one diff ID, the runtime marker,
// and the executable as sole entry point.
func buildConfig(img Image, diffID digest.Digest) (blob, error) {
	created := epoch

	config := imagecfg.Config{
		Created:      &created,
		Architecture: img.Architecture,
		Variant:      img.Variant,
		OS:           "linux",
		Config: imagecfg.ConfigBody{
			Env:        []string{RuntimeMarker()},
			Entrypoint: []string{binaryDir + "/" + img.Name},
		},
		RootFS: imagecfg.RootFS{
			Type:    "layers",
			DiffIDs: []digest.Digest{diffID},
		},
	}

	return marshalBlob(ocispec.MediaTypeImageConfig, config)
}

// Builds the image manifest referencing the config and the single layer.
func buildManifest(config, layer blob) (blob, error) {
	manifest := ocispec.Manifest{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    config.desc,
		Layers:    []ocispec.Descriptor{layer.desc},
	}

	return marshalBlob(ocispec.MediaTypeImageManifest, manifest)
}

// Builds the archive's index.json document.
func buildIndex(manifest blob, img Image) ([]byte, error) {
	desc := manifest.desc
	desc.Platform = &ocispec.Platform{
		OS:           "linux",
		Architecture: img.Architecture,
		Variant:      img.Variant,
	}

	index := ocispec.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageIndex,
		Manifests: []ocispec.Descriptor{desc},
	}

	b, err := json.Marshal(index)
	if err != nil {
		return nil, errs.Wrap(ErrAssemble, err)
	}
	return b, nil
}

// Serializes a document into a described blob.
func marshalBlob(mediaType string, v any) (blob, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return blob{}, errs.Wrap(ErrAssemble, err)
	}
	return newBlob(mediaType, b), nil
}

// Wraps raw bytes in a blob with a computed descriptor.
func newBlob(mediaType string, data []byte) blob {
	return blob{
		desc: ocispec.Descriptor{
			MediaType: mediaType,
			Digest:    digest.FromBytes(data),
			Size:      int64(len(data)),
		},
		data: data,
	}
}

// Writes the OCI archive: oci-layout, index.json, and the blobs in a
// fixed order, all with epoch timestamps.
//
// The archive is staged next to its final path and renamed into place so
// the output either exists completely or not at all.
func writeArchive(path string, index []byte, blobs []blob) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".assemble-*")
	if err != nil {
		return errs.Wrap(ErrAssemble, err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	tw := tar.NewWriter(f)

	layout, err := json.Marshal(ocispec.ImageLayout{Version: ocispec.ImageLayoutVersion})
	if err != nil {
		f.Close()
		return errs.Wrap(ErrAssemble, err)
	}

	if err = writeEntry(tw, ocispec.ImageLayoutFile, layout); err != nil {
		f.Close()
		return err
	}
	if err = writeEntry(tw, "index.json", index); err != nil {
		f.Close()
		return err
	}

	for _, b := range blobs {
		name := "blobs/" + b.desc.Digest.Algorithm().String() + "/" + b.desc.Digest.Encoded()
		if err = writeEntry(tw, name, b.data); err != nil {
			f.Close()
			return err
		}
	}

	if err = tw.Close(); err != nil {
		f.Close()
		return errs.Wrap(ErrAssemble, err)
	}
	if err = f.Close(); err != nil {
		return errs.Wrap(ErrAssemble, err)
	}

	if err = os.Rename(f.Name(), path); err != nil {
		return errs.Wrap(ErrAssemble, err)
	}
	return nil
}

// Writes one file entry with fixed metadata to the archive.
func writeEntry(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     int64(paths.DefaultFileMode),
		Size:     int64(len(data)),
		ModTime:  epoch,
	}
	if err := tw.WriteHeader(header); err != nil {
		return errs.Wrap(ErrAssemble, err)
	}
	if _, err := tw.Write(data); err != nil {
		return errs.Wrap(ErrAssemble, err)
	}
	return nil
}
