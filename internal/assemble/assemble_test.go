package assemble

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	imagecfg "github.com/crateforge/crateforge/internal/image"
)

func TestRuntimeMarkerContract(t *testing.T) {
	// Frozen external contract: the packaged binary reads this exact
	// variable to detect that it runs inside a container.
	if RuntimeMarkerName != "OXKER_RUNTIME" {
		t.Fatalf("marker name = %q, want OXKER_RUNTIME", RuntimeMarkerName)
	}
	if RuntimeMarkerValue != "container" {
		t.Fatalf("marker value = %q, want container", RuntimeMarkerValue)
	}
	if RuntimeMarker() != "OXKER_RUNTIME=container" {
		t.Fatalf("marker entry = %q", RuntimeMarker())
	}
}

func writeTestImage(t *testing.T) (string, Image) {
	t.Helper()
	img := Image{
		Binary:       []byte("\x7fELF fake static binary"),
		Name:         "oxker",
		Architecture: "arm64",
	}
	path := filepath.Join(t.TempDir(), Filename)
	if err := Write(path, img); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return path, img
}

// Reads the archive and returns its entries by name.
func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	entries := make(map[string][]byte)
	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read archive: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read entry %s: %v", header.Name, err)
		}
		entries[header.Name] = data
	}
	return entries
}

// Follows index.json to the image config inside the archive.
func readConfig(t *testing.T, entries map[string][]byte) imagecfg.Config {
	t.Helper()

	var index ocispec.Index
	if err := json.Unmarshal(entries["index.json"], &index); err != nil {
		t.Fatalf("parse index: %v", err)
	}
	if len(index.Manifests) != 1 {
		t.Fatalf("index has %d manifests, want 1", len(index.Manifests))
	}

	var manifest ocispec.Manifest
	manifestBlob := entries["blobs/sha256/"+index.Manifests[0].Digest.Encoded()]
	if err := json.Unmarshal(manifestBlob, &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	var config imagecfg.Config
	configBlob := entries["blobs/sha256/"+manifest.Config.Digest.Encoded()]
	if err := json.Unmarshal(configBlob, &config); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return config
}

func TestWriteConfigContract(t *testing.T) {
	path, img := writeTestImage(t)
	config := readConfig(t, readArchive(t, path))

	found := false
	for _, env := range config.Config.Env {
		if env == "OXKER_RUNTIME=container" {
			found = true
		}
	}
	if !found {
		t.Fatalf("runtime marker missing from config env %v", config.Config.Env)
	}

	want := []string{"/app/" + img.Name}
	if len(config.Config.Entrypoint) != 1 || config.Config.Entrypoint[0] != want[0] {
		t.Fatalf("entrypoint = %v, want %v", config.Config.Entrypoint, want)
	}
	if len(config.Config.Cmd) != 0 {
		t.Fatalf("cmd = %v, want empty (no shell indirection)", config.Config.Cmd)
	}
	if config.Architecture != "arm64" || config.OS != "linux" {
		t.Fatalf("platform = %s/%s, want linux/arm64", config.OS, config.Architecture)
	}
	if len(config.RootFS.DiffIDs) != 1 {
		t.Fatalf("rootfs has %d layers, want 1 (empty base)", len(config.RootFS.DiffIDs))
	}
}

func TestWriteLayerContainsOnlyBinary(t *testing.T) {
	path, img := writeTestImage(t)
	entries := readArchive(t, path)

	var index ocispec.Index
	if err := json.Unmarshal(entries["index.json"], &index); err != nil {
		t.Fatalf("parse index: %v", err)
	}
	var manifest ocispec.Manifest
	if err := json.Unmarshal(entries["blobs/sha256/"+index.Manifests[0].Digest.Encoded()], &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(manifest.Layers) != 1 {
		t.Fatalf("manifest has %d layers, want 1", len(manifest.Layers))
	}

	zr, err := gzip.NewReader(bytes.NewReader(entries["blobs/sha256/"+manifest.Layers[0].Digest.Encoded()]))
	if err != nil {
		t.Fatalf("decompress layer: %v", err)
	}

	var files, dirs []string
	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read layer: %v", err)
		}
		switch header.Typeflag {
		case tar.TypeDir:
			dirs = append(dirs, header.Name)
		case tar.TypeReg:
			files = append(files, header.Name)
			if header.Mode&0111 == 0 {
				t.Fatalf("%s is not executable (mode %o)", header.Name, header.Mode)
			}
			content, err := io.ReadAll(tr)
			if err != nil {
				t.Fatalf("read binary: %v", err)
			}
			if !bytes.Equal(content, img.Binary) {
				t.Fatal("packaged binary differs from input")
			}
		default:
			t.Fatalf("unexpected entry type %c for %s", header.Typeflag, header.Name)
		}
	}

	if len(files) != 1 || files[0] != "app/"+img.Name {
		t.Fatalf("layer files = %v, want exactly app/%s", files, img.Name)
	}
	if len(dirs) != 1 || dirs[0] != "app/" {
		t.Fatalf("layer dirs = %v, want exactly app/", dirs)
	}
}

func TestWriteDeterministic(t *testing.T) {
	img := Image{
		Binary:       []byte("same bytes"),
		Name:         "oxker",
		Architecture: "amd64",
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "a.tar")
	second := filepath.Join(dir, "b.tar")
	if err := Write(first, img); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(second, img); err != nil {
		t.Fatalf("Write: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different archives")
	}
}

func TestWriteValidation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		img  Image
	}{
		{name: "empty binary", img: Image{Name: "oxker", Architecture: "amd64"}},
		{name: "missing name", img: Image{Binary: []byte("x"), Architecture: "amd64"}},
		{name: "missing architecture", img: Image{Binary: []byte("x"), Name: "oxker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "out.tar")
			if err := Write(path, tt.img); !errors.Is(err, ErrAssemble) {
				t.Fatalf("error = %v, want ErrAssemble", err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatal("failed assembly left an output file behind")
			}
		})
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	path, _ := writeTestImage(t)

	names, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range names {
		if strings.HasPrefix(entry.Name(), ".assemble-") {
			t.Fatalf("staging file %s left behind", entry.Name())
		}
	}
}
