package fixture

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"log/slog"
	goruntime "runtime"
	"strconv"
	"time"

	"github.com/crateforge/crateforge/internal/errs"
	"github.com/crateforge/crateforge/internal/image"
	"github.com/crateforge/crateforge/internal/runtime"
)

const (

	// Path of the marker file the health probe checks. It exists from the
	// moment the image is built, so the very first probe already fails.
	MarkerPath = "/tmp/unhealthy"

	// In-image path of the diagnostic loop script.
	ScriptPath = "/usr/local/bin/unhealthy.sh"

	// Seconds between diagnostic lines emitted by the loop script.
	diagnosticPeriod = 5
)

// Health probe parameters consumed by the container platform. Fixed
// declarative values, not computed.
const (
	ProbeInterval = 5 * time.Second
	ProbeTimeout  = 3 * time.Second
	ProbeRetries  = 3
)

// The probe succeeds only when the marker is absent. The marker is baked
// into the image, so the fixture reports unhealthy from the first probe.
const probeCommand = "[ ! -f " + MarkerPath + " ]"

// Controls fixture image creation.
type Options struct {
	Base     string // Path to a shell-capable base image OCI archive.
	Output   string // Directory for the exported image.
	Resource string // Name prefix for the build container ID.
}

// Returns the diagnostic loop script baked into the fixture image.
//
// The script re-creates the probe marker, then emits one line to stderr
// per period, forever. It never exits on its own; only external teardown
// stops the container.
func Script() string {
	return "#!/bin/sh\n" +
		"touch " + MarkerPath + "\n" +
		"while true; do\n" +
		"\techo \"fixture is running and reporting unhealthy\" >&2\n" +
		"\tsleep " + strconv.Itoa(diagnosticPeriod) + "\n" +
		"done\n"
}

// Returns the health probe configuration attached to the fixture image.
func Probe() *image.Healthcheck {
	return &image.Healthcheck{
		Test:     []string{"CMD-SHELL", probeCommand},
		Interval: ProbeInterval,
		Timeout:  ProbeTimeout,
		Retries:  ProbeRetries,
	}
}

// Builds the always-unhealthy fixture image.
//
// A container is started from the base archive, the loop script and the
// probe marker are written into its filesystem, and the result is
// exported with the script as entry point and the inverted health probe
// attached. The fixture pipeline is independent of the crate build
// pipeline; it shares only the container runtime.
func Build(ctx context.Context, rt Runtime, opts Options) error {
	platform := "linux/" + goruntime.GOARCH

	ctr, err := rt.StartContainer(ctx, opts.Base, opts.Resource+"-fixture", platform)
	if err != nil {
		return errs.Wrap(ErrFixture, err)
	}
	defer ctr.Destroy(ctx)

	if err := installFiles(ctx, ctr); err != nil {
		return errs.Wrap(ErrFixture, err)
	}

	if err := ctr.Stop(ctx); err != nil {
		return errs.Wrap(ErrFixture, err)
	}

	err = ctr.Export(ctx, opts.Output, runtime.ExportSpec{
		Entrypoint:  []string{"/bin/sh", ScriptPath},
		Healthcheck: Probe(),
	})
	if err != nil {
		return errs.Wrap(ErrFixture, err)
	}

	slog.Info("fixture image built", "output", opts.Output)
	return nil
}

// Streams the loop script and the probe marker into the container root.
func installFiles(ctx context.Context, ctr Container) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	entries := []struct {
		name string
		mode int64
		data string
	}{
		{name: "usr/local/bin/unhealthy.sh", mode: 0755, data: Script()},
		{name: "tmp/unhealthy", mode: 0644, data: ""},
	}

	for _, e := range entries {
		header := &tar.Header{
			Name:     e.name,
			Typeflag: tar.TypeReg,
			Mode:     e.mode,
			Size:     int64(len(e.data)),
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if _, err := io.WriteString(tw, e.data); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}

	return ctr.CopyTo(ctx, &buf, "/")
}
