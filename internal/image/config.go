package image

import (
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Container health probe configuration, as understood by Docker-compatible
// runtimes.
//
// The OCI image spec does not define a health check; runtimes that honor
// one read it from the image config under Docker's field names. All fields
// are serialized with Docker's capitalization so exported images probe
// correctly under `docker run`.
type Healthcheck struct {
	Test        []string      `json:"Test,omitempty"`        // Probe command, e.g. ["CMD-SHELL", "..."].
	Interval    time.Duration `json:"Interval,omitempty"`    // Time between probes.
	Timeout     time.Duration `json:"Timeout,omitempty"`     // Per-probe deadline.
	StartPeriod time.Duration `json:"StartPeriod,omitempty"` // Grace period before failures count.
	Retries     int           `json:"Retries,omitempty"`     // Consecutive failures before unhealthy.
}

// Runtime configuration carried inside an image config document.
//
// Mirrors the OCI execution parameters and adds Docker's Healthcheck
// extension, which [ocispec.ImageConfig] cannot express.
type ConfigBody struct {
	User         string              `json:"User,omitempty"`
	ExposedPorts map[string]struct{} `json:"ExposedPorts,omitempty"`
	Env          []string            `json:"Env,omitempty"`
	Entrypoint   []string            `json:"Entrypoint,omitempty"`
	Cmd          []string            `json:"Cmd,omitempty"`
	Volumes      map[string]struct{} `json:"Volumes,omitempty"`
	WorkingDir   string              `json:"WorkingDir,omitempty"`
	Labels       map[string]string   `json:"Labels,omitempty"`
	StopSignal   string              `json:"StopSignal,omitempty"`
	Healthcheck  *Healthcheck        `json:"Healthcheck,omitempty"`
}

// Layer content addresses of an unpacked image.
type RootFS struct {
	Type    string          `json:"type"`
	DiffIDs []digest.Digest `json:"diff_ids"`
}

// An OCI image config document with Docker's health check extension.
//
// Used wherever the pipeline reads or writes image configs: the runtime
// assembler builds one from scratch, and the fixture export path round
// trips a base image's config through it to attach a health check.
type Config struct {
	Created      *time.Time        `json:"created,omitempty"`
	Author       string            `json:"author,omitempty"`
	Architecture string            `json:"architecture"`
	Variant      string            `json:"variant,omitempty"`
	OS           string            `json:"os"`
	Config       ConfigBody        `json:"config,omitempty"`
	RootFS       RootFS            `json:"rootfs"`
	History      []ocispec.History `json:"history,omitempty"`
}
