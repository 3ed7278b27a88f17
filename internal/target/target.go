package target

import (
	"fmt"
	goruntime "runtime"
	"strings"

	"github.com/crateforge/crateforge/internal/errs"
)

// Rustflags applied to every toolchain so the produced binary carries its
// own libc. The runtime image has no dynamic loader; a dynamically linked
// artifact would not start.
const staticRustflags = "-C target-feature=+crt-static"

// A build platform: the architecture the artifact is built for and the
// architecture of the machine running the build.
type Platform struct {
	Arch     string // Requested architecture (e.g., "arm64").
	HostArch string // Architecture of the build host (e.g., "amd64").
}

// Toolchain configuration for one target architecture.
//
// Resolved once per pipeline run and consumed read-only by the cache and
// artifact stages.
type Toolchain struct {
	Arch        string // Architecture this toolchain targets.
	Triple      string // Rust target triple (e.g., "aarch64-unknown-linux-musl").
	Linker      string // Cross linker binary, empty for a native build.
	LinkerEnv   string // Cargo env var naming the linker for the triple.
	Rustflags   string // Compiler flags, always forcing static linking.
	HostPackage string // Toolchain package to install on the build host, empty for native.
}

// Lookup table from architecture to toolchain. Each supported architecture
// maps to exactly one entry; the linker and host package only apply when
// the requested architecture differs from the host.
var toolchains = map[string]Toolchain{
	"amd64": {
		Arch:        "amd64",
		Triple:      "x86_64-unknown-linux-musl",
		Linker:      "x86_64-linux-gnu-gcc",
		LinkerEnv:   "CARGO_TARGET_X86_64_UNKNOWN_LINUX_MUSL_LINKER",
		Rustflags:   staticRustflags,
		HostPackage: "gcc-x86-64-linux-gnu",
	},
	"arm64": {
		Arch:        "arm64",
		Triple:      "aarch64-unknown-linux-musl",
		Linker:      "aarch64-linux-gnu-gcc",
		LinkerEnv:   "CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER",
		Rustflags:   staticRustflags,
		HostPackage: "gcc-aarch64-linux-gnu",
	},
	"arm": {
		Arch:        "arm",
		Triple:      "arm-unknown-linux-musleabihf",
		Linker:      "arm-linux-gnueabihf-gcc",
		LinkerEnv:   "CARGO_TARGET_ARM_UNKNOWN_LINUX_MUSLEABIHF_LINKER",
		Rustflags:   staticRustflags,
		HostPackage: "gcc-arm-linux-gnueabihf",
	},
}

// The table is load-bearing for every later stage; an incomplete entry
// would surface as a confusing compile failure deep inside a container.
// Validate it exhaustively up front instead.
func init() {
	for arch, tc := range toolchains {
		if tc.Triple == "" || tc.LinkerEnv == "" {
			panic(fmt.Sprintf("incomplete toolchain entry for %q", arch))
		}
		if !strings.Contains(tc.Rustflags, "crt-static") {
			panic(fmt.Sprintf("toolchain for %q does not force static linking", arch))
		}
	}
}

// Resolves a platform to its toolchain.
//
// Returns [ErrUnsupportedArch] when the requested architecture is not in
// the table. Resolution never touches a compiler or container; an
// unsupported architecture fails before any build work starts.
func Resolve(p Platform) (Toolchain, error) {
	tc, ok := toolchains[p.Arch]
	if !ok {
		return Toolchain{}, errs.Wrapf(ErrUnsupportedArch, "%q (supported: %s)", p.Arch, strings.Join(Supported(), ", "))
	}

	// A native build uses the builder image's own toolchain; no cross
	// linker or host package needs to be installed.
	if p.Arch == p.HostArch {
		tc.Linker = ""
		tc.HostPackage = ""
	}

	return tc, nil
}

// Returns true when the toolchain requires a cross linker on the build host.
func (tc Toolchain) Cross() bool {
	return tc.HostPackage != ""
}

// Returns the environment entries the cache and artifact stages export to
// cargo: the static-link rustflags and, for cross builds, the linker for
// the target triple.
func (tc Toolchain) Environ() []string {
	env := []string{"RUSTFLAGS=" + tc.Rustflags}
	if tc.Linker != "" {
		env = append(env, tc.LinkerEnv+"="+tc.Linker)
	}
	return env
}

// Returns the supported architectures in stable order.
func Supported() []string {
	return []string{"amd64", "arm", "arm64"}
}

// Parses an OCI-style platform string ("linux/arm64" or bare "arm64") into
// a [Platform] against the current build host.
func Parse(platform string) (Platform, error) {
	arch := platform
	if os, rest, ok := strings.Cut(platform, "/"); ok {
		if os != "linux" {
			return Platform{}, errs.Wrapf(ErrUnsupportedArch, "OS %q (only linux images are produced)", os)
		}
		arch = rest
	}

	// Variants ("arm/v6") collapse to the base architecture; all supported
	// arm variants share one musl triple.
	if base, _, ok := strings.Cut(arch, "/"); ok {
		arch = base
	}

	if arch == "" {
		return Platform{}, errs.Wrapf(ErrUnsupportedArch, "empty platform %q", platform)
	}

	return Platform{Arch: arch, HostArch: goruntime.GOARCH}, nil
}
