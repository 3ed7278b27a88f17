package target

import (
	"errors"
	goruntime "runtime"
	"strings"
	"testing"
)

func TestResolveSupported(t *testing.T) {
	for _, arch := range Supported() {
		t.Run(arch, func(t *testing.T) {
			tc, err := Resolve(Platform{Arch: arch, HostArch: "amd64"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.Triple == "" {
				t.Fatal("empty target triple")
			}
			if !strings.Contains(tc.Rustflags, "crt-static") {
				t.Fatalf("rustflags %q do not force static linking", tc.Rustflags)
			}
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	for _, arch := range []string{"riscv64", "s390x", "mips", ""} {
		if _, err := Resolve(Platform{Arch: arch, HostArch: "amd64"}); !errors.Is(err, ErrUnsupportedArch) {
			t.Fatalf("Resolve(%q) error = %v, want ErrUnsupportedArch", arch, err)
		}
	}
}

func TestResolveNative(t *testing.T) {
	tc, err := Resolve(Platform{Arch: "amd64", HostArch: "amd64"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Cross() {
		t.Fatal("native build resolved to a cross toolchain")
	}
	if tc.Linker != "" || tc.HostPackage != "" {
		t.Fatalf("native build kept linker %q / package %q", tc.Linker, tc.HostPackage)
	}
	if tc.Triple != "x86_64-unknown-linux-musl" {
		t.Fatalf("triple = %q, want x86_64-unknown-linux-musl", tc.Triple)
	}
}

func TestResolveCross(t *testing.T) {
	tc, err := Resolve(Platform{Arch: "arm64", HostArch: "amd64"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tc.Cross() {
		t.Fatal("cross build resolved to a native toolchain")
	}
	if tc.Triple != "aarch64-unknown-linux-musl" {
		t.Fatalf("triple = %q, want aarch64-unknown-linux-musl", tc.Triple)
	}
	if tc.Linker != "aarch64-linux-gnu-gcc" {
		t.Fatalf("linker = %q, want aarch64-linux-gnu-gcc", tc.Linker)
	}
	if tc.HostPackage != "gcc-aarch64-linux-gnu" {
		t.Fatalf("host package = %q, want gcc-aarch64-linux-gnu", tc.HostPackage)
	}
}

func TestEnviron(t *testing.T) {
	native, err := Resolve(Platform{Arch: "amd64", HostArch: "amd64"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := native.Environ()
	if len(env) != 1 {
		t.Fatalf("native environ = %v, want rustflags only", env)
	}
	if env[0] != "RUSTFLAGS="+staticRustflags {
		t.Fatalf("environ[0] = %q", env[0])
	}

	cross, err := Resolve(Platform{Arch: "arm", HostArch: "amd64"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env = cross.Environ()
	if len(env) != 2 {
		t.Fatalf("cross environ = %v, want rustflags and linker", env)
	}
	want := "CARGO_TARGET_ARM_UNKNOWN_LINUX_MUSLEABIHF_LINKER=arm-linux-gnueabihf-gcc"
	if env[1] != want {
		t.Fatalf("environ[1] = %q, want %q", env[1], want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		arch    string
		wantErr bool
	}{
		{
			name:  "bare architecture",
			input: "arm64",
			arch:  "arm64",
		},
		{
			name:  "oci platform",
			input: "linux/amd64",
			arch:  "amd64",
		},
		{
			name:  "arm variant",
			input: "linux/arm/v6",
			arch:  "arm",
		},
		{
			name:    "non-linux os",
			input:   "windows/amd64",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedArch) {
					t.Fatalf("error = %v, want ErrUnsupportedArch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Arch != tt.arch {
				t.Fatalf("arch = %q, want %q", p.Arch, tt.arch)
			}
			if p.HostArch != goruntime.GOARCH {
				t.Fatalf("host arch = %q, want %q", p.HostArch, goruntime.GOARCH)
			}
		})
	}
}
