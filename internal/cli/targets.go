package cli

import (
	"context"
	"fmt"
	"os"
	goruntime "runtime"
	"text/tabwriter"

	"github.com/crateforge/crateforge/internal/target"
)

// Represents the 'crateforge targets' command.
type TargetsCmd struct{}

// Executes the targets command.
//
// Prints one row per supported architecture with its toolchain triple
// and, for cross builds from this host, the linker it would use.
func (c *TargetsCmd) Run(ctx context.Context) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ARCH\tTRIPLE\tLINKER")

	for _, arch := range target.Supported() {
		tc, err := target.Resolve(target.Platform{Arch: arch, HostArch: goruntime.GOARCH})
		if err != nil {
			return err
		}

		linker := "(native)"
		if tc.Cross() {
			linker = tc.Linker
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", arch, tc.Triple, linker)
	}

	return w.Flush()
}
