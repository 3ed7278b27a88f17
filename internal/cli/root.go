package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/crateforge/crateforge/internal"
)

// Represents the root command for the crateforge CLI.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Address string     `help:"Override the containerd socket address." placeholder:"PATH"`
	Build   BuildCmd   `cmd:"" help:"Build and package a crate into runtime images."`
	Fixture FixtureCmd `cmd:"" help:"Build the always-unhealthy probe fixture image."`
	Targets TargetsCmd `cmd:"" help:"List supported target architectures."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds static Rust crate binaries into minimal container images."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler).WithGroup(internal.Name))
}

// Default containerd socket address, overridable via --address.
const defaultAddress = "/run/containerd/containerd.sock"

// Containerd namespace scoping this tool's images and containers.
const namespace = "crateforge"

// Returns the containerd socket address to use.
func containerdAddress() string {
	if RootCmd.Address != "" {
		return RootCmd.Address
	}
	return defaultAddress
}
