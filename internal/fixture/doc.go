// Package fixture builds a container image that always reports
// unhealthy.
//
// The image carries a marker file, a health probe that fails whenever
// the marker exists, and an entry point script that re-creates the
// marker and then loops forever writing a diagnostic line to stderr.
// It is intended for exercising orchestrator behaviour around failing
// health checks, never for production workloads.
package fixture
