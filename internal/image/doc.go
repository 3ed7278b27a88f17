// Package image holds image config types shared by the export paths.
//
// The types extend the OCI image config with Docker's Healthcheck field,
// which the fixture image depends on and the OCI spec does not model.
package image
