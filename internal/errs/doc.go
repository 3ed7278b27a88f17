// Package errs provides sentinel error wrapping helpers.
//
// Packages declare their failure taxonomy as sentinel errors and wrap
// underlying causes beneath them, so callers can classify failures with
// errors.Is while the full diagnostic chain is preserved verbatim in the
// message.
package errs
