package errs

import "fmt"

// Wraps a cause under a sentinel error.
//
// Both errors remain visible to [errors.Is] and [errors.As].
func Wrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Wraps a formatted message under a sentinel error.
//
// The format string may itself carry a %w verb to chain a cause.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %w", sentinel, fmt.Errorf(format, args...))
}
