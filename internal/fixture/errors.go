package fixture

import "errors"

var (
	// ErrFixture wraps failures while building the fixture image.
	ErrFixture = errors.New("fixture error")
)
