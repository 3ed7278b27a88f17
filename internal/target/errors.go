package target

import "errors"

var (
	ErrUnsupportedArch = errors.New("unsupported architecture")
)
