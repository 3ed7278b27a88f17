package manifest

import "errors"

var (
	ErrManifest = errors.New("manifest error")
)
