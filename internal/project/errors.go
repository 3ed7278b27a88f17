package project

import "errors"

var (
	// ErrConfig wraps failures reading or parsing the project file.
	ErrConfig = errors.New("project configuration error")
)
