package build

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrToolchainSetup      = errors.New("toolchain setup failed")
	ErrDependencyBuild     = errors.New("dependency build failed")
	ErrCompile             = errors.New("compilation failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
