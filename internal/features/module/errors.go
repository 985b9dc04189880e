package module

import "errors"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrMissingTitle   = errors.New("title is required")
	ErrInvalidOrder   = errors.New("module order must list every module id exactly once")
)
