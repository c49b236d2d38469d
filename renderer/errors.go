package renderer

import "errors"

var (
	ErrSceneNotDefined     = errors.New("renderer: no scene field defined")
	ErrSchedulerNotDefined = errors.New("renderer: no block scheduler defined")
	ErrInvalidFrameDims    = errors.New("renderer: frame dimensions must be positive")
)
