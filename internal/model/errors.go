package model

import (
	"fmt"

	"discflight/internal/services"
)

// LoadError reports a missing or corrupt local artifact.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the model-unavailable marker and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{services.ErrModelUnavailable, e.Err}
}
