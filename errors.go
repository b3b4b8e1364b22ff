package termgpu

import "errors"

var (
	// ErrOutOfBounds reports a cell update addressed outside the grid.
	ErrOutOfBounds = errors.New("termgpu: cell position out of bounds")

	// ErrNilRenderer reports a Render call without a renderer.
	ErrNilRenderer = errors.New("termgpu: nil renderer")

	// ErrNilCollection reports backend construction without fonts.
	ErrNilCollection = errors.New("termgpu: nil font collection")
)

// ConfigError reports an invalid Config field at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "termgpu: config " + e.Field + ": " + e.Reason
}
