package atlas

import "fmt"

// ConfigError describes an invalid Config field. Construction fails
// rather than clamping to a degenerate working state.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atlas: invalid config field %s: %s", e.Field, e.Reason)
}

// FullError is returned by Get when a request cannot be satisfied even
// after evicting every entry, typically because the requested slot is
// larger than the atlas itself. Callers recover by rendering the glyph
// with a blank bitmap.
type FullError struct {
	Width, Height           int
	AtlasWidth, AtlasHeight int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("atlas: no space for %dx%d slot in %dx%d atlas",
		e.Width, e.Height, e.AtlasWidth, e.AtlasHeight)
}
