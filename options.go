package termgpu

import (
	"fmt"

	"github.com/gogpu/termgpu/atlas"
)

// Config configures a Backend.
type Config struct {
	// Columns and Rows are the grid dimensions in cells.
	Columns int
	Rows    int

	// FontHeightPx is the cell height in pixels. Cell width is derived
	// from the font collection's advance metrics.
	FontHeightPx int

	// ResetFG and ResetBG are the colors that ColorReset resolves to.
	// Zero values default to white on black.
	ResetFG Color
	ResetBG Color

	// Atlas configures the glyph cache texture. The zero value is
	// replaced with atlas.DefaultConfig.
	Atlas atlas.Config
}

// DefaultConfig returns an 80x24 grid at a 24 px cell height with white
// text on a black background.
func DefaultConfig() Config {
	return Config{
		Columns:      80,
		Rows:         24,
		FontHeightPx: 24,
		ResetFG:      RGB(255, 255, 255),
		ResetBG:      RGB(0, 0, 0),
		Atlas:        atlas.DefaultConfig(),
	}
}

// Validate checks the configuration for construction-time errors.
// Dimensions are never clamped; a zero or negative size is an error.
func (c Config) Validate() error {
	if c.Columns <= 0 {
		return &ConfigError{Field: "Columns", Reason: fmt.Sprintf("must be positive, got %d", c.Columns)}
	}
	if c.Rows <= 0 {
		return &ConfigError{Field: "Rows", Reason: fmt.Sprintf("must be positive, got %d", c.Rows)}
	}
	if c.FontHeightPx <= 0 {
		return &ConfigError{Field: "FontHeightPx", Reason: fmt.Sprintf("must be positive, got %d", c.FontHeightPx)}
	}
	if err := c.Atlas.Validate(); err != nil {
		return err
	}
	return nil
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.ResetFG == ColorReset {
		c.ResetFG = RGB(255, 255, 255)
	}
	if c.ResetBG == ColorReset {
		c.ResetBG = RGB(0, 0, 0)
	}
	if c.Atlas == (atlas.Config{}) {
		c.Atlas = atlas.DefaultConfig()
	}
	return c
}
