package text

import "errors"

// Sentinel errors for the text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNoFonts is returned when a collection is built without a
	// last-resort font.
	ErrNoFonts = errors.New("text: collection needs a last-resort font")
)

// FontError describes a font that could not be parsed or queried.
type FontError struct {
	Reason string
}

func (e *FontError) Error() string {
	return "text: " + e.Reason
}
