// Package synth renders the Unicode ranges a terminal expects to be
// pixel-perfect regardless of font coverage: box drawing (U+2500–257F),
// block elements (U+2580–259F), braille patterns (U+2800–28FF), and
// powerline separators (U+E0B0–E0BF). Glyphs are drawn procedurally as
// vector shapes at exact cell dimensions, bypassing fonts entirely.
//
// Rendering is deterministic: identical (rune, width, height) inputs
// yield byte-identical RGBA buffers. Output is white-on-transparent so
// the compositor can tint glyphs with the cell's foreground color.
package synth

import "math"

// StrokeWidth returns the line thickness used for box drawing and
// related glyphs at the given cell height: height/10 rounded, with a
// 1 px floor so hairlines stay visible at small sizes.
func StrokeWidth(height int) float64 {
	return math.Round(math.Max(float64(height)/10, 1))
}

// IsProgrammatic reports whether r is rendered procedurally instead of
// being looked up in a font.
func IsProgrammatic(r rune) bool {
	switch {
	case r >= 0x2500 && r <= 0x257F: // box drawing
		return true
	case r >= 0x2580 && r <= 0x259F: // block elements
		return true
	case r >= 0x2800 && r <= 0x28FF: // braille patterns
		return true
	case r >= 0xE0B0 && r <= 0xE0BF: // powerline symbols
		return true
	}
	return false
}

// Render draws r into a width x height RGBA8 buffer. It returns ok ==
// false only for code points inside a covered range whose shape is not
// implemented yet; callers must gate on IsProgrammatic first for
// out-of-range input.
func Render(r rune, width, height int) (pix []byte, ok bool) {
	if width <= 0 || height <= 0 || !IsProgrammatic(r) {
		return nil, false
	}
	c := newCanvas(width, height)
	switch {
	case r >= 0x2500 && r <= 0x257F:
		ok = renderBoxDrawing(c, r)
	case r >= 0x2580 && r <= 0x259F:
		ok = renderBlockElement(c, r)
	case r >= 0x2800 && r <= 0x28FF:
		ok = renderBraille(c, r)
	case r >= 0xE0B0 && r <= 0xE0BF:
		ok = renderPowerline(c, r)
	}
	if !ok {
		return nil, false
	}
	return c.pix, true
}

// Runes returns every code point in the four covered ranges, in order.
// The backend prerenders all of them into the atlas at startup so no
// frame pays a first-use rasterization cost.
func Runes() []rune {
	runes := make([]rune, 0, 128+32+256+16)
	for r := rune(0x2500); r <= 0x257F; r++ {
		runes = append(runes, r)
	}
	for r := rune(0x2580); r <= 0x259F; r++ {
		runes = append(runes, r)
	}
	for r := rune(0x2800); r <= 0x28FF; r++ {
		runes = append(runes, r)
	}
	for r := rune(0xE0B0); r <= 0xE0BF; r++ {
		runes = append(runes, r)
	}
	return runes
}

// Prerender renders every covered code point at the given cell size and
// hands each finished buffer to put. Code points whose shapes are not
// implemented are skipped.
func Prerender(width, height int, put func(r rune, pix []byte, w, h int)) {
	for _, r := range Runes() {
		if pix, ok := Render(r, width, height); ok {
			put(r, pix, width, height)
		}
	}
}
