package synth

import (
	"bytes"
	"testing"
)

func TestStrokeWidth(t *testing.T) {
	tests := []struct {
		height int
		want   float64
	}{
		{4, 1},
		{10, 1},
		{16, 2},
		{24, 2},
		{32, 3},
		{80, 8},
	}
	for _, tt := range tests {
		if got := StrokeWidth(tt.height); got != tt.want {
			t.Errorf("StrokeWidth(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestIsProgrammaticCoverage(t *testing.T) {
	count := 0
	for r := rune(0); r <= 0xFFFF; r++ {
		if IsProgrammatic(r) {
			count++
		}
	}
	// 128 box drawing + 32 block elements + 256 braille + 16 powerline.
	if count != 432 {
		t.Errorf("IsProgrammatic covers %d code points, want 432", count)
	}

	for _, r := range []rune{0x24FF, 0x25A0, 0x27FF, 0x2900, 0xE0AF, 0xE0C0, 'A'} {
		if IsProgrammatic(r) {
			t.Errorf("IsProgrammatic(%#x) = true, want false", r)
		}
	}
}

func TestRunesMatchesIsProgrammatic(t *testing.T) {
	runes := Runes()
	if len(runes) != 432 {
		t.Fatalf("Runes() returned %d code points, want 432", len(runes))
	}
	for _, r := range runes {
		if !IsProgrammatic(r) {
			t.Errorf("Runes() contains %#x which IsProgrammatic rejects", r)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	samples := []rune{0x2500, 0x250C, 0x2554, 0x256D, 0x2573, 0x2584, 0x2591, 0x28FF, 0xE0B0, 0xE0B4}
	for _, r := range samples {
		a, ok := Render(r, 11, 23)
		if !ok {
			t.Fatalf("Render(%#x) not implemented", r)
		}
		b, _ := Render(r, 11, 23)
		if !bytes.Equal(a, b) {
			t.Errorf("Render(%#x) is not deterministic", r)
		}
	}
}

func TestRenderRejectsOutOfRange(t *testing.T) {
	if _, ok := Render('A', 10, 20); ok {
		t.Error("Render must reject non-programmatic runes")
	}
	if _, ok := Render(0x2500, 0, 20); ok {
		t.Error("Render must reject zero width")
	}
	if _, ok := Render(0x2500, 10, -1); ok {
		t.Error("Render must reject negative height")
	}
}

// opaqueAt reports whether the pixel at (x, y) has nonzero alpha.
func opaqueAt(pix []byte, w, x, y int) bool {
	return pix[(y*w+x)*4+3] != 0
}

func TestHorizontalLineSpansFullWidth(t *testing.T) {
	const w, h = 12, 24
	pix, ok := Render(0x2500, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	cy := h / 2
	if !opaqueAt(pix, w, 0, cy) || !opaqueAt(pix, w, w-1, cy) {
		t.Error("light horizontal must reach both cell edges")
	}
	if opaqueAt(pix, w, 0, 0) || opaqueAt(pix, w, 0, h-1) {
		t.Error("light horizontal must not touch top or bottom rows")
	}
}

func TestVerticalLineSpansFullHeight(t *testing.T) {
	const w, h = 12, 24
	pix, ok := Render(0x2502, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	cx := w / 2
	if !opaqueAt(pix, w, cx, 0) || !opaqueAt(pix, w, cx, h-1) {
		t.Error("light vertical must reach both cell edges")
	}
}

func TestFullBlockIsFullyOpaque(t *testing.T) {
	const w, h = 9, 19
	pix, ok := Render(0x2588, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !opaqueAt(pix, w, x, y) {
				t.Fatalf("full block has transparent pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestLowerHalfBlock(t *testing.T) {
	const w, h = 10, 20
	pix, ok := Render(0x2584, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	if opaqueAt(pix, w, w/2, 0) {
		t.Error("lower half must leave the top row transparent")
	}
	if !opaqueAt(pix, w, w/2, h-1) {
		t.Error("lower half must fill the bottom row")
	}
}

func TestBrailleBlankIsTransparent(t *testing.T) {
	const w, h = 10, 20
	pix, ok := Render(0x2800, w, h)
	if !ok {
		t.Fatal("blank braille must still be a valid glyph")
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			t.Fatal("blank braille must be fully transparent")
		}
	}
}

func TestBrailleFullPattern(t *testing.T) {
	// 4x8 shrinks the dot radius below one pixel; the pattern must stay
	// decodable regardless.
	sizes := []struct{ w, h int }{{20, 40}, {8, 16}, {4, 8}}
	for _, size := range sizes {
		w, h := size.w, size.h
		pix, ok := Render(0x28FF, w, h)
		if !ok {
			t.Fatalf("Render failed at %dx%d", w, h)
		}

		// Every one of the 8 dot cells must contain at least one opaque pixel.
		for _, dot := range brailleDots {
			found := false
			x0 := dot[0] * w / 2
			y0 := dot[1] * h / 4
			for y := y0; y < y0+h/4 && !found; y++ {
				for x := x0; x < x0+w/2; x++ {
					if opaqueAt(pix, w, x, y) {
						found = true
						break
					}
				}
			}
			if !found {
				t.Errorf("full braille pattern missing dot at cell (%d,%d) at %dx%d", dot[0], dot[1], w, h)
			}
		}
	}
}

func TestPowerlineSolidArrow(t *testing.T) {
	const w, h = 12, 24
	pix, ok := Render(0xE0B0, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	// The left edge is fully covered, the right edge only at the apex.
	for y := 0; y < h; y++ {
		if !opaqueAt(pix, w, 0, y) {
			t.Fatalf("solid right arrow must cover the full left edge, transparent at y=%d", y)
		}
	}
	if opaqueAt(pix, w, w-1, 0) || opaqueAt(pix, w, w-1, h-1) {
		t.Error("solid right arrow must not cover the right corners")
	}
}

func TestAllImplementedRangesRender(t *testing.T) {
	implemented := 0
	for _, r := range Runes() {
		pix, ok := Render(r, 10, 20)
		if !ok {
			continue
		}
		implemented++
		if len(pix) != 10*20*4 {
			t.Fatalf("Render(%#x) returned %d bytes, want %d", r, len(pix), 10*20*4)
		}
	}
	// Block elements, braille and powerline are complete; box drawing
	// covers the common subset.
	if implemented < 32+256+16+40 {
		t.Errorf("only %d glyphs implemented", implemented)
	}
}

func TestWhiteOnTransparent(t *testing.T) {
	const w, h = 10, 20
	pix, ok := Render(0x2502, w, h)
	if !ok {
		t.Fatal("Render failed")
	}
	for i := 0; i < len(pix); i += 4 {
		a := pix[i+3]
		if a != 0 && a != 0xFF {
			t.Fatal("coverage must be binary, no anti-aliasing")
		}
		if a == 0xFF && (pix[i] != 0xFF || pix[i+1] != 0xFF || pix[i+2] != 0xFF) {
			t.Fatal("covered pixels must be white")
		}
		if a == 0 && (pix[i] != 0 || pix[i+1] != 0 || pix[i+2] != 0) {
			t.Fatal("uncovered pixels must be zeroed")
		}
	}
}
