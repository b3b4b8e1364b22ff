package text

import (
	"bytes"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func glyphID(t *testing.T, f *Font, r rune) uint32 {
	t.Helper()
	var buf sfnt.Buffer
	gid, ok := f.GlyphIndex(&buf, r)
	if !ok {
		t.Fatalf("font has no glyph for %q", r)
	}
	return gid
}

func opaqueCount(pix []byte) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestRasterizer_OutlineGlyph(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, 'A')

	const w, h = 12, 24
	pix, isColor := rz.Glyph(f, gid, h, w, h, false, false)
	if len(pix) != w*h*4 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), w*h*4)
	}
	if isColor {
		t.Error("outline glyph reported as color")
	}
	if opaqueCount(pix) == 0 {
		t.Fatal("glyph 'A' rendered fully transparent")
	}

	// Monochrome output is binary white-on-transparent premultiplied.
	for i := 0; i < len(pix); i += 4 {
		a := pix[i+3]
		if a != 0 && a != 255 {
			t.Fatalf("pixel %d: alpha %d, want 0 or 255", i/4, a)
		}
		if pix[i] != a || pix[i+1] != a || pix[i+2] != a {
			t.Fatalf("pixel %d: %v, want white premultiplied", i/4, pix[i:i+4])
		}
	}
}

func TestRasterizer_Deterministic(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, 'g')

	a, _ := rz.Glyph(f, gid, 20, 10, 20, false, false)
	b, _ := rz.Glyph(f, gid, 20, 10, 20, false, false)
	if !bytes.Equal(a, b) {
		t.Error("two renders of the same glyph differ")
	}
}

func TestRasterizer_FakeBoldAddsCoverage(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, 'l')

	const w, h = 12, 24
	plain, _ := rz.Glyph(f, gid, h, w, h, false, false)
	bold, _ := rz.Glyph(f, gid, h, w, h, true, false)

	if opaqueCount(bold) <= opaqueCount(plain) {
		t.Errorf("bold coverage %d not above plain coverage %d",
			opaqueCount(bold), opaqueCount(plain))
	}
}

func TestRasterizer_FakeItalicChangesShape(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, 'H')

	const w, h = 14, 28
	plain, _ := rz.Glyph(f, gid, h, w, h, false, false)
	italic, _ := rz.Glyph(f, gid, h, w, h, false, true)

	if bytes.Equal(plain, italic) {
		t.Error("fake italic output identical to plain output")
	}
	if opaqueCount(italic) == 0 {
		t.Error("fake italic rendered fully transparent")
	}
}

func TestRasterizer_SpaceIsTransparent(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, ' ')

	pix, isColor := rz.Glyph(f, gid, 24, 12, 24, false, false)
	if isColor {
		t.Error("space reported as color")
	}
	if len(pix) != 12*24*4 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), 12*24*4)
	}
	if opaqueCount(pix) != 0 {
		t.Error("space glyph should be fully transparent")
	}
}

func TestRasterizer_InvalidArgs(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)

	if pix, _ := rz.Glyph(nil, 1, 24, 12, 24, false, false); pix != nil {
		t.Error("nil font should render nil")
	}
	if pix, _ := rz.Glyph(f, 1, 24, 0, 24, false, false); pix != nil {
		t.Error("zero width should render nil")
	}
}

func TestRasterizer_WideSlot(t *testing.T) {
	rz := NewRasterizer()
	f := mustFont(t, goregular.TTF)
	gid := glyphID(t, f, 'W')

	// Double-width slot, as used for wide characters.
	pix, _ := rz.Glyph(f, gid, 24, 24, 24, false, false)
	if len(pix) != 24*24*4 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), 24*24*4)
	}
	if opaqueCount(pix) == 0 {
		t.Error("glyph in wide slot rendered fully transparent")
	}
}
