package emoji

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestColor_RGBA(t *testing.T) {
	c := Color{R: 255, G: 128, B: 64, A: 255}
	r, g, b, a := c.RGBA()

	// color.Color.RGBA returns 16-bit values.
	if r != 65535 {
		t.Errorf("R = %d, want 65535", r)
	}
	if g != 32896 {
		t.Errorf("G = %d, want 32896", g)
	}
	if b != 16448 {
		t.Errorf("B = %d, want 16448", b)
	}
	if a != 65535 {
		t.Errorf("A = %d, want 65535", a)
	}
}

func TestColorLayer_IsForeground(t *testing.T) {
	tests := []struct {
		name         string
		paletteIndex uint16
		want         bool
	}{
		{"foreground", 0xFFFF, true},
		{"palette 0", 0, false},
		{"palette 10", 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := ColorLayer{PaletteIndex: tt.paletteIndex}
			if got := layer.IsForeground(); got != tt.want {
				t.Errorf("IsForeground() = %v, want %v", got, tt.want)
			}
		})
	}
}

// buildTestCOLR builds a COLRv0 table with one base glyph (id 7) made
// of two layers: glyph 8 in palette entry 0 and glyph 9 in the text
// foreground.
func buildTestCOLR() []byte {
	colr := make([]byte, 28)
	// version 0, 1 base glyph, base records at 14, layer records at 20,
	// 2 layer records
	colr[3] = 1
	colr[7] = 14
	colr[11] = 20
	colr[13] = 2
	// base glyph: glyphID 7, firstLayer 0, numLayers 2
	colr[15] = 7
	colr[19] = 2
	// layer 0: glyph 8, palette 0; layer 1: glyph 9, foreground
	colr[21] = 8
	colr[25] = 9
	colr[26] = 0xFF
	colr[27] = 0xFF
	return colr
}

// buildTestCPAL builds a CPAL with one palette of one BGRA entry.
func buildTestCPAL() []byte {
	cpal := make([]byte, 18)
	cpal[3] = 1  // numEntries
	cpal[5] = 1  // numPalettes
	cpal[7] = 1  // numColorRecords
	cpal[11] = 14 // colorRecordsOffset
	// paletteOffsets[0] = 0 at bytes 12..14
	// color record BGRA
	cpal[14] = 10  // B
	cpal[15] = 20  // G
	cpal[16] = 30  // R
	cpal[17] = 255 // A
	return cpal
}

func TestNewCOLRParser_Errors(t *testing.T) {
	if _, err := NewCOLRParser(nil, buildTestCPAL()); !errors.Is(err, ErrNoTable) {
		t.Errorf("missing COLR: err = %v, want ErrNoTable", err)
	}
	if _, err := NewCOLRParser(buildTestCOLR(), nil); !errors.Is(err, ErrNoTable) {
		t.Errorf("missing CPAL: err = %v, want ErrNoTable", err)
	}
	if _, err := NewCOLRParser([]byte{0, 2, 0, 0}, buildTestCPAL()); !errors.Is(err, ErrInvalidCOLRData) {
		t.Errorf("short COLR: err = %v, want ErrInvalidCOLRData", err)
	}

	bad := buildTestCOLR()
	bad[1] = 2 // version 2
	if _, err := NewCOLRParser(bad, buildTestCPAL()); !errors.Is(err, ErrUnsupportedCOLRVersion) {
		t.Errorf("version 2: err = %v, want ErrUnsupportedCOLRVersion", err)
	}
}

func TestCOLRParser_GetGlyph(t *testing.T) {
	p, err := NewCOLRParser(buildTestCOLR(), buildTestCPAL())
	if err != nil {
		t.Fatalf("NewCOLRParser: %v", err)
	}

	if !p.HasGlyph(7) {
		t.Error("HasGlyph(7) = false, want true")
	}
	if p.HasGlyph(8) {
		t.Error("HasGlyph(8) = true, want false")
	}
	if p.NumPalettes() != 1 {
		t.Errorf("NumPalettes() = %d, want 1", p.NumPalettes())
	}

	glyph, err := p.GetGlyph(7, 0)
	if err != nil {
		t.Fatalf("GetGlyph(7): %v", err)
	}
	if len(glyph.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(glyph.Layers))
	}
	if glyph.Layers[0].GlyphID != 8 {
		t.Errorf("layer 0 glyph = %d, want 8", glyph.Layers[0].GlyphID)
	}
	want := Color{R: 30, G: 20, B: 10, A: 255}
	if glyph.Layers[0].Color != want {
		t.Errorf("layer 0 color = %+v, want %+v", glyph.Layers[0].Color, want)
	}
	if !glyph.Layers[1].IsForeground() {
		t.Error("layer 1 should be foreground")
	}

	if _, err := p.GetGlyph(100, 0); !errors.Is(err, ErrGlyphNotInCOLR) {
		t.Errorf("GetGlyph(100): err = %v, want ErrGlyphNotInCOLR", err)
	}
}

func TestComposite(t *testing.T) {
	glyph := &COLRGlyph{
		GlyphID: 7,
		Layers: []ColorLayer{
			{GlyphID: 8, PaletteIndex: 0, Color: Color{R: 200, G: 0, B: 0, A: 255}},
			{GlyphID: 9, PaletteIndex: 0xFFFF},
		},
	}

	fullMask := image.NewAlpha(image.Rect(0, 0, 4, 4))
	for i := range fullMask.Pix {
		fullMask.Pix[i] = 255
	}

	// Layer 9 covers everything; it draws last and wins.
	img := Composite(glyph, func(glyphID uint16) *image.Alpha {
		if glyphID == 9 {
			return fullMask
		}
		return nil
	}, 4, 4, color.RGBA{R: 0, G: 0, B: 250, A: 255})

	if img == nil {
		t.Fatal("Composite returned nil")
	}
	got := img.RGBAAt(1, 1)
	if got.B != 250 || got.A != 255 {
		t.Errorf("pixel = %+v, want foreground blue", got)
	}
}

func TestComposite_Nil(t *testing.T) {
	if img := Composite(nil, nil, 4, 4, color.RGBA{}); img != nil {
		t.Error("Composite(nil) should return nil")
	}
	empty := &COLRGlyph{GlyphID: 1}
	if img := Composite(empty, nil, 4, 4, color.RGBA{}); img != nil {
		t.Error("Composite with no layers should return nil")
	}
}
