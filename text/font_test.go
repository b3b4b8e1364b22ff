package text

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestNewFont_Errors(t *testing.T) {
	if _, err := NewFont(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("empty data: err = %v, want ErrEmptyFontData", err)
	}

	_, err := NewFont([]byte("definitely not a font"))
	if err == nil {
		t.Fatal("garbage data should fail")
	}
	var fe *FontError
	if !errors.As(err, &fe) {
		t.Errorf("garbage data: err = %T, want *FontError", err)
	}
}

func TestNewFont_Metrics(t *testing.T) {
	f, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}

	if f.upem <= 0 {
		t.Errorf("upem = %d, want positive", f.upem)
	}
	if f.ascender <= 0 {
		t.Errorf("ascender = %d, want positive", f.ascender)
	}
	if f.descender >= 0 {
		t.Errorf("descender = %d, want negative", f.descender)
	}
	if f.advance <= 0 {
		t.Errorf("advance = %d, want positive", f.advance)
	}
	if f.IsBold() || f.IsItalic() {
		t.Error("Go Regular should declare neither bold nor italic")
	}
	if f.ShapingFont() == nil {
		t.Error("ShapingFont() = nil")
	}
}

func TestNewFont_StyleFlags(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantBold   bool
		wantItalic bool
	}{
		{"regular", goregular.TTF, false, false},
		{"bold", gobold.TTF, true, false},
		{"italic", goitalic.TTF, false, true},
		{"bold italic", gobolditalic.TTF, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFont(tt.data)
			if err != nil {
				t.Fatalf("NewFont: %v", err)
			}
			if f.IsBold() != tt.wantBold {
				t.Errorf("IsBold() = %v, want %v", f.IsBold(), tt.wantBold)
			}
			if f.IsItalic() != tt.wantItalic {
				t.Errorf("IsItalic() = %v, want %v", f.IsItalic(), tt.wantItalic)
			}
		})
	}
}

func TestFont_UniqueIDs(t *testing.T) {
	a, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	b, err := NewFont(gobold.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	if a.ID() == b.ID() {
		t.Errorf("two fonts share ID %d", a.ID())
	}
	if a.ID() == 0 || b.ID() == 0 {
		t.Error("font IDs must not use the reserved builtin ID")
	}
}

func TestFont_GlyphIndex(t *testing.T) {
	f, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}

	var buf sfnt.Buffer
	gid, ok := f.GlyphIndex(&buf, 'A')
	if !ok || gid == 0 {
		t.Errorf("GlyphIndex('A') = %d, %v, want nonzero glyph", gid, ok)
	}

	// U+0378 is unassigned.
	if f.HasGlyph(0x0378) {
		t.Error("HasGlyph(U+0378) = true, want false")
	}
	if !f.HasGlyph('x') {
		t.Error("HasGlyph('x') = false, want true")
	}
}

func TestFont_CharWidth(t *testing.T) {
	f, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}

	w := f.CharWidth(24)
	if w < 1 || w > 24 {
		t.Errorf("CharWidth(24) = %d, want within (0, 24]", w)
	}
	if f.CharWidth(48) <= w {
		t.Error("CharWidth should grow with cell height")
	}
	// Degenerate heights still yield a drawable width.
	if f.CharWidth(1) < 1 {
		t.Error("CharWidth(1) < 1")
	}
}

func TestFont_UnderlinePx(t *testing.T) {
	f, err := NewFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	for _, h := range []int{8, 16, 64} {
		if got := f.underlinePx(h); got < 1 {
			t.Errorf("underlinePx(%d) = %v, want >= 1", h, got)
		}
	}
}
