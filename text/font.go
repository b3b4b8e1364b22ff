package text

import (
	"bytes"
	"sync/atomic"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/termgpu/atlas"
	"github.com/gogpu/termgpu/text/emoji"
)

// fontIDs assigns stable identifiers to loaded fonts. ID 0 is reserved
// for programmatically rendered glyphs.
var fontIDs atomic.Uint32

// Font is a parsed font usable for shaping and rasterization. The same
// data is parsed twice: go-text/typesetting drives HarfBuzz shaping,
// x/image/sfnt provides outline segments and advances. Color and
// embedded-bitmap tables are indexed from the raw bytes.
//
// Font is immutable after construction except for the sfnt buffer,
// which callers must not share across goroutines.
type Font struct {
	id   atlas.FontID
	data []byte

	shaped *font.Font // thread-safe parsed font for shaping
	sf     *sfnt.Font

	upem      int
	ascender  int // hhea, font units
	descender int // hhea, negative
	underline int // post underlineThickness, font units
	advance   int // 'm' advance, font units

	bold      bool
	italic    bool
	monospace bool

	colr *emoji.COLRParser
	sbix *emoji.SBIXParser
	cbdt *emoji.BitmapExtractor // CBDT/CBLC or EBDT/EBLC
}

// NewFont parses font data. The bytes are retained and must not be
// modified afterwards.
func NewFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	gtFace, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &FontError{Reason: "parse for shaping: " + err.Error()}
	}
	sfFont, err := sfnt.Parse(data)
	if err != nil {
		return nil, &FontError{Reason: "parse for rasterization: " + err.Error()}
	}
	tables, err := parseTables(data)
	if err != nil {
		return nil, err
	}

	f := &Font{
		id:     atlas.FontID(fontIDs.Add(1)),
		data:   data,
		shaped: gtFace.Font,
		sf:     sfFont,
	}
	f.readMetrics(tables)
	f.readColorTables(tables)
	return f, nil
}

// readMetrics pulls the scalar metrics the rasterizer needs from the
// head, hhea, post and hmtx-adjacent tables.
func (f *Font) readMetrics(tables *fontTables) {
	head := tables.table("head")
	f.upem = int(u16(head, 18))
	if f.upem == 0 {
		f.upem = 1000
	}
	macStyle := u16(head, 44)
	f.bold = macStyle&0x01 != 0
	f.italic = macStyle&0x02 != 0

	hhea := tables.table("hhea")
	f.ascender = int(i16(hhea, 4))
	f.descender = int(i16(hhea, 6))
	if f.ascender == 0 && f.descender == 0 {
		f.ascender = f.upem
	}

	post := tables.table("post")
	f.underline = int(i16(post, 10))
	if len(post) >= 16 {
		f.monospace = u16(post, 12) != 0 || u16(post, 14) != 0
	}

	var buf sfnt.Buffer
	if gid, err := f.sf.GlyphIndex(&buf, 'm'); err == nil && gid != 0 {
		// Advance at ppem == upem equals the advance in font units.
		adv, err := f.sf.GlyphAdvance(&buf, gid, fixed.I(f.upem), 0)
		if err == nil {
			f.advance = adv.Round()
		}
	}
	if f.advance == 0 {
		f.advance = f.upem / 2
	}
}

// readColorTables indexes COLR/CPAL and embedded bitmap tables when
// present. A malformed table disables that path instead of failing the
// whole font.
func (f *Font) readColorTables(tables *fontTables) {
	if colr, cpal := tables.table("COLR"), tables.table("CPAL"); colr != nil && cpal != nil {
		if p, err := emoji.NewCOLRParser(colr, cpal); err == nil {
			f.colr = p
		}
	}
	if sbix := tables.table("sbix"); sbix != nil {
		numGlyphs := u16(tables.table("maxp"), 4)
		if p, err := emoji.NewSBIXParser(sbix, numGlyphs); err == nil {
			f.sbix = p
		}
	}
	if cbdt, cblc := tables.table("CBDT"), tables.table("CBLC"); cbdt != nil && cblc != nil {
		if p, err := emoji.NewBitmapExtractor(cbdt, cblc); err == nil {
			f.cbdt = p
		}
	} else if ebdt, eblc := tables.table("EBDT"), tables.table("EBLC"); ebdt != nil && eblc != nil {
		if p, err := emoji.NewBitmapExtractor(ebdt, eblc); err == nil {
			f.cbdt = p
		}
	}
}

// colorBitmap returns the embedded color bitmap closest to ppem, or
// nil when the font carries none for the glyph. sbix strikes win over
// CBDT; grayscale strikes are not returned here.
func (f *Font) colorBitmap(gid uint32, ppem uint16) *emoji.BitmapGlyph {
	if gid > 0xFFFF {
		return nil
	}
	if f.sbix != nil {
		if g, err := f.sbix.Glyph(uint16(gid), ppem); err == nil {
			return g
		}
	}
	if f.cbdt != nil {
		if g, err := f.cbdt.Glyph(uint16(gid), ppem); err == nil && g.IsColor() {
			return g
		}
	}
	return nil
}

// ID returns the stable identifier used in atlas cache keys.
func (f *Font) ID() atlas.FontID { return f.id }

// IsBold reports whether the font carries a bold style.
func (f *Font) IsBold() bool { return f.bold }

// IsItalic reports whether the font carries an italic style.
func (f *Font) IsItalic() bool { return f.italic }

// Monospaced reports whether the font declares fixed pitch.
func (f *Font) Monospaced() bool { return f.monospace }

// ShapingFont returns the thread-safe parsed font for the shaper.
func (f *Font) ShapingFont() *font.Font { return f.shaped }

// GlyphIndex returns the glyph for a rune, or false if the font has no
// mapping for it.
func (f *Font) GlyphIndex(buf *sfnt.Buffer, r rune) (uint32, bool) {
	gid, err := f.sf.GlyphIndex(buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return uint32(gid), true
}

// HasGlyph reports whether the font maps the rune to a real glyph.
func (f *Font) HasGlyph(r rune) bool {
	var buf sfnt.Buffer
	_, ok := f.GlyphIndex(&buf, r)
	return ok
}

// scale converts font units to pixels for a cell of the given height.
// The height maps to the hhea ascender-to-descender span.
func (f *Font) scale(heightPx int) float64 {
	span := f.ascender - f.descender
	if span <= 0 {
		span = f.upem
	}
	return float64(heightPx) / float64(span)
}

// CharWidth returns the advance of 'm' in pixels at the given cell
// height. Cell geometry for a collection derives from this.
func (f *Font) CharWidth(heightPx int) int {
	w := int(float64(f.advance) * f.scale(heightPx))
	if w < 1 {
		w = 1
	}
	return w
}

// UnderlineMetrics returns the underline stroke's top offset from the
// cell top and its thickness, both in pixels, for a cell of the given
// height. The stroke sits just below the baseline and is clamped to
// stay inside the cell.
func (f *Font) UnderlineMetrics(heightPx int) (pos, thickness int) {
	thickness = int(f.underlinePx(heightPx) + 0.5)
	if thickness < 1 {
		thickness = 1
	}
	baseline := int(float64(f.ascender)*f.scale(heightPx) + 0.5)
	pos = baseline + 1
	if pos+thickness > heightPx {
		pos = heightPx - thickness
	}
	if pos < 0 {
		pos = 0
	}
	return pos, thickness
}

// underlinePx returns the underline thickness in pixels, falling back
// to em/32 when the post table does not provide one. Fake bold offsets
// derive from this.
func (f *Font) underlinePx(heightPx int) float64 {
	units := f.underline
	if units <= 0 {
		units = f.upem / 32
	}
	t := float64(units) * f.scale(heightPx)
	if t < 1 {
		t = 1
	}
	return t
}
