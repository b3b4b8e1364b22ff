package emoji

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
)

// Bitmap table errors.
var (
	// ErrNoTable indicates a required bitmap table is missing or empty.
	ErrNoTable = errors.New("emoji: bitmap table missing")

	// ErrInvalidData indicates a bitmap table is malformed.
	ErrInvalidData = errors.New("emoji: invalid bitmap table data")

	// ErrGlyphNotInBitmap indicates the glyph has no bitmap data.
	ErrGlyphNotInBitmap = errors.New("emoji: glyph not found in bitmap table")

	// ErrUnsupportedFormat indicates an unsupported bitmap encoding.
	ErrUnsupportedFormat = errors.New("emoji: unsupported bitmap format")
)

// BitmapFormat indicates how BitmapGlyph.Data is encoded.
type BitmapFormat int

const (
	// FormatPNG is PNG-compressed color data.
	FormatPNG BitmapFormat = iota

	// FormatBGRA is raw premultiplied BGRA32.
	FormatBGRA

	// FormatGray is raw 1/2/4/8-bit grayscale coverage. BitDepth and
	// Packed describe the layout.
	FormatGray
)

// BitmapGlyph is an embedded bitmap extracted from sbix or CBDT/EBDT.
type BitmapGlyph struct {
	// GlyphID is the glyph this bitmap represents.
	GlyphID uint16

	// Data is the encoded pixel data; Format says how to read it.
	Data []byte

	// Format is the encoding of Data.
	Format BitmapFormat

	// BitDepth is the bits per sample for FormatGray data.
	BitDepth uint8

	// Packed reports whether FormatGray rows are bit-aligned rather
	// than starting on byte boundaries.
	Packed bool

	// Width and Height are the bitmap dimensions in pixels. Zero for
	// PNG data whose header was not decoded.
	Width, Height int

	// OriginX and OriginY offset the bitmap from the glyph origin.
	OriginX, OriginY float32

	// PPEM is the design size of the strike this bitmap came from.
	PPEM uint16
}

// IsColor reports whether the bitmap carries color rather than
// coverage-only data.
func (b *BitmapGlyph) IsColor() bool {
	return b.Format == FormatPNG || b.Format == FormatBGRA
}

// Decode converts the bitmap to an image. Grayscale data becomes an
// opaque-white image with the coverage in alpha, ready for tinting.
func (b *BitmapGlyph) Decode() (image.Image, error) {
	switch b.Format {
	case FormatPNG:
		return png.Decode(bytes.NewReader(b.Data))

	case FormatBGRA:
		if b.Width <= 0 || b.Height <= 0 || len(b.Data) < b.Width*b.Height*4 {
			return nil, ErrInvalidData
		}
		img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
		for i := 0; i < b.Width*b.Height; i++ {
			// Premultiplied BGRA in, premultiplied RGBA out.
			img.Pix[i*4+0] = b.Data[i*4+2]
			img.Pix[i*4+1] = b.Data[i*4+1]
			img.Pix[i*4+2] = b.Data[i*4+0]
			img.Pix[i*4+3] = b.Data[i*4+3]
		}
		return img, nil

	case FormatGray:
		alpha := ExpandGray(b.Data, int(b.BitDepth), b.Width, b.Height, b.Packed)
		if alpha == nil {
			return nil, ErrInvalidData
		}
		img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		for i, a := range alpha {
			img.SetNRGBA(i%b.Width, i/b.Width, color.NRGBA{R: 255, G: 255, B: 255, A: a})
		}
		return img, nil

	default:
		return nil, ErrUnsupportedFormat
	}
}

// SBIXParser reads the sbix table, Apple's embedded bitmap format.
type SBIXParser struct {
	data      []byte
	numGlyphs uint16
	strikes   []sbixStrike
}

// sbixStrike is one bitmap size in sbix.
type sbixStrike struct {
	ppem    uint16
	offset  uint32
	offsets []uint32 // per-glyph data offsets, numGlyphs+1 entries
}

// NewSBIXParser parses the sbix table. numGlyphs comes from maxp.
func NewSBIXParser(data []byte, numGlyphs uint16) (*SBIXParser, error) {
	if len(data) == 0 {
		return nil, ErrNoTable
	}
	if len(data) < 8 || binary.BigEndian.Uint16(data[0:2]) != 1 {
		return nil, ErrInvalidData
	}

	p := &SBIXParser{data: data, numGlyphs: numGlyphs}
	// Bound-check in int so a huge strike count cannot wrap the
	// uint32 arithmetic and pass.
	numStrikes := binary.BigEndian.Uint32(data[4:8])
	if 8+int(numStrikes)*4 > len(data) {
		return nil, ErrInvalidData
	}

	p.strikes = make([]sbixStrike, numStrikes)
	for i := uint32(0); i < numStrikes; i++ {
		offset := binary.BigEndian.Uint32(data[8+i*4 : 12+i*4])
		if err := p.parseStrike(&p.strikes[i], offset); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *SBIXParser) parseStrike(strike *sbixStrike, offset uint32) error {
	data := p.data
	if int(offset)+4 > len(data) {
		return ErrInvalidData
	}
	strike.offset = offset
	strike.ppem = binary.BigEndian.Uint16(data[offset : offset+2])

	numOffsets := int(p.numGlyphs) + 1
	start := int(offset) + 4
	if start+numOffsets*4 > len(data) {
		return ErrInvalidData
	}
	strike.offsets = make([]uint32, numOffsets)
	for i := 0; i < numOffsets; i++ {
		strike.offsets[i] = binary.BigEndian.Uint32(data[start+i*4 : start+i*4+4])
	}
	return nil
}

// HasGlyph reports whether any strike carries data for the glyph.
func (p *SBIXParser) HasGlyph(glyphID uint16) bool {
	if glyphID >= p.numGlyphs {
		return false
	}
	for i := range p.strikes {
		if p.strikes[i].offsets[glyphID+1] > p.strikes[i].offsets[glyphID] {
			return true
		}
	}
	return false
}

// Glyph extracts the bitmap for a glyph from the strike closest to the
// requested ppem, preferring the larger one on a tie.
func (p *SBIXParser) Glyph(glyphID, ppem uint16) (*BitmapGlyph, error) {
	if glyphID >= p.numGlyphs || len(p.strikes) == 0 {
		return nil, ErrGlyphNotInBitmap
	}

	best := 0
	bestDiff := absDiff(p.strikes[0].ppem, ppem)
	for i := 1; i < len(p.strikes); i++ {
		diff := absDiff(p.strikes[i].ppem, ppem)
		if diff < bestDiff || (diff == bestDiff && p.strikes[i].ppem > p.strikes[best].ppem) {
			best = i
			bestDiff = diff
		}
	}

	strike := &p.strikes[best]
	start := strike.offsets[glyphID]
	end := strike.offsets[glyphID+1]
	if end <= start {
		return nil, ErrGlyphNotInBitmap
	}

	// Glyph record: originX int16, originY int16, graphicType tag,
	// then the image data.
	rec := strike.offset + start
	if int(rec)+8 > len(p.data) || int(strike.offset+end) > len(p.data) {
		return nil, ErrInvalidData
	}
	originX := int16(binary.BigEndian.Uint16(p.data[rec : rec+2]))
	originY := int16(binary.BigEndian.Uint16(p.data[rec+2 : rec+4]))
	tag := string(p.data[rec+4 : rec+8])
	if tag != "png " {
		return nil, ErrUnsupportedFormat
	}

	glyph := &BitmapGlyph{
		GlyphID: glyphID,
		Data:    p.data[rec+8 : strike.offset+end],
		Format:  FormatPNG,
		OriginX: float32(originX),
		OriginY: float32(originY),
		PPEM:    strike.ppem,
	}
	if cfg, err := png.DecodeConfig(bytes.NewReader(glyph.Data)); err == nil {
		glyph.Width = cfg.Width
		glyph.Height = cfg.Height
	}
	return glyph, nil
}

func absDiff(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}
