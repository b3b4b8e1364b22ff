package emoji

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
)

// COLR/CPAL table errors.
var (
	// ErrInvalidCOLRData indicates the COLR table is malformed.
	ErrInvalidCOLRData = errors.New("emoji: invalid COLR table data")

	// ErrInvalidCPALData indicates the CPAL table is malformed.
	ErrInvalidCPALData = errors.New("emoji: invalid CPAL table data")

	// ErrGlyphNotInCOLR indicates the glyph is not a color glyph.
	ErrGlyphNotInCOLR = errors.New("emoji: glyph not found in COLR table")

	// ErrUnsupportedCOLRVersion indicates an unsupported COLR version.
	ErrUnsupportedCOLRVersion = errors.New("emoji: unsupported COLR version")
)

// Color is an RGBA color resolved from a CPAL palette.
type Color struct {
	R, G, B, A uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 257, uint32(c.G) * 257, uint32(c.B) * 257, uint32(c.A) * 257
}

// ToRGBA returns the color as color.RGBA.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ColorLayer is one layer of a layered color glyph: an ordinary glyph
// outline drawn in a palette color.
type ColorLayer struct {
	// GlyphID is the outline glyph to draw for this layer.
	GlyphID uint16

	// PaletteIndex indexes CPAL. 0xFFFF means the text foreground.
	PaletteIndex uint16

	// Color is the resolved palette color. Undefined for foreground
	// layers.
	Color Color
}

// IsForeground reports whether the layer takes the text color.
func (l ColorLayer) IsForeground() bool {
	return l.PaletteIndex == 0xFFFF
}

// COLRGlyph is a color glyph: layers stacked bottom to top.
type COLRGlyph struct {
	GlyphID uint16
	Layers  []ColorLayer
	Version uint16
}

// COLRParser indexes the COLRv0 base glyph and layer records together
// with the CPAL palettes they reference.
type COLRParser struct {
	version    uint16
	baseGlyphs []baseGlyphRecord
	layers     []layerRecord
	palettes   [][]Color
}

type baseGlyphRecord struct {
	glyphID    uint16
	firstLayer uint16
	numLayers  uint16
}

type layerRecord struct {
	glyphID      uint16
	paletteIndex uint16
}

// NewCOLRParser parses raw COLR and CPAL tables.
func NewCOLRParser(colrData, cpalData []byte) (*COLRParser, error) {
	if len(colrData) == 0 || len(cpalData) == 0 {
		return nil, ErrNoTable
	}

	p := &COLRParser{}
	if err := p.parseCOLR(colrData); err != nil {
		return nil, err
	}
	if err := p.parseCPAL(cpalData); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *COLRParser) parseCOLR(data []byte) error {
	if len(data) < 14 {
		return ErrInvalidCOLRData
	}

	p.version = binary.BigEndian.Uint16(data[0:2])
	// v1 fonts keep the v0 records for backward compatibility; the
	// paint graph extensions are ignored.
	if p.version > 1 {
		return ErrUnsupportedCOLRVersion
	}

	numBase := binary.BigEndian.Uint16(data[2:4])
	baseOffset := binary.BigEndian.Uint32(data[4:8])
	layerOffset := binary.BigEndian.Uint32(data[8:12])
	numLayers := binary.BigEndian.Uint16(data[12:14])

	if int(baseOffset)+int(numBase)*6 > len(data) {
		return ErrInvalidCOLRData
	}
	p.baseGlyphs = make([]baseGlyphRecord, numBase)
	for i := range p.baseGlyphs {
		rec := data[int(baseOffset)+i*6:]
		p.baseGlyphs[i] = baseGlyphRecord{
			glyphID:    binary.BigEndian.Uint16(rec[0:2]),
			firstLayer: binary.BigEndian.Uint16(rec[2:4]),
			numLayers:  binary.BigEndian.Uint16(rec[4:6]),
		}
	}

	if int(layerOffset)+int(numLayers)*4 > len(data) {
		return ErrInvalidCOLRData
	}
	p.layers = make([]layerRecord, numLayers)
	for i := range p.layers {
		rec := data[int(layerOffset)+i*4:]
		p.layers[i] = layerRecord{
			glyphID:      binary.BigEndian.Uint16(rec[0:2]),
			paletteIndex: binary.BigEndian.Uint16(rec[2:4]),
		}
	}
	return nil
}

func (p *COLRParser) parseCPAL(data []byte) error {
	if len(data) < 12 {
		return ErrInvalidCPALData
	}

	numEntries := binary.BigEndian.Uint16(data[2:4])
	numPalettes := binary.BigEndian.Uint16(data[4:6])
	colorRecordsOffset := binary.BigEndian.Uint32(data[8:12])

	if 12+int(numPalettes)*2 > len(data) {
		return ErrInvalidCPALData
	}

	p.palettes = make([][]Color, numPalettes)
	for i := uint16(0); i < numPalettes; i++ {
		first := binary.BigEndian.Uint16(data[12+int(i)*2 : 14+int(i)*2])
		palette := make([]Color, numEntries)
		for j := uint16(0); j < numEntries; j++ {
			pos := int(colorRecordsOffset) + int(first+j)*4
			if pos+4 > len(data) {
				return ErrInvalidCPALData
			}
			// Color records are BGRA.
			palette[j] = Color{
				B: data[pos],
				G: data[pos+1],
				R: data[pos+2],
				A: data[pos+3],
			}
		}
		p.palettes[i] = palette
	}
	return nil
}

// HasGlyph reports whether the glyph has a layered color form.
func (p *COLRParser) HasGlyph(glyphID uint16) bool {
	_, found := p.findBaseGlyph(glyphID)
	return found
}

// GetGlyph returns the layer stack for a color glyph with palette
// colors resolved from the given palette.
func (p *COLRParser) GetGlyph(glyphID uint16, paletteIndex int) (*COLRGlyph, error) {
	record, found := p.findBaseGlyph(glyphID)
	if !found {
		return nil, ErrGlyphNotInCOLR
	}

	glyph := &COLRGlyph{
		GlyphID: glyphID,
		Layers:  make([]ColorLayer, record.numLayers),
		Version: p.version,
	}
	for i := uint16(0); i < record.numLayers; i++ {
		idx := int(record.firstLayer) + int(i)
		if idx >= len(p.layers) {
			return nil, ErrInvalidCOLRData
		}
		layer := p.layers[idx]
		glyph.Layers[i] = ColorLayer{
			GlyphID:      layer.glyphID,
			PaletteIndex: layer.paletteIndex,
		}
		if layer.paletteIndex != 0xFFFF &&
			paletteIndex >= 0 && paletteIndex < len(p.palettes) &&
			int(layer.paletteIndex) < len(p.palettes[paletteIndex]) {
			glyph.Layers[i].Color = p.palettes[paletteIndex][layer.paletteIndex]
		}
	}
	return glyph, nil
}

// NumPalettes returns the number of CPAL palettes.
func (p *COLRParser) NumPalettes() int {
	return len(p.palettes)
}

// findBaseGlyph binary-searches the sorted base glyph records.
func (p *COLRParser) findBaseGlyph(glyphID uint16) (baseGlyphRecord, bool) {
	lo, hi := 0, len(p.baseGlyphs)
	for lo < hi {
		mid := (lo + hi) / 2
		if p.baseGlyphs[mid].glyphID < glyphID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(p.baseGlyphs) && p.baseGlyphs[lo].glyphID == glyphID {
		return p.baseGlyphs[lo], true
	}
	return baseGlyphRecord{}, false
}

// Composite renders a layer stack into a premultiplied RGBA image.
// renderLayer rasterizes one outline glyph into an alpha mask at the
// output size; layers whose mask comes back nil are skipped.
// Foreground layers use the given text color.
func Composite(
	glyph *COLRGlyph,
	renderLayer func(glyphID uint16) *image.Alpha,
	width, height int,
	foreground color.RGBA,
) *image.RGBA {
	if glyph == nil || len(glyph.Layers) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, layer := range glyph.Layers {
		mask := renderLayer(layer.GlyphID)
		if mask == nil {
			continue
		}
		var layerColor color.RGBA
		if layer.IsForeground() {
			layerColor = foreground
		} else {
			layerColor = layer.Color.ToRGBA()
		}
		src := image.NewUniform(layerColor)
		draw.DrawMask(result, result.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
	}
	return result
}
