package emoji

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNoStrike indicates no bitmap strike is available.
var ErrNoStrike = errors.New("emoji: no bitmap strike available")

// ErrUnsupportedIndexFormat indicates an unsupported index subtable.
var ErrUnsupportedIndexFormat = errors.New("emoji: unsupported index subtable format")

// Index subtable formats shared by CBLC and EBLC.
const (
	indexFormat1 = 1 // variable metrics, 32-bit offsets
	indexFormat2 = 2 // constant metrics, no offset array
	indexFormat3 = 3 // variable metrics, 16-bit offsets
	indexFormat4 = 4 // variable metrics, sparse glyph ids
	indexFormat5 = 5 // constant metrics, sparse glyph ids
)

// Image data formats in the data table.
const (
	imageFormat1  = 1  // small metrics, byte-aligned rows
	imageFormat2  = 2  // small metrics, bit-aligned
	imageFormat5  = 5  // metrics in location table, bit-aligned
	imageFormat6  = 6  // big metrics, byte-aligned rows
	imageFormat7  = 7  // big metrics, bit-aligned
	imageFormat17 = 17 // small metrics + PNG
	imageFormat18 = 18 // big metrics + PNG
	imageFormat19 = 19 // metrics in location table, PNG
)

// BitmapExtractor reads glyph bitmaps indexed by a CBLC or EBLC
// location table out of the matching CBDT or EBDT data table. The
// color pair stores PNG at 32-bit depth; the grayscale pair stores
// 1/2/4/8-bit coverage expanded later through lookup tables.
type BitmapExtractor struct {
	dataTable []byte // CBDT or EBDT
	locTable  []byte // CBLC or EBLC

	strikes []bitmapStrike
}

// bitmapStrike is one BitmapSize record from the location table.
type bitmapStrike struct {
	subtableListOffset uint32
	numSubtables       uint32

	startGlyph uint16
	endGlyph   uint16
	ppem       uint8
	bitDepth   uint8

	subtables []indexSubtable // parsed lazily
}

// indexSubtable locates a contiguous glyph range in the data table.
type indexSubtable struct {
	firstGlyph  uint16
	lastGlyph   uint16
	indexFormat uint16
	imageFormat uint16
	dataOffset  uint32

	offsets32  []uint32         // format 1
	offsets16  []uint16         // format 3
	imageSize  uint32           // formats 2, 5
	bigMetrics *bigGlyphMetrics // formats 2, 5
	pairs      []glyphOffsetPair // format 4
	glyphIDs   []uint16         // format 5
}

type glyphOffsetPair struct {
	glyphID uint16
	offset  uint16
}

// smallGlyphMetrics is the 5-byte metrics header of formats 1, 2, 17.
type smallGlyphMetrics struct {
	height   uint8
	width    uint8
	bearingX int8
	bearingY int8
	advance  uint8
}

// bigGlyphMetrics is the 8-byte dual-layout header of formats 6, 7, 18.
type bigGlyphMetrics struct {
	height       uint8
	width        uint8
	horiBearingX int8
	horiBearingY int8
	horiAdvance  uint8
	vertBearingX int8
	vertBearingY int8
	vertAdvance  uint8
}

// NewBitmapExtractor parses a location table (CBLC major version 3 or
// EBLC major version 2) over its data table.
func NewBitmapExtractor(dataTable, locTable []byte) (*BitmapExtractor, error) {
	if len(dataTable) == 0 || len(locTable) == 0 {
		return nil, ErrNoTable
	}
	if len(locTable) < 8 {
		return nil, ErrInvalidData
	}

	major := binary.BigEndian.Uint16(locTable[0:2])
	if major != 2 && major != 3 {
		return nil, fmt.Errorf("emoji: unsupported bitmap location table version %d", major)
	}

	e := &BitmapExtractor{dataTable: dataTable, locTable: locTable}

	numSizes := binary.BigEndian.Uint32(locTable[4:8])
	const recordSize = 48
	if 8+int(numSizes)*recordSize > len(locTable) {
		return nil, ErrInvalidData
	}

	e.strikes = make([]bitmapStrike, numSizes)
	for i := uint32(0); i < numSizes; i++ {
		rec := locTable[8+int(i)*recordSize:]
		s := &e.strikes[i]
		s.subtableListOffset = binary.BigEndian.Uint32(rec[0:4])
		s.numSubtables = binary.BigEndian.Uint32(rec[8:12])
		s.startGlyph = binary.BigEndian.Uint16(rec[40:42])
		s.endGlyph = binary.BigEndian.Uint16(rec[42:44])
		s.ppem = rec[45] // ppemY
		s.bitDepth = rec[46]
	}
	return e, nil
}

// NumStrikes returns the number of bitmap sizes.
func (e *BitmapExtractor) NumStrikes() int { return len(e.strikes) }

// HasGlyph reports whether any strike carries data for the glyph.
func (e *BitmapExtractor) HasGlyph(glyphID uint16) bool {
	for i := range e.strikes {
		s := &e.strikes[i]
		if glyphID < s.startGlyph || glyphID > s.endGlyph {
			continue
		}
		if e.parseSubtables(s) != nil {
			continue
		}
		for j := range s.subtables {
			if glyphID >= s.subtables[j].firstGlyph && glyphID <= s.subtables[j].lastGlyph {
				return true
			}
		}
	}
	return false
}

// Glyph extracts the bitmap for a glyph from the smallest strike at
// least as large as ppem, falling back to the largest available.
func (e *BitmapExtractor) Glyph(glyphID, ppem uint16) (*BitmapGlyph, error) {
	idx := e.selectStrike(ppem)
	if idx < 0 {
		return nil, ErrNoStrike
	}

	s := &e.strikes[idx]
	if glyphID < s.startGlyph || glyphID > s.endGlyph {
		return nil, ErrGlyphNotInBitmap
	}
	if err := e.parseSubtables(s); err != nil {
		return nil, err
	}
	for i := range s.subtables {
		ist := &s.subtables[i]
		if glyphID >= ist.firstGlyph && glyphID <= ist.lastGlyph {
			return e.extract(glyphID, ist, s)
		}
	}
	return nil, ErrGlyphNotInBitmap
}

// selectStrike picks the smallest strike >= ppem, or the largest.
func (e *BitmapExtractor) selectStrike(ppem uint16) int {
	if len(e.strikes) == 0 {
		return -1
	}
	want := uint8(255)
	if ppem < 255 {
		want = uint8(ppem)
	}

	larger, largerPPEM := -1, uint8(255)
	largest, largestPPEM := 0, e.strikes[0].ppem
	for i := range e.strikes {
		p := e.strikes[i].ppem
		if p > largestPPEM {
			largest, largestPPEM = i, p
		}
		if p >= want && p <= largerPPEM {
			larger, largerPPEM = i, p
		}
	}
	if larger >= 0 {
		return larger
	}
	return largest
}

// parseSubtables lazily parses a strike's index subtable list.
func (e *BitmapExtractor) parseSubtables(s *bitmapStrike) error {
	if s.subtables != nil {
		return nil
	}
	data := e.locTable
	list := int(s.subtableListOffset)
	if list+int(s.numSubtables)*8 > len(data) {
		return ErrInvalidData
	}

	s.subtables = make([]indexSubtable, s.numSubtables)
	for i := uint32(0); i < s.numSubtables; i++ {
		rec := list + int(i)*8
		ist := &s.subtables[i]
		ist.firstGlyph = binary.BigEndian.Uint16(data[rec : rec+2])
		ist.lastGlyph = binary.BigEndian.Uint16(data[rec+2 : rec+4])
		additional := binary.BigEndian.Uint32(data[rec+4 : rec+8])
		if err := e.parseSubtable(list+int(additional), ist); err != nil {
			return err
		}
	}
	return nil
}

// parseSubtable parses one index subtable body.
func (e *BitmapExtractor) parseSubtable(offset int, ist *indexSubtable) error {
	data := e.locTable
	if offset+8 > len(data) {
		return ErrInvalidData
	}
	ist.indexFormat = binary.BigEndian.Uint16(data[offset : offset+2])
	ist.imageFormat = binary.BigEndian.Uint16(data[offset+2 : offset+4])
	ist.dataOffset = binary.BigEndian.Uint32(data[offset+4 : offset+8])

	body := offset + 8
	numGlyphs := int(ist.lastGlyph) - int(ist.firstGlyph) + 1

	switch ist.indexFormat {
	case indexFormat1:
		n := numGlyphs + 1
		if body+n*4 > len(data) {
			return ErrInvalidData
		}
		ist.offsets32 = make([]uint32, n)
		for i := 0; i < n; i++ {
			ist.offsets32[i] = binary.BigEndian.Uint32(data[body+i*4 : body+i*4+4])
		}

	case indexFormat2:
		if body+12 > len(data) {
			return ErrInvalidData
		}
		ist.imageSize = binary.BigEndian.Uint32(data[body : body+4])
		ist.bigMetrics = parseBigMetrics(data[body+4 : body+12])

	case indexFormat3:
		n := numGlyphs + 1
		if body+n*2 > len(data) {
			return ErrInvalidData
		}
		ist.offsets16 = make([]uint16, n)
		for i := 0; i < n; i++ {
			ist.offsets16[i] = binary.BigEndian.Uint16(data[body+i*2 : body+i*2+2])
		}

	case indexFormat4:
		if body+4 > len(data) {
			return ErrInvalidData
		}
		n := int(binary.BigEndian.Uint32(data[body:body+4])) + 1
		if body+4+n*4 > len(data) {
			return ErrInvalidData
		}
		ist.pairs = make([]glyphOffsetPair, n)
		for i := 0; i < n; i++ {
			pos := body + 4 + i*4
			ist.pairs[i].glyphID = binary.BigEndian.Uint16(data[pos : pos+2])
			ist.pairs[i].offset = binary.BigEndian.Uint16(data[pos+2 : pos+4])
		}

	case indexFormat5:
		if body+16 > len(data) {
			return ErrInvalidData
		}
		ist.imageSize = binary.BigEndian.Uint32(data[body : body+4])
		ist.bigMetrics = parseBigMetrics(data[body+4 : body+12])
		n := int(binary.BigEndian.Uint32(data[body+12 : body+16]))
		if body+16+n*2 > len(data) {
			return ErrInvalidData
		}
		ist.glyphIDs = make([]uint16, n)
		for i := 0; i < n; i++ {
			ist.glyphIDs[i] = binary.BigEndian.Uint16(data[body+16+i*2 : body+16+i*2+2])
		}

	default:
		return ErrUnsupportedIndexFormat
	}
	return nil
}

// locate returns the offset, size and shared metrics for a glyph.
func (ist *indexSubtable) locate(glyphID uint16) (offset, size uint32, metrics *bigGlyphMetrics, err error) {
	idx := int(glyphID) - int(ist.firstGlyph)

	switch ist.indexFormat {
	case indexFormat1:
		if idx < 0 || idx+1 >= len(ist.offsets32) {
			return 0, 0, nil, ErrGlyphNotInBitmap
		}
		return ist.dataOffset + ist.offsets32[idx], ist.offsets32[idx+1] - ist.offsets32[idx], nil, nil

	case indexFormat2:
		if idx < 0 || idx > int(ist.lastGlyph)-int(ist.firstGlyph) {
			return 0, 0, nil, ErrGlyphNotInBitmap
		}
		return ist.dataOffset + uint32(idx)*ist.imageSize, ist.imageSize, ist.bigMetrics, nil

	case indexFormat3:
		if idx < 0 || idx+1 >= len(ist.offsets16) {
			return 0, 0, nil, ErrGlyphNotInBitmap
		}
		return ist.dataOffset + uint32(ist.offsets16[idx]),
			uint32(ist.offsets16[idx+1] - ist.offsets16[idx]), nil, nil

	case indexFormat4:
		for i := 0; i+1 < len(ist.pairs); i++ {
			if ist.pairs[i].glyphID == glyphID {
				return ist.dataOffset + uint32(ist.pairs[i].offset),
					uint32(ist.pairs[i+1].offset - ist.pairs[i].offset), nil, nil
			}
		}
		return 0, 0, nil, ErrGlyphNotInBitmap

	case indexFormat5:
		for i, gid := range ist.glyphIDs {
			if gid == glyphID {
				return ist.dataOffset + uint32(i)*ist.imageSize, ist.imageSize, ist.bigMetrics, nil
			}
		}
		return 0, 0, nil, ErrGlyphNotInBitmap
	}
	return 0, 0, nil, ErrUnsupportedIndexFormat
}

// extract reads and wraps the image data for one glyph.
func (e *BitmapExtractor) extract(glyphID uint16, ist *indexSubtable, s *bitmapStrike) (*BitmapGlyph, error) {
	offset, size, shared, err := ist.locate(glyphID)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, ErrGlyphNotInBitmap
	}
	if int(offset)+int(size) > len(e.dataTable) {
		return nil, ErrInvalidData
	}
	img := e.dataTable[offset : offset+size]

	glyph := &BitmapGlyph{GlyphID: glyphID, PPEM: uint16(s.ppem)}

	switch ist.imageFormat {
	case imageFormat17:
		if len(img) < 9 {
			return nil, ErrInvalidData
		}
		sm := parseSmallMetrics(img[0:5])
		n := binary.BigEndian.Uint32(img[5:9])
		if 9+int(n) > len(img) {
			return nil, ErrInvalidData
		}
		glyph.Width, glyph.Height = int(sm.width), int(sm.height)
		glyph.OriginX, glyph.OriginY = float32(sm.bearingX), float32(sm.bearingY)
		glyph.Data = img[9 : 9+n]
		glyph.Format = FormatPNG

	case imageFormat18:
		if len(img) < 12 {
			return nil, ErrInvalidData
		}
		bm := parseBigMetrics(img[0:8])
		n := binary.BigEndian.Uint32(img[8:12])
		if 12+int(n) > len(img) {
			return nil, ErrInvalidData
		}
		glyph.Width, glyph.Height = int(bm.width), int(bm.height)
		glyph.OriginX, glyph.OriginY = float32(bm.horiBearingX), float32(bm.horiBearingY)
		glyph.Data = img[12 : 12+n]
		glyph.Format = FormatPNG

	case imageFormat19:
		if len(img) < 4 {
			return nil, ErrInvalidData
		}
		n := binary.BigEndian.Uint32(img[0:4])
		if 4+int(n) > len(img) {
			return nil, ErrInvalidData
		}
		if shared != nil {
			glyph.Width, glyph.Height = int(shared.width), int(shared.height)
			glyph.OriginX, glyph.OriginY = float32(shared.horiBearingX), float32(shared.horiBearingY)
		}
		glyph.Data = img[4 : 4+n]
		glyph.Format = FormatPNG

	case imageFormat1, imageFormat2:
		if len(img) < 5 {
			return nil, ErrInvalidData
		}
		sm := parseSmallMetrics(img[0:5])
		glyph.Width, glyph.Height = int(sm.width), int(sm.height)
		glyph.OriginX, glyph.OriginY = float32(sm.bearingX), float32(sm.bearingY)
		glyph.Data = img[5:]
		glyph.Format = FormatGray
		glyph.BitDepth = s.bitDepth
		glyph.Packed = ist.imageFormat == imageFormat2

	case imageFormat6, imageFormat7:
		if len(img) < 8 {
			return nil, ErrInvalidData
		}
		bm := parseBigMetrics(img[0:8])
		glyph.Width, glyph.Height = int(bm.width), int(bm.height)
		glyph.OriginX, glyph.OriginY = float32(bm.horiBearingX), float32(bm.horiBearingY)
		glyph.Data = img[8:]
		glyph.Format = FormatGray
		glyph.BitDepth = s.bitDepth
		glyph.Packed = ist.imageFormat == imageFormat7

	case imageFormat5:
		if shared == nil {
			return nil, ErrInvalidData
		}
		glyph.Width, glyph.Height = int(shared.width), int(shared.height)
		glyph.OriginX, glyph.OriginY = float32(shared.horiBearingX), float32(shared.horiBearingY)
		glyph.Data = img
		glyph.Format = FormatGray
		glyph.BitDepth = s.bitDepth
		glyph.Packed = true

	default:
		return nil, ErrUnsupportedFormat
	}

	// Raw BGRA strikes carry bitDepth 32 with no compression tag.
	if glyph.Format == FormatGray && s.bitDepth == 32 {
		glyph.Format = FormatBGRA
	}
	return glyph, nil
}

func parseSmallMetrics(b []byte) smallGlyphMetrics {
	return smallGlyphMetrics{
		height:   b[0],
		width:    b[1],
		bearingX: int8(b[2]),
		bearingY: int8(b[3]),
		advance:  b[4],
	}
}

func parseBigMetrics(b []byte) *bigGlyphMetrics {
	return &bigGlyphMetrics{
		height:       b[0],
		width:        b[1],
		horiBearingX: int8(b[2]),
		horiBearingY: int8(b[3]),
		horiAdvance:  b[4],
		vertBearingX: int8(b[5]),
		vertBearingY: int8(b[6]),
		vertAdvance:  b[7],
	}
}
