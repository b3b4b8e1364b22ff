package termgpu

// Color is a compact cell color. The zero value is ColorReset, which
// resolves to the configured reset foreground or background at flush
// time. Concrete colors are built with RGB.
type Color uint32

// ColorReset resolves to Config.ResetFG or Config.ResetBG depending on
// which side of the cell it colors.
const ColorReset Color = 0

const colorSetBit = 1 << 24

// RGB returns a concrete color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color(colorSetBit | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// IsReset reports whether the color defers to the reset pair.
func (c Color) IsReset() bool { return c&colorSetBit == 0 }

// RGB returns the color channels. Reset colors return black; callers
// resolve against the reset pair first.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// resolve substitutes the reset color when c is ColorReset.
func (c Color) resolve(reset Color) Color {
	if c.IsReset() {
		return reset
	}
	return c
}

// packed returns the color as the little-endian RGBA word the vertex
// formats carry: r | g<<8 | b<<16 | 0xFF<<24.
func (c Color) packed() uint32 {
	r, g, b := c.RGB()
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | 0xFF<<24
}

// Modifier is a bit set of cell text attributes.
type Modifier uint16

const (
	ModBold Modifier = 1 << iota
	ModDim
	ModItalic
	ModUnderlined
	ModBlink
	ModReversed
	ModHidden
	ModCrossedOut
)

// Has reports whether all bits of m are set.
func (mod Modifier) Has(m Modifier) bool { return mod&m == m }

// Cell is one grid position: a grapheme cluster plus its attributes.
// An empty Symbol renders as a blank cell. Wide clusters occupy this
// cell and the one to its right; the continuation cell is managed by
// the backend and must not be written by the host.
type Cell struct {
	Symbol string
	FG     Color
	BG     Color
	Mod    Modifier
}

// blank reports whether the cell draws no glyph.
func (c Cell) blank() bool {
	return c.Symbol == "" || c.Symbol == " "
}

// CellUpdate addresses one cell write in a Draw batch.
type CellUpdate struct {
	Col, Row int
	Cell     Cell
}

// CellPos addresses a grid cell.
type CellPos struct {
	Col, Row int
}
