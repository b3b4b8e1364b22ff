package text

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/termgpu/text/emoji"
)

// Supersampling factor for outline filling. Outlines are filled with
// binary coverage at twice the slot resolution and resampled down, so
// output stays deterministic across platforms with no antialiasing.
const supersample = 2

// italicSkew is the horizontal shear applied for synthetic italics.
const italicSkew = 0.25

// Rasterizer renders font glyphs into fixed-size cell slots as
// premultiplied RGBA. Glyph sources are tried in priority order:
// layered color glyphs, embedded color bitmaps, scalable outlines,
// and embedded grayscale bitmaps. A glyph with none of these renders
// as a fully transparent slot.
//
// A Rasterizer reuses an internal buffer and must not be shared
// across goroutines.
type Rasterizer struct {
	buf sfnt.Buffer
}

// NewRasterizer creates a rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Glyph renders glyph gid of f into a width x height slot. cellHeight
// is the nominal cell height the font is scaled to; width may span
// several cells for wide glyphs. The returned buffer is width*height*4
// bytes of premultiplied RGBA. isColor reports whether the pixels
// carry their own color; monochrome glyphs are white-on-transparent
// and tinted by the compositor.
//
// fakeBold and fakeItalic synthesize missing styles on the outline
// path. Color and bitmap glyphs ignore them.
func (rz *Rasterizer) Glyph(f *Font, gid uint32, cellHeight, width, height int, fakeBold, fakeItalic bool) (pix []byte, isColor bool) {
	if f == nil || width <= 0 || height <= 0 {
		return nil, false
	}

	if pix := rz.renderCOLR(f, gid, cellHeight, width, height); pix != nil {
		return pix, true
	}
	if pix := rz.renderColorBitmap(f, gid, width, height); pix != nil {
		return pix, true
	}
	if pix := rz.renderOutline(f, gid, cellHeight, width, height, fakeBold, fakeItalic); pix != nil {
		return pix, false
	}
	if pix := rz.renderGrayBitmap(f, gid, width, height); pix != nil {
		return pix, false
	}
	return make([]byte, width*height*4), false
}

// renderCOLR composites a layered color glyph, each layer being an
// ordinary outline filled in its palette color. Foreground layers use
// white so the compositor's tint shows through unchanged.
func (rz *Rasterizer) renderCOLR(f *Font, gid uint32, cellHeight, width, height int) []byte {
	if f.colr == nil || gid > 0xFFFF || !f.colr.HasGlyph(uint16(gid)) {
		return nil
	}
	glyph, err := f.colr.GetGlyph(uint16(gid), 0)
	if err != nil {
		return nil
	}

	img := emoji.Composite(glyph, func(layerGID uint16) *image.Alpha {
		return rz.outlineMask(f, uint32(layerGID), cellHeight, width, height, false, false)
	}, width, height, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if img == nil {
		return nil
	}
	return img.Pix
}

// renderColorBitmap scales an embedded color bitmap (sbix or CBDT)
// into the slot.
func (rz *Rasterizer) renderColorBitmap(f *Font, gid uint32, width, height int) []byte {
	glyph := f.colorBitmap(gid, uint16(height))
	if glyph == nil {
		return nil
	}
	src, err := glyph.Decode()
	if err != nil {
		return nil
	}
	return scaleIntoSlot(src, width, height)
}

// renderGrayBitmap scales an embedded grayscale strike into the slot.
// The decoded image is white with coverage in alpha.
func (rz *Rasterizer) renderGrayBitmap(f *Font, gid uint32, width, height int) []byte {
	if f.cbdt == nil || gid > 0xFFFF {
		return nil
	}
	glyph, err := f.cbdt.Glyph(uint16(gid), uint16(height))
	if err != nil || glyph.IsColor() {
		return nil
	}
	src, err := glyph.Decode()
	if err != nil {
		return nil
	}
	return scaleIntoSlot(src, width, height)
}

// renderOutline fills the glyph outline into the slot. Returns nil
// when the font has no outline for the glyph, so embedded bitmaps get
// their turn.
func (rz *Rasterizer) renderOutline(f *Font, gid uint32, cellHeight, width, height int, fakeBold, fakeItalic bool) []byte {
	mask := rz.outlineMask(f, gid, cellHeight, width, height, fakeBold, fakeItalic)
	if mask == nil {
		return nil
	}
	pix := make([]byte, width*height*4)
	for i, a := range mask.Pix {
		pix[i*4+0] = a
		pix[i*4+1] = a
		pix[i*4+2] = a
		pix[i*4+3] = a
	}
	return pix
}

// outlineMask fills the outline at supersampled resolution and
// resamples down to a width x height alpha mask.
func (rz *Rasterizer) outlineMask(f *Font, gid uint32, cellHeight, width, height int, fakeBold, fakeItalic bool) *image.Alpha {
	scale := f.scale(cellHeight)
	ppem := float64(f.upem) * scale * supersample
	if ppem <= 0 {
		return nil
	}

	segments, err := f.sf.LoadGlyph(&rz.buf, sfnt.GlyphIndex(gid), fixed.Int26_6(ppem*64), nil)
	if err != nil || len(segments) == 0 {
		return nil
	}

	ssW := width * supersample
	ssH := height * supersample
	baseline := float64(f.ascender) * scale * supersample

	edges := flattenSegments(segments, baseline, float64(ssH), fakeItalic)
	if len(edges) == 0 {
		return nil
	}

	// Glyphs whose left bearing reaches past the slot edge are shifted
	// back in, matching how the cell grid crops overhangs.
	minX := math.Inf(1)
	for _, e := range edges {
		minX = math.Min(minX, math.Min(e.x0, e.x1))
	}
	if minX < 0 {
		for i := range edges {
			edges[i].x0 -= minX
			edges[i].x1 -= minX
		}
	}

	ss := image.NewAlpha(image.Rect(0, 0, ssW, ssH))
	fillEdges(ss, edges)

	if fakeBold {
		// Synthetic bold refills the outline at growing horizontal
		// offsets scaled from the font's underline thickness.
		steps := int(f.underlinePx(cellHeight)*supersample + 0.5)
		if steps < 1 {
			steps = 1
		}
		shifted := make([]edge, len(edges))
		for i := 1; i <= steps; i++ {
			dx := 0.5 * float64(i)
			for j, e := range edges {
				shifted[j] = edge{x0: e.x0 + dx, y0: e.y0, x1: e.x1 + dx, y1: e.y1, dir: e.dir}
			}
			fillEdges(ss, shifted)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(mask, mask.Bounds(), ss, ss.Bounds(), xdraw.Src, nil)
	return mask
}

// edge is one flattened outline segment for scanline filling. dir is
// +1 for downward edges and -1 for upward ones.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dir    int
}

// curveSteps is the fixed flattening resolution for bezier segments.
const curveSteps = 16

// flattenSegments converts glyph segments to raster-space edges. Font
// segment coordinates have the baseline at y 0 with negative y above;
// raster y grows downward from the slot top. fakeItalic shears the
// points about the slot's vertical midpoint.
func flattenSegments(segments sfnt.Segments, baseline, ssH float64, fakeItalic bool) []edge {
	transform := func(p fixed.Point26_6) (float64, float64) {
		x := float64(p.X) / 64.0
		y := baseline + float64(p.Y)/64.0
		if fakeItalic {
			x -= italicSkew * (y - ssH/2)
		}
		return x, y
	}

	var edges []edge
	var startX, startY float64
	var curX, curY float64
	started := false

	addEdge := func(x0, y0, x1, y1 float64) {
		if y0 == y1 {
			return
		}
		dir := 1
		if y0 > y1 {
			dir = -1
		}
		edges = append(edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dir: dir})
	}
	closeContour := func() {
		if started && (curX != startX || curY != startY) {
			addEdge(curX, curY, startX, startY)
		}
	}

	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			startX, startY = transform(seg.Args[0])
			curX, curY = startX, startY
			started = true

		case sfnt.SegmentOpLineTo:
			x, y := transform(seg.Args[0])
			addEdge(curX, curY, x, y)
			curX, curY = x, y

		case sfnt.SegmentOpQuadTo:
			cx, cy := transform(seg.Args[0])
			x, y := transform(seg.Args[1])
			px, py := curX, curY
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				qx := u*u*curX + 2*u*t*cx + t*t*x
				qy := u*u*curY + 2*u*t*cy + t*t*y
				addEdge(px, py, qx, qy)
				px, py = qx, qy
			}
			curX, curY = x, y

		case sfnt.SegmentOpCubeTo:
			c1x, c1y := transform(seg.Args[0])
			c2x, c2y := transform(seg.Args[1])
			x, y := transform(seg.Args[2])
			px, py := curX, curY
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				qx := u*u*u*curX + 3*u*u*t*c1x + 3*u*t*t*c2x + t*t*t*x
				qy := u*u*u*curY + 3*u*u*t*c1y + 3*u*t*t*c2y + t*t*t*y
				addEdge(px, py, qx, qy)
				px, py = qx, qy
			}
			curX, curY = x, y
		}
	}
	closeContour()
	return edges
}

// fillEdges scanline-fills edges into the mask with the non-zero
// winding rule. Coverage is binary: a pixel is set when its center
// lies inside the outline.
func fillEdges(dst *image.Alpha, edges []edge) {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	type crossing struct {
		x   float64
		dir int
	}
	crossings := make([]crossing, 0, 16)

	for y := 0; y < h; y++ {
		sy := float64(y) + 0.5
		crossings = crossings[:0]
		for _, e := range edges {
			y0, y1 := e.y0, e.y1
			if y0 > y1 {
				y0, y1 = y1, y0
			}
			if sy < y0 || sy >= y1 {
				continue
			}
			t := (sy - e.y0) / (e.y1 - e.y0)
			crossings = append(crossings, crossing{x: e.x0 + t*(e.x1-e.x0), dir: e.dir})
		}
		if len(crossings) == 0 {
			continue
		}

		// Insertion sort; crossing counts per scanline are tiny.
		for i := 1; i < len(crossings); i++ {
			for j := i; j > 0 && crossings[j].x < crossings[j-1].x; j-- {
				crossings[j], crossings[j-1] = crossings[j-1], crossings[j]
			}
		}

		winding := 0
		for i := 0; i < len(crossings); i++ {
			prev := winding
			winding += crossings[i].dir
			if prev == 0 && winding != 0 {
				// Span opens here; find where it closes.
				x0 := crossings[i].x
				for i+1 < len(crossings) {
					i++
					winding += crossings[i].dir
					if winding == 0 {
						break
					}
				}
				x1 := crossings[i].x
				fillSpan(dst, y, x0, x1, w)
			}
		}
	}
}

// fillSpan sets pixels on row y whose centers fall in [x0, x1).
func fillSpan(dst *image.Alpha, y int, x0, x1 float64, w int) {
	start := int(math.Ceil(x0 - 0.5))
	end := int(math.Ceil(x1 - 0.5))
	if start < 0 {
		start = 0
	}
	if end > w {
		end = w
	}
	row := dst.Pix[y*dst.Stride:]
	for x := start; x < end; x++ {
		row[x] = 255
	}
}

// scaleIntoSlot scales a decoded bitmap into a width x height
// premultiplied RGBA slot, preserving aspect ratio, centered
// horizontally and resting on the slot bottom.
func scaleIntoSlot(src image.Image, width, height int) []byte {
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return nil
	}

	s := math.Min(float64(width)/float64(sb.Dx()), float64(height)/float64(sb.Dy()))
	dw := int(float64(sb.Dx())*s + 0.5)
	dh := int(float64(sb.Dy())*s + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	x0 := (width - dw) / 2
	y0 := height - dh

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh), src, sb, xdraw.Src, nil)
	return dst.Pix
}
