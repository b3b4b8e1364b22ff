package synth

import "math"

// canvas is a small RGBA8 pixel buffer the range renderers draw into.
// All primitives run with anti-aliasing disabled: a pixel is either fully
// covered or untouched, decided at its center. Binary coverage keeps
// box-drawing junctions gap-free when neighbouring cells are rendered
// independently, and makes output byte-identical across calls.
type canvas struct {
	w, h int
	pix  []byte
}

func newCanvas(w, h int) *canvas {
	return &canvas{w: w, h: h, pix: make([]byte, w*h*4)}
}

// set writes an opaque white pixel. Glyphs are rasterized white on
// transparent; the foreground shader multiplies in the cell color.
func (c *canvas) set(x, y int) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	i := (y*c.w + x) * 4
	c.pix[i+0] = 0xFF
	c.pix[i+1] = 0xFF
	c.pix[i+2] = 0xFF
	c.pix[i+3] = 0xFF
}

// fillRect fills the axis-aligned rectangle [x, x+w) x [y, y+h).
// Edges snap to the nearest pixel boundary.
func (c *canvas) fillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	x0 := int(math.Floor(x + 0.5))
	y0 := int(math.Floor(y + 0.5))
	x1 := int(math.Floor(x + w + 0.5))
	y1 := int(math.Floor(y + h + 0.5))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.set(px, py)
		}
	}
}

// hline draws a horizontal line across the full canvas width, centered
// on y with the given stroke thickness. Runs edge to edge so abutting
// cells connect without gaps.
func (c *canvas) hline(y, stroke float64) {
	c.fillRect(0, y-stroke/2, float64(c.w), stroke)
}

// vline draws a vertical line across the full canvas height, centered
// on x.
func (c *canvas) vline(x, stroke float64) {
	c.fillRect(x-stroke/2, 0, stroke, float64(c.h))
}

// line draws a stroked segment from (x1, y1) to (x2, y2) as a filled
// quad perpendicular to the segment direction.
func (c *canvas) line(x1, y1, x2, y2, stroke float64) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Perpendicular half-offset.
	ox := -dy / length * stroke / 2
	oy := dx / length * stroke / 2
	c.fillPolygon([]point{
		{x1 + ox, y1 + oy},
		{x2 + ox, y2 + oy},
		{x2 - ox, y2 - oy},
		{x1 - ox, y1 - oy},
	})
}

// fillTriangle fills the triangle (x1,y1) (x2,y2) (x3,y3).
func (c *canvas) fillTriangle(x1, y1, x2, y2, x3, y3 float64) {
	c.fillPolygon([]point{{x1, y1}, {x2, y2}, {x3, y3}})
}

// fillCircle fills a disc centered at (cx, cy). Pixel centers inside the
// radius are set; a disc too small to sweep any center sets the pixel
// under its own center, so dots stay visible at tiny cell sizes.
func (c *canvas) fillCircle(cx, cy, r float64) {
	if r <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	r2 := r * r
	covered := false
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				c.set(px, py)
				covered = true
			}
		}
	}
	if !covered {
		c.set(int(math.Floor(cx)), int(math.Floor(cy)))
	}
}

// arcSegments is the number of chords used to approximate a quarter arc.
const arcSegments = 20

// strokeArc draws a circular arc from startDeg to endDeg (0 = right,
// 90 = down) as a chain of stroked chords.
func (c *canvas) strokeArc(cx, cy, r, startDeg, endDeg, stroke float64) {
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	step := (end - start) / arcSegments
	px := cx + r*math.Cos(start)
	py := cy + r*math.Sin(start)
	for i := 1; i <= arcSegments; i++ {
		a := start + step*float64(i)
		nx := cx + r*math.Cos(a)
		ny := cy + r*math.Sin(a)
		c.line(px, py, nx, ny, stroke)
		px, py = nx, ny
	}
}

type point struct {
	x, y float64
}

// fillPolygon fills a closed polygon using even-odd scanline coverage
// sampled at pixel centers.
func (c *canvas) fillPolygon(pts []point) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	if y0 < 0 {
		y0 = 0
	}
	if y1 > c.h {
		y1 = c.h
	}

	var xs []float64
	for py := y0; py < y1; py++ {
		sy := float64(py) + 0.5
		xs = xs[:0]
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.y <= sy) == (b.y <= sy) {
				continue
			}
			t := (sy - a.y) / (b.y - a.y)
			xs = append(xs, a.x+t*(b.x-a.x))
		}
		if len(xs) < 2 {
			continue
		}
		// Insertion sort: crossing counts are tiny.
		for i := 1; i < len(xs); i++ {
			for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
				xs[j], xs[j-1] = xs[j-1], xs[j]
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			sx0 := int(math.Ceil(xs[i] - 0.5))
			sx1 := int(math.Floor(xs[i+1] - 0.5))
			for px := sx0; px <= sx1; px++ {
				c.set(px, py)
			}
		}
	}
}
