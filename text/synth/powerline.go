package synth

import "math"

// curveSegments is the number of samples per half-oval edge in the
// rounded powerline separators.
const curveSegments = 60

// renderPowerline draws U+E0B0–E0BF, the powerline separator private-use
// block. Solid arrows fill to the cell edge so adjacent segments join
// without seams; hollow variants use a thinner stroke than box drawing.
func renderPowerline(c *canvas, r rune) bool {
	w := float64(c.w)
	h := float64(c.h)
	stroke := StrokeWidth(c.h) * 0.5

	switch r {
	case 0xE0B0: // solid right arrow
		c.fillTriangle(0, 0, 0, h, w, h/2)
	case 0xE0B1: // hollow right arrow
		c.line(0, 0, w, h/2, stroke)
		c.line(0, h, w, h/2, stroke)
	case 0xE0B2: // solid left arrow
		c.fillTriangle(w, 0, w, h, 0, h/2)
	case 0xE0B3: // hollow left arrow
		c.line(w, 0, 0, h/2, stroke)
		c.line(w, h, 0, h/2, stroke)

	case 0xE0B4: // solid right semicircle
		pts := make([]point, 0, curveSegments+3)
		pts = append(pts, point{0, 0}, point{0, h})
		for i := curveSegments; i >= 0; i-- {
			t := float64(i) / curveSegments
			ny := 2*t - 1
			pts = append(pts, point{w * math.Sqrt(1-ny*ny), t * h})
		}
		c.fillPolygon(pts)
	case 0xE0B5: // hollow right semicircle
		strokeHalfOval(c, stroke, false)
	case 0xE0B6: // solid left semicircle
		pts := make([]point, 0, curveSegments+3)
		pts = append(pts, point{w, 0}, point{w, h})
		for i := curveSegments; i >= 0; i-- {
			t := float64(i) / curveSegments
			ny := 2*t - 1
			pts = append(pts, point{w - w*math.Sqrt(1-ny*ny), t * h})
		}
		c.fillPolygon(pts)
	case 0xE0B7: // hollow left semicircle
		strokeHalfOval(c, stroke, true)

	case 0xE0B8: // solid lower-left triangle
		c.fillTriangle(0, h, w, h, 0, 0)
	case 0xE0B9: // lower-left diagonal
		c.line(w, 0, 0, h, stroke)
	case 0xE0BA: // solid lower-right triangle
		c.fillTriangle(0, h, w, h, w, 0)
	case 0xE0BB: // lower-right diagonal
		c.line(0, 0, w, h, stroke)
	case 0xE0BC: // solid upper-left triangle
		c.fillTriangle(0, 0, w, 0, 0, h)
	case 0xE0BD: // upper-left diagonal
		c.line(0, 0, w, h, stroke)
	case 0xE0BE: // solid upper-right triangle
		c.fillTriangle(0, 0, w, 0, w, h)
	case 0xE0BF: // upper-right diagonal
		c.line(w, 0, 0, h, stroke)

	default:
		return false
	}
	return true
}

// strokeHalfOval outlines the bulging edge of the rounded separators as
// a chain of chords. left mirrors the bulge toward x = 0.
func strokeHalfOval(c *canvas, stroke float64, left bool) {
	w := float64(c.w)
	h := float64(c.h)
	const segments = curveSegments / 2

	sample := func(i int) (float64, float64) {
		t := float64(i) / segments
		ny := 2*t - 1
		x := w * math.Sqrt(1-ny*ny)
		if left {
			x = w - x
		}
		return x, t * h
	}

	px, py := sample(0)
	for i := 1; i <= segments; i++ {
		nx, ny := sample(i)
		c.line(px, py, nx, ny, stroke)
		px, py = nx, ny
	}
}
