package synth

import "math"

// renderBoxDrawing draws U+2500–257F. Lines run edge to edge and meet
// at the cell center so adjacent cells join seamlessly. Heavy variants
// double the base stroke; double-line variants use two thinner strokes
// separated by a gap.
func renderBoxDrawing(c *canvas, r rune) bool {
	w := float64(c.w)
	h := float64(c.h)
	cx := w / 2
	cy := h / 2
	stroke := StrokeWidth(c.h)
	heavy := stroke * 2

	switch r {
	// Basic lines.
	case 0x2500: // light horizontal
		c.hline(cy, stroke)
	case 0x2501: // heavy horizontal
		c.hline(cy, heavy)
	case 0x2502: // light vertical
		c.vline(cx, stroke)
	case 0x2503: // heavy vertical
		c.vline(cx, heavy)

	// Dashed lines.
	case 0x2504:
		dashedH(c, cy, stroke, 3)
	case 0x2505:
		dashedH(c, cy, heavy, 3)
	case 0x2506:
		dashedV(c, cx, stroke, 3)
	case 0x2507:
		dashedV(c, cx, heavy, 3)
	case 0x2508:
		dashedH(c, cy, stroke, 4)
	case 0x2509:
		dashedH(c, cy, heavy, 4)
	case 0x250A:
		dashedV(c, cx, stroke, 4)
	case 0x250B:
		dashedV(c, cx, heavy, 4)
	case 0x254C:
		dashedH(c, cy, stroke, 2)
	case 0x254D:
		dashedH(c, cy, heavy, 2)
	case 0x254E:
		dashedV(c, cx, stroke, 2)
	case 0x254F:
		dashedV(c, cx, heavy, 2)

	// Corners.
	case 0x250C: // down and right
		corner(c, stroke, true, true)
	case 0x250F:
		corner(c, heavy, true, true)
	case 0x2510: // down and left
		corner(c, stroke, true, false)
	case 0x2513:
		corner(c, heavy, true, false)
	case 0x2514: // up and right
		corner(c, stroke, false, true)
	case 0x2517:
		corner(c, heavy, false, true)
	case 0x2518: // up and left
		corner(c, stroke, false, false)
	case 0x251B:
		corner(c, heavy, false, false)

	// T-junctions.
	case 0x251C: // vertical and right
		c.vline(cx, stroke)
		c.fillRect(cx-stroke/2, cy-stroke/2, w/2+stroke/2, stroke)
	case 0x2523:
		c.vline(cx, heavy)
		c.fillRect(cx-heavy/2, cy-heavy/2, w/2+heavy/2, heavy)
	case 0x2524: // vertical and left
		c.vline(cx, stroke)
		c.fillRect(0, cy-stroke/2, cx+stroke/2, stroke)
	case 0x252B:
		c.vline(cx, heavy)
		c.fillRect(0, cy-heavy/2, cx+heavy/2, heavy)
	case 0x252C: // horizontal and down
		c.hline(cy, stroke)
		c.fillRect(cx-stroke/2, cy-stroke/2, stroke, h/2+stroke/2)
	case 0x2533:
		c.hline(cy, heavy)
		c.fillRect(cx-heavy/2, cy-heavy/2, heavy, h/2+heavy/2)
	case 0x2534: // horizontal and up
		c.hline(cy, stroke)
		c.fillRect(cx-stroke/2, 0, stroke, cy+stroke/2)
	case 0x253B:
		c.hline(cy, heavy)
		c.fillRect(cx-heavy/2, 0, heavy, cy+heavy/2)

	// Crosses.
	case 0x253C:
		c.hline(cy, stroke)
		c.vline(cx, stroke)
	case 0x254B:
		c.hline(cy, heavy)
		c.vline(cx, heavy)

	// Half lines.
	case 0x2574: // left half, light
		c.fillRect(0, cy-stroke/2, cx, stroke)
	case 0x2575: // up half, light
		c.fillRect(cx-stroke/2, 0, stroke, cy)
	case 0x2576: // right half, light
		c.fillRect(cx, cy-stroke/2, w/2, stroke)
	case 0x2577: // down half, light
		c.fillRect(cx-stroke/2, cy, stroke, h/2)
	case 0x2578: // left half, heavy
		c.fillRect(0, cy-heavy/2, cx, heavy)
	case 0x2579: // up half, heavy
		c.fillRect(cx-heavy/2, 0, heavy, cy)
	case 0x257A: // right half, heavy
		c.fillRect(cx, cy-heavy/2, w/2, heavy)
	case 0x257B: // down half, heavy
		c.fillRect(cx-heavy/2, cy, heavy, h/2)

	// Double lines.
	case 0x2550: // double horizontal
		thin, gap := doubleMetrics(stroke)
		c.hline(cy-gap, thin)
		c.hline(cy+gap, thin)
	case 0x2551: // double vertical
		thin, gap := doubleMetrics(stroke)
		c.vline(cx-gap, thin)
		c.vline(cx+gap, thin)

	// Double-line corners.
	case 0x2554: // double down and right
		thin, gap := doubleMetrics(stroke)
		c.fillRect(cx-gap, cy-gap-thin/2, w/2+gap, thin)
		c.fillRect(cx-gap-thin/2, cy-gap, thin, h/2+gap)
		c.fillRect(cx+gap-thin/2, cy+gap-thin/2, w/2-gap+thin/2, thin)
		c.fillRect(cx+gap-thin/2, cy+gap-thin/2, thin, h/2-gap+thin/2)
	case 0x2557: // double down and left
		thin, gap := doubleMetrics(stroke)
		c.fillRect(0, cy-gap-thin/2, cx+gap, thin)
		c.fillRect(cx+gap-thin/2, cy-gap, thin, h/2+gap)
		c.fillRect(0, cy+gap-thin/2, cx-gap+thin/2, thin)
		c.fillRect(cx-gap-thin/2, cy+gap-thin/2, thin, h/2-gap+thin/2)
	case 0x255A: // double up and right
		thin, gap := doubleMetrics(stroke)
		c.fillRect(cx-gap, cy+gap-thin/2, w/2+gap, thin)
		c.fillRect(cx-gap-thin/2, 0, thin, cy+gap)
		c.fillRect(cx+gap-thin/2, cy-gap-thin/2, w/2-gap+thin/2, thin)
		c.fillRect(cx+gap-thin/2, 0, thin, cy-gap+thin/2)
	case 0x255D: // double up and left
		thin, gap := doubleMetrics(stroke)
		c.fillRect(0, cy+gap-thin/2, cx+gap, thin)
		c.fillRect(cx+gap-thin/2, 0, thin, cy+gap)
		c.fillRect(0, cy-gap-thin/2, cx-gap+thin/2, thin)
		c.fillRect(cx-gap-thin/2, 0, thin, cy-gap+thin/2)

	// Rounded arc corners.
	case 0x256D: // arc down and right
		radius := w / 2.5
		c.fillRect(cx+radius, cy-stroke/2, w/2-radius, stroke)
		c.fillRect(cx-stroke/2, cy+radius, stroke, h/2-radius)
		c.strokeArc(cx+radius, cy+radius, radius, 180, 270, stroke)
	case 0x256E: // arc down and left
		radius := w / 2.5
		c.fillRect(0, cy-stroke/2, cx-radius, stroke)
		c.fillRect(cx-stroke/2, cy+radius, stroke, h/2-radius)
		c.strokeArc(cx-radius, cy+radius, radius, 270, 360, stroke)
	case 0x256F: // arc up and left
		radius := w / 2.5
		c.fillRect(0, cy-stroke/2, cx-radius, stroke)
		c.fillRect(cx-stroke/2, 0, stroke, cy-radius)
		c.strokeArc(cx-radius, cy-radius, radius, 0, 90, stroke)
	case 0x2570: // arc up and right
		radius := w / 2.5
		c.fillRect(cx+radius, cy-stroke/2, w/2-radius, stroke)
		c.fillRect(cx-stroke/2, 0, stroke, cy-radius)
		c.strokeArc(cx+radius, cy-radius, radius, 90, 180, stroke)

	// Diagonals.
	case 0x2571: // rising
		c.line(0, h, w, 0, stroke)
	case 0x2572: // falling
		c.line(0, 0, w, h, stroke)
	case 0x2573: // cross
		c.line(0, h, w, 0, stroke)
		c.line(0, 0, w, h, stroke)

	default:
		// Mixed light/heavy combinations and the remaining double-line
		// junctions are not implemented; those cells render blank.
		return false
	}
	return true
}

// doubleMetrics returns the stroke and half-gap used by double-line
// glyphs, derived from the light stroke width.
func doubleMetrics(stroke float64) (thin, gap float64) {
	return math.Max(stroke*0.6, 1), stroke * 0.8
}

// corner draws a light or heavy L-corner. down selects the vertical arm
// direction, right the horizontal arm direction.
func corner(c *canvas, stroke float64, down, right bool) {
	w := float64(c.w)
	h := float64(c.h)
	cx := w / 2
	cy := h / 2

	if right {
		c.fillRect(cx-stroke/2, cy-stroke/2, w/2+stroke/2, stroke)
	} else {
		c.fillRect(0, cy-stroke/2, cx+stroke/2, stroke)
	}
	if down {
		c.fillRect(cx-stroke/2, cy-stroke/2, stroke, h/2+stroke/2)
	} else {
		c.fillRect(cx-stroke/2, 0, stroke, cy+stroke/2)
	}
}

// dashedH draws count dashes across the width, centered on y, with a
// one-stroke gap between dashes.
func dashedH(c *canvas, y, stroke float64, count int) {
	gap := StrokeWidth(c.h)
	dash := (float64(c.w) - float64(count-1)*gap) / float64(count)
	for i := 0; i < count; i++ {
		x := float64(i) * (dash + gap)
		c.fillRect(x, y-stroke/2, dash, stroke)
	}
}

// dashedV draws count dashes down the height, centered on x.
func dashedV(c *canvas, x, stroke float64, count int) {
	gap := StrokeWidth(c.h)
	dash := (float64(c.h) - float64(count-1)*gap) / float64(count)
	for i := 0; i < count; i++ {
		y := float64(i) * (dash + gap)
		c.fillRect(x-stroke/2, y, stroke, dash)
	}
}
