package synth

// renderBlockElement draws U+2580–259F. Fractional blocks snap to pixel
// boundaries through fillRect; shade characters use dot grids so the
// density reads correctly at terminal cell sizes.
func renderBlockElement(c *canvas, r rune) bool {
	w := float64(c.w)
	h := float64(c.h)

	switch r {
	case 0x2580: // upper half
		c.fillRect(0, 0, w, h/2)
	case 0x2581, 0x2582, 0x2583, 0x2584, 0x2585, 0x2586, 0x2587: // lower eighths
		k := float64(r - 0x2580)
		c.fillRect(0, h-k*h/8, w, k*h/8)
	case 0x2588: // full block
		c.fillRect(0, 0, w, h)
	case 0x2589, 0x258A, 0x258B, 0x258C, 0x258D, 0x258E, 0x258F: // left eighths
		k := float64(0x2590 - r)
		c.fillRect(0, 0, k*w/8, h)
	case 0x2590: // right half
		c.fillRect(w/2, 0, w/2, h)

	case 0x2591: // light shade
		shade(c, false)
	case 0x2592: // medium shade
		shade(c, true)
	case 0x2593: // dark shade
		c.fillRect(0, 0, w, h)

	case 0x2594: // upper eighth
		c.fillRect(0, 0, w, h/8)
	case 0x2595: // right eighth
		c.fillRect(w-w/8, 0, w/8, h)

	// Quadrants.
	case 0x2596: // lower left
		c.fillRect(0, h/2, w/2, h/2)
	case 0x2597: // lower right
		c.fillRect(w/2, h/2, w/2, h/2)
	case 0x2598: // upper left
		c.fillRect(0, 0, w/2, h/2)
	case 0x2599: // upper left + lower half
		c.fillRect(0, 0, w/2, h/2)
		c.fillRect(0, h/2, w, h/2)
	case 0x259A: // upper left + lower right
		c.fillRect(0, 0, w/2, h/2)
		c.fillRect(w/2, h/2, w/2, h/2)
	case 0x259B: // upper half + lower left
		c.fillRect(0, 0, w, h/2)
		c.fillRect(0, h/2, w/2, h/2)
	case 0x259C: // upper half + lower right
		c.fillRect(0, 0, w, h/2)
		c.fillRect(w/2, h/2, w/2, h/2)
	case 0x259D: // upper right
		c.fillRect(w/2, 0, w/2, h/2)
	case 0x259E: // upper right + lower left
		c.fillRect(w/2, 0, w/2, h/2)
		c.fillRect(0, h/2, w/2, h/2)
	case 0x259F: // upper right + lower half
		c.fillRect(w/2, 0, w/2, h/2)
		c.fillRect(0, h/2, w, h/2)

	default:
		return false
	}
	return true
}

// shade draws the light-shade dot checkerboard on a 4x8 grid. medium
// adds a second, smaller dot in the opposing grid positions.
func shade(c *canvas, medium bool) {
	const cols, rows = 4, 8
	w := float64(c.w)
	h := float64(c.h)
	dot := StrokeWidth(c.h) * 0.5
	smallDot := dot * 0.6
	cellW := w / cols
	cellH := h / rows

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := float64(col)*cellW + (cellW-dot)/2
			y := float64(row)*cellH + (cellH-dot)/2
			if row%2 == col%2 {
				c.fillRect(x, y, dot, dot)
			} else if medium {
				c.fillRect(x, y, smallDot, smallDot)
			}
		}
	}
}
