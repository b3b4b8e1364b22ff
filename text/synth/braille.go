package synth

// braille dot positions in (column, row) order of the pattern bits:
// bits 0-2 are the left column rows 0-2, bits 3-5 the right column,
// bits 6-7 the bottom row left then right.
var brailleDots = [8][2]int{
	{0, 0}, {0, 1}, {0, 2},
	{1, 0}, {1, 1}, {1, 2},
	{0, 3}, {1, 3},
}

// renderBraille draws U+2800–28FF as a 2x4 dot grid. The pattern is the
// low byte of the code point; U+2800 (blank) is a valid all-transparent
// glyph.
func renderBraille(c *canvas, r rune) bool {
	pattern := byte(r - 0x2800)

	dotSize := StrokeWidth(c.h) * 0.6
	padding := dotSize
	usableW := float64(c.w) - 2*padding
	usableH := float64(c.h) - 2*padding
	if usableW < 1 {
		usableW = 1
	}
	if usableH < 1 {
		usableH = 1
	}
	cellW := usableW / 2
	cellH := usableH / 4

	for bit := 0; bit < 8; bit++ {
		if pattern&(1<<bit) == 0 {
			continue
		}
		col := brailleDots[bit][0]
		row := brailleDots[bit][1]
		x := padding + float64(col)*cellW + (cellW-dotSize)/2
		y := padding + float64(row)*cellH + (cellH-dotSize)/2
		c.fillCircle(x+dotSize/2, y+dotSize/2, dotSize/2)
	}
	return true
}
