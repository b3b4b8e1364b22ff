package text

import (
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/termgpu/atlas"
)

// candidate pairs a font with the fake-style flags that would apply if
// it were chosen.
type candidate struct {
	font       *Font
	fakeBold   bool
	fakeItalic bool
}

// Collection resolves which physical font renders a cell, with fallback
// across styles. Fonts are grouped by their declared bold/italic flags;
// when no styled variant covers a cluster the regular list is used with
// synthetic styling, and a mandatory last-resort font guarantees an
// answer.
type Collection struct {
	charWidth  int
	charHeight int

	lastResort *Font

	regular    []*Font
	bold       []*Font
	italic     []*Font
	boldItalic []*Font

	buf sfnt.Buffer
}

// NewCollection builds a collection around a last-resort font. heightPx
// is the rendered cell height for every font in the collection.
func NewCollection(lastResort *Font, heightPx int) (*Collection, error) {
	if lastResort == nil {
		return nil, ErrNoFonts
	}
	if heightPx <= 0 {
		return nil, &FontError{Reason: "cell height must be positive"}
	}
	return &Collection{
		charWidth:  lastResort.CharWidth(heightPx),
		charHeight: heightPx,
		lastResort: lastResort,
	}, nil
}

// AddFonts registers fallback fonts, routed to the style list matching
// each font's declared bold/italic flags. Later additions rank after
// earlier ones within a list.
func (c *Collection) AddFonts(fonts ...*Font) {
	for _, f := range fonts {
		if f == nil {
			continue
		}
		if w := f.CharWidth(c.charHeight); w < c.charWidth {
			c.charWidth = w
		}
		switch {
		case f.IsBold() && f.IsItalic():
			c.boldItalic = append(c.boldItalic, f)
		case f.IsItalic():
			c.italic = append(c.italic, f)
		case f.IsBold():
			c.bold = append(c.bold, f)
		default:
			c.regular = append(c.regular, f)
		}
	}
}

// CellSize returns the pixel dimensions of one terminal cell: the
// minimum 'm' advance across all fonts by the configured height.
func (c *Collection) CellSize() (w, h int) {
	return c.charWidth, c.charHeight
}

// SetHeight changes the rendered height of every font. Cached glyphs
// rendered at the old size are stale; the caller must invalidate its
// atlas afterwards.
func (c *Collection) SetHeight(heightPx int) {
	c.charHeight = heightPx
	c.charWidth = c.lastResort.CharWidth(heightPx)
	for _, list := range [][]*Font{c.regular, c.bold, c.italic, c.boldItalic} {
		for _, f := range list {
			if w := f.CharWidth(heightPx); w < c.charWidth {
				c.charWidth = w
			}
		}
	}
}

// LastResortID returns the last-resort font's atlas identifier.
func (c *Collection) LastResortID() atlas.FontID {
	return c.lastResort.ID()
}

// FontForCell resolves the font and synthetic style flags for one cell
// cluster. Style lists are tried in a priority order derived from the
// requested bold/italic bits; within the order the first font covering
// the whole cluster wins, otherwise the best partial cover, finally the
// last resort with fully synthetic styling.
func (c *Collection) FontForCell(cluster string, wantBold, wantItalic bool) (f *Font, fakeBold, fakeItalic bool) {
	var order []candidate
	switch {
	case wantBold && wantItalic:
		order = appendCandidates(order, c.boldItalic, false, false)
		order = appendCandidates(order, c.bold, false, true)
		order = appendCandidates(order, c.italic, true, false)
		order = appendCandidates(order, c.regular, true, true)
	case wantBold:
		order = appendCandidates(order, c.bold, false, false)
		order = appendCandidates(order, c.regular, true, false)
		order = appendCandidates(order, c.italic, true, false)
		order = appendCandidates(order, c.boldItalic, false, false)
	case wantItalic:
		order = appendCandidates(order, c.italic, false, false)
		order = appendCandidates(order, c.regular, false, true)
		order = appendCandidates(order, c.bold, false, true)
		order = appendCandidates(order, c.boldItalic, false, false)
	default:
		order = appendCandidates(order, c.regular, false, false)
		order = appendCandidates(order, c.bold, false, false)
		order = appendCandidates(order, c.italic, false, false)
		order = appendCandidates(order, c.boldItalic, false, false)
	}
	order = append(order, candidate{c.lastResort, wantBold, wantItalic})

	return c.selectFont(cluster, order)
}

func appendCandidates(dst []candidate, fonts []*Font, fakeBold, fakeItalic bool) []candidate {
	for _, f := range fonts {
		dst = append(dst, candidate{f, fakeBold, fakeItalic})
	}
	return dst
}

// selectFont picks the candidate covering the most runes of the
// cluster, stopping early on full coverage.
func (c *Collection) selectFont(cluster string, order []candidate) (*Font, bool, bool) {
	total := 0
	for range cluster {
		total++
	}

	best := order[len(order)-1]
	bestCount := 0
	for _, cand := range order {
		count := 0
		for _, r := range cluster {
			if _, ok := cand.font.GlyphIndex(&c.buf, r); ok {
				count++
			}
		}
		if count > bestCount {
			best = cand
			bestCount = count
		}
		if count == total && total > 0 {
			break
		}
	}
	return best.font, best.fakeBold, best.fakeItalic
}
