package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/termgpu/atlas"
)

// ShapedGlyph is one positioned glyph from shaping a row of text.
type ShapedGlyph struct {
	// GID is the glyph index within the shaped font.
	GID uint32

	// Cluster is the rune index into the shaped row that produced this
	// glyph. Ligatures map several runes to one cluster.
	Cluster int

	// Offsets are fine positioning adjustments relative to the pen, in
	// pixels. XAdvance moves the pen after the glyph. A cell grid
	// quantizes every cluster to its cell box, so these are advisory
	// for hosts doing their own positioning; composed clusters shape
	// with zero offsets in practice.
	XOffset, YOffset float64
	XAdvance         float64
}

// Shaper turns row text into positioned glyphs using HarfBuzz shaping.
//
// HarfbuzzShaper instances carry mutable buffers and are not safe for
// concurrent use, so they are pooled. font.Face is also stateful; the
// per-font face cache is the shaping plan reuse between rows and is
// safe because Draw/Flush/Render run in strict sequence.
type Shaper struct {
	pool sync.Pool

	mu    sync.RWMutex
	faces map[atlas.FontID]*font.Face
}

// NewShaper creates a shaper with an empty plan cache.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		faces: make(map[atlas.FontID]*font.Face),
	}
}

// ShapeRow shapes a full row of text with one font at the given pixel
// size. Output glyphs appear in visual order with cluster indices back
// into the row's runes.
func (s *Shaper) ShapeRow(row string, f *Font, sizePx float64) []ShapedGlyph {
	if row == "" || f == nil {
		return nil
	}

	runes := []rune(row)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      s.faceFor(f),
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	if len(output.Glyphs) == 0 {
		return nil
	}
	result := make([]ShapedGlyph, len(output.Glyphs))
	for i, g := range output.Glyphs {
		result[i] = ShapedGlyph{
			GID:      uint32(g.GlyphID),
			Cluster:  g.TextIndex(),
			XOffset:  fixedToFloat(g.XOffset),
			YOffset:  fixedToFloat(g.YOffset),
			XAdvance: fixedToFloat(g.Advance),
		}
	}
	return result
}

// Invalidate drops the cached shaping state for all fonts. Call after
// font identity or size changes alongside the atlas invalidation.
func (s *Shaper) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = make(map[atlas.FontID]*font.Face)
}

// faceFor returns the cached shaping face for a font, creating it on
// first use. The fast path takes only the read lock.
func (s *Shaper) faceFor(f *Font) *font.Face {
	s.mu.RLock()
	if face, ok := s.faces[f.ID()]; ok {
		s.mu.RUnlock()
		return face
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.faces[f.ID()]; ok {
		return face
	}
	face := font.NewFace(f.ShapingFont())
	s.faces[f.ID()] = face
	return face
}

// detectScript returns the script of the first non-space rune, used as
// the script for the whole run.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// fixedToFloat converts a 26.6 fixed-point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
