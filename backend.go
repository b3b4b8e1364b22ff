package termgpu

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/termgpu/atlas"
	"github.com/gogpu/termgpu/text"
	"github.com/gogpu/termgpu/text/emoji"
	"github.com/gogpu/termgpu/text/synth"
)

// placedGlyph is one cached glyph placement within a row. Slot geometry
// stays valid between flushes because any atlas eviction forces a full
// redraw.
type placedGlyph struct {
	x, y, w, h     int
	slot           atlas.Slot
	color          uint32
	ulPos, ulColor uint32
}

// bgRun is a horizontal run of cells sharing one non-reset background.
type bgRun struct {
	x, w  int
	color uint32
}

// rowState caches the flushed geometry of one row so clean rows can be
// re-emitted without reshaping.
type rowState struct {
	bg     []bgRun
	glyphs []placedGlyph
	blink  []int // columns carrying ModBlink
}

// Backend owns the cell grid and turns it into vertex streams. It is
// not safe for concurrent use.
type Backend struct {
	cfg   Config
	fonts *text.Collection

	shaper *text.Shaper
	raster *text.Rasterizer
	cache  *atlas.Atlas

	cells []Cell
	dirty []bool
	rows  []rowState

	cellW, cellH int

	cursorCol, cursorRow int
	hasCursor            bool

	uploads []AtlasUpload

	// isColor records, per cache key, whether the rasterized glyph is a
	// color bitmap (rendered untinted) or a monochrome mask (tinted by
	// the cell foreground). The property is deterministic per key, so
	// the map only grows.
	isColor map[atlas.Key]bool

	// lastEvictions detects atlas evictions between flushes; any
	// eviction invalidates cached slot geometry for clean rows.
	lastEvictions uint64

	bgVerts   []byte
	bgIndices []uint32
	fgVerts   []byte
	fgIndices []uint32
}

// NewBackend builds a backend over a font collection. The collection's
// height is set from the config, the atlas is created, and every
// programmatic glyph is prerendered so the first frame pays no
// rasterization cost for box drawing, blocks, braille, or powerline
// cells.
func NewBackend(cfg Config, fonts *text.Collection) (*Backend, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fonts == nil {
		return nil, ErrNilCollection
	}

	cache, err := atlas.New(cfg.Atlas)
	if err != nil {
		return nil, err
	}

	fonts.SetHeight(cfg.FontHeightPx)
	cellW, cellH := fonts.CellSize()

	b := &Backend{
		cfg:     cfg,
		fonts:   fonts,
		shaper:  text.NewShaper(),
		raster:  text.NewRasterizer(),
		cache:   cache,
		cells:   make([]Cell, cfg.Columns*cfg.Rows),
		dirty:   make([]bool, cfg.Rows),
		rows:    make([]rowState, cfg.Rows),
		cellW:   cellW,
		cellH:   cellH,
		isColor: make(map[atlas.Key]bool),
	}
	for r := range b.dirty {
		b.dirty[r] = true
	}
	b.warmProgrammatic()
	return b, nil
}

// Size returns the grid dimensions in cells.
func (b *Backend) Size() (cols, rows int) {
	return b.cfg.Columns, b.cfg.Rows
}

// PixelSize returns the rendered frame dimensions in pixels.
func (b *Backend) PixelSize() (w, h int) {
	return b.cfg.Columns * b.cellW, b.cfg.Rows * b.cellH
}

// CellSize returns the cell dimensions in pixels.
func (b *Backend) CellSize() (w, h int) {
	return b.cellW, b.cellH
}

// Draw writes a batch of cell updates and marks their rows dirty.
// Wide clusters claim the following cell as a blank continuation that
// keeps the update's background. Out-of-bounds updates abort the batch.
func (b *Backend) Draw(updates []CellUpdate) error {
	for _, u := range updates {
		if u.Col < 0 || u.Col >= b.cfg.Columns || u.Row < 0 || u.Row >= b.cfg.Rows {
			return ErrOutOfBounds
		}
		// Hosts may hand over decomposed sequences; cache keys and
		// shaping both want the composed form.
		if !norm.NFC.IsNormalString(u.Cell.Symbol) {
			u.Cell.Symbol = norm.NFC.String(u.Cell.Symbol)
		}
		b.cells[u.Row*b.cfg.Columns+u.Col] = u.Cell
		b.dirty[u.Row] = true
		if runewidth.StringWidth(u.Cell.Symbol) >= 2 && u.Col+1 < b.cfg.Columns {
			b.cells[u.Row*b.cfg.Columns+u.Col+1] = Cell{BG: u.Cell.BG}
		}
	}
	return nil
}

// SetCursor places the cursor, rendering its cell reversed. Both the
// old and new cursor rows are re-flushed.
func (b *Backend) SetCursor(col, row int) error {
	if col < 0 || col >= b.cfg.Columns || row < 0 || row >= b.cfg.Rows {
		return ErrOutOfBounds
	}
	if b.hasCursor {
		b.dirty[b.cursorRow] = true
	}
	b.cursorCol, b.cursorRow, b.hasCursor = col, row, true
	b.dirty[row] = true
	return nil
}

// ClearCursor hides the cursor.
func (b *Backend) ClearCursor() {
	if b.hasCursor {
		b.dirty[b.cursorRow] = true
		b.hasCursor = false
	}
}

// BlinkCells returns the positions of all cells carrying the Blink
// modifier as of the last Flush. A host toggling blink phase re-draws
// these cells on its timer.
func (b *Backend) BlinkCells() []CellPos {
	var out []CellPos
	for r := range b.rows {
		for _, col := range b.rows[r].blink {
			out = append(out, CellPos{Col: col, Row: r})
		}
	}
	return out
}

// Stats returns the atlas cache statistics.
func (b *Backend) Stats() atlas.Stats {
	return b.cache.Stats()
}

// SetFontHeight changes the cell height: the collection is re-measured,
// the atlas and shaping caches are invalidated, programmatic glyphs are
// re-warmed, and every row is marked dirty.
func (b *Backend) SetFontHeight(px int) error {
	if px <= 0 {
		return &ConfigError{Field: "FontHeightPx", Reason: "must be positive"}
	}
	b.cfg.FontHeightPx = px
	b.fonts.SetHeight(px)
	b.cellW, b.cellH = b.fonts.CellSize()
	b.cache.Invalidate()
	b.shaper.Invalidate()
	b.uploads = b.uploads[:0]
	b.lastEvictions = b.cache.Stats().Evictions
	for r := range b.dirty {
		b.dirty[r] = true
	}
	b.warmProgrammatic()
	return nil
}

// Flush reshapes every dirty row and rebuilds the vertex streams.
// Clean rows re-emit their cached geometry. Rasterization misses are
// queued as atlas uploads for the next Render.
func (b *Backend) Flush() {
	// Evictions under pressure may have reclaimed slots still referenced
	// by clean rows; reprocess everything so no quad samples stale
	// geometry.
	if ev := b.cache.Stats().Evictions; ev != b.lastEvictions {
		b.lastEvictions = ev
		for r := range b.dirty {
			b.dirty[r] = true
		}
	}

	for r := 0; r < b.cfg.Rows; r++ {
		if !b.dirty[r] {
			continue
		}
		b.flushRow(r)
		b.dirty[r] = false
	}
	b.rebuildVertices()

	Logger().Debug("flush",
		"bgQuads", len(b.bgIndices)/6,
		"fgQuads", len(b.fgIndices)/6,
		"pendingUploads", len(b.uploads))
}

// Render drains pending atlas uploads and hands the current vertex
// streams to the renderer.
func (b *Backend) Render(r Renderer) error {
	if r == nil {
		return ErrNilRenderer
	}
	uploads := b.uploads
	b.uploads = nil
	return r.Frame(uploads,
		VertexStream{Verts: b.bgVerts, Indices: b.bgIndices},
		VertexStream{Verts: b.fgVerts, Indices: b.fgIndices})
}

// warmProgrammatic prerenders every implemented programmatic glyph into
// the atlas under the builtin font id.
func (b *Backend) warmProgrammatic() {
	synth.Prerender(b.cellW, b.cellH, func(r rune, pix []byte, w, h int) {
		key := atlas.Key{Font: atlas.BuiltinFont, Glyph: uint32(r)}
		slot, err := b.cache.Get(key, w, h)
		if err != nil {
			Logger().Warn("programmatic warm-up miss dropped", "rune", r, "err", err)
			return
		}
		b.isColor[key] = false
		if !slot.Cached() {
			b.uploads = append(b.uploads, AtlasUpload{
				X: slot.X, Y: slot.Y, Width: slot.Width, Height: slot.Height, Pix: pix,
			})
		}
	})
}

// resolved returns the cell's effective foreground and background after
// reset resolution, reverse video, and hidden handling.
func (b *Backend) resolved(c Cell) (fg, bg Color) {
	fg = c.FG.resolve(b.cfg.ResetFG)
	bg = c.BG.resolve(b.cfg.ResetBG)
	if c.Mod.Has(ModReversed) {
		fg, bg = bg, fg
	}
	if c.Mod.Has(ModHidden) {
		fg = bg
	}
	return fg, bg
}

// cellAt returns the cell with the cursor reversal applied.
func (b *Backend) cellAt(col, row int) Cell {
	c := b.cells[row*b.cfg.Columns+col]
	if b.hasCursor && row == b.cursorRow && col == b.cursorCol {
		c.Mod ^= ModReversed
	}
	return c
}

// textRun is a stretch of consecutive cells shaped together with one
// font and style.
type textRun struct {
	font       *text.Font
	fakeBold   bool
	fakeItalic bool
	style      atlas.Style

	text    string
	runeCol []int // rune index in text -> origin column
}

func (b *Backend) flushRow(row int) {
	rs := &b.rows[row]
	rs.bg = rs.bg[:0]
	rs.glyphs = rs.glyphs[:0]
	rs.blink = rs.blink[:0]

	y := row * b.cellH

	// Background runs and blink tracking. Every cell gets a background
	// quad, whatever the renderer clears to; adjacent same-color cells
	// merge into one run.
	runStart, runColor, inRun := 0, uint32(0), false
	flushRun := func(end int) {
		if inRun {
			rs.bg = append(rs.bg, bgRun{x: runStart * b.cellW, w: (end - runStart) * b.cellW, color: runColor})
			inRun = false
		}
	}
	for col := 0; col < b.cfg.Columns; col++ {
		c := b.cellAt(col, row)
		if c.Mod.Has(ModBlink) {
			rs.blink = append(rs.blink, col)
		}
		_, bg := b.resolved(c)
		packed := bg.packed()
		if inRun && packed == runColor {
			continue
		}
		flushRun(col)
		runStart, runColor, inRun = col, packed, true
	}
	flushRun(b.cfg.Columns)

	// Glyphs: programmatic cells render directly; text cells accumulate
	// into runs shaped as one string per font and style.
	var run *textRun
	endRun := func() {
		if run != nil {
			b.shapeRun(row, y, run, rs)
			run = nil
		}
	}
	for col := 0; col < b.cfg.Columns; col++ {
		c := b.cellAt(col, row)
		if c.blank() || c.Mod.Has(ModHidden) {
			endRun()
			continue
		}
		symRunes := []rune(c.Symbol)
		if len(symRunes) == 1 && synth.IsProgrammatic(symRunes[0]) {
			endRun()
			b.placeProgrammatic(col, y, symRunes[0], c, rs)
			continue
		}

		f, fb, fi := b.fonts.FontForCell(c.Symbol, c.Mod.Has(ModBold), c.Mod.Has(ModItalic))
		if run != nil && (run.font != f || run.fakeBold != fb || run.fakeItalic != fi) {
			endRun()
		}
		if run == nil {
			var style atlas.Style
			if fb || (c.Mod.Has(ModBold) && f.IsBold()) {
				style |= atlas.StyleBold
			}
			if fi || (c.Mod.Has(ModItalic) && f.IsItalic()) {
				style |= atlas.StyleItalic
			}
			run = &textRun{font: f, fakeBold: fb, fakeItalic: fi, style: style}
		}
		for range symRunes {
			run.runeCol = append(run.runeCol, col)
		}
		run.text += c.Symbol

		// A wide cluster owns the next cell; skip its continuation.
		if runewidth.StringWidth(c.Symbol) >= 2 {
			col++
		}
	}
	endRun()
}

// fakeStyles suppresses synthetic bold and italic for emoji clusters;
// color bitmaps are never skewed or double-struck.
func fakeStyles(cluster string, fakeBold, fakeItalic bool) (bold, italic bool) {
	if !fakeBold && !fakeItalic {
		return false, false
	}
	for _, r := range cluster {
		if emoji.IsEmoji(r) {
			return false, false
		}
	}
	return fakeBold, fakeItalic
}

// shapeRun shapes one text run and places its glyphs into the row
// state, rasterizing atlas misses.
func (b *Backend) shapeRun(row, y int, run *textRun, rs *rowState) {
	glyphs := b.shaper.ShapeRow(run.text, run.font, float64(b.cellH))
	for _, g := range glyphs {
		if g.Cluster < 0 || g.Cluster >= len(run.runeCol) {
			continue
		}
		col := run.runeCol[g.Cluster]
		c := b.cellAt(col, row)
		fg, _ := b.resolved(c)

		cw := runewidth.StringWidth(c.Symbol)
		if cw < 1 {
			cw = 1
		}
		if col+cw > b.cfg.Columns {
			cw = b.cfg.Columns - col
		}
		slotW := cw * b.cellW

		key := atlas.Key{Style: run.style, Glyph: g.GID, Font: run.font.ID()}
		slot, err := b.cache.Get(key, slotW, b.cellH)
		if err != nil {
			Logger().Warn("glyph dropped, atlas full", "gid", g.GID, "err", err)
			continue
		}
		if !slot.Cached() {
			fb, fi := fakeStyles(c.Symbol, run.fakeBold, run.fakeItalic)
			pix, isColor := b.raster.Glyph(run.font, g.GID, b.cellH, slotW, b.cellH, fb, fi)
			if pix == nil {
				continue
			}
			b.isColor[key] = isColor
			b.uploads = append(b.uploads, AtlasUpload{
				X: slot.X, Y: slot.Y, Width: slot.Width, Height: slot.Height, Pix: pix,
			})
		}

		// Color bitmaps carry their own colors; monochrome masks are
		// tinted by the foreground.
		color := fg.packed()
		if b.isColor[key] {
			color = 0xFFFFFFFF
		}

		var ulPos, ulColor uint32
		if c.Mod.Has(ModUnderlined) {
			pos, thick := run.font.UnderlineMetrics(b.cellH)
			ulPos = packUnderline(pos, thick)
			ulColor = fg.packed()
		}

		rs.glyphs = append(rs.glyphs, placedGlyph{
			x: col * b.cellW, y: y, w: slotW, h: b.cellH,
			slot: slot, color: color, ulPos: ulPos, ulColor: ulColor,
		})
	}
}

// placeProgrammatic places one procedurally rendered glyph.
func (b *Backend) placeProgrammatic(col, y int, r rune, c Cell, rs *rowState) {
	fg, _ := b.resolved(c)
	key := atlas.Key{Font: atlas.BuiltinFont, Glyph: uint32(r)}
	slot, err := b.cache.Get(key, b.cellW, b.cellH)
	if err != nil {
		Logger().Warn("programmatic glyph dropped, atlas full", "rune", r, "err", err)
		return
	}
	if !slot.Cached() {
		pix, ok := synth.Render(r, b.cellW, b.cellH)
		if !ok {
			return
		}
		b.isColor[key] = false
		b.uploads = append(b.uploads, AtlasUpload{
			X: slot.X, Y: slot.Y, Width: slot.Width, Height: slot.Height, Pix: pix,
		})
	}

	var ulPos, ulColor uint32
	if c.Mod.Has(ModUnderlined) {
		thick := int(synth.StrokeWidth(b.cellH))
		pos := b.cellH - 2*thick
		if pos < 0 {
			pos = 0
		}
		ulPos = packUnderline(pos, thick)
		ulColor = fg.packed()
	}

	rs.glyphs = append(rs.glyphs, placedGlyph{
		x: col * b.cellW, y: y, w: b.cellW, h: b.cellH,
		slot: slot, color: fg.packed(), ulPos: ulPos, ulColor: ulColor,
	})
}

// rebuildVertices re-emits the full streams from per-row cached
// geometry.
func (b *Backend) rebuildVertices() {
	b.bgVerts = b.bgVerts[:0]
	b.bgIndices = b.bgIndices[:0]
	b.fgVerts = b.fgVerts[:0]
	b.fgIndices = b.fgIndices[:0]

	aw, ah := b.cache.Width(), b.cache.Height()
	for r := range b.rows {
		rs := &b.rows[r]
		y := float32(r * b.cellH)
		for _, q := range rs.bg {
			b.bgVerts, b.bgIndices = appendBgQuad(b.bgVerts, b.bgIndices,
				float32(q.x), y, float32(q.w), float32(b.cellH), q.color)
		}
		for _, g := range rs.glyphs {
			u0, v0, u1, v1 := g.slot.UV(aw, ah)
			b.fgVerts, b.fgIndices = appendFgQuad(b.fgVerts, b.fgIndices,
				float32(g.x), float32(g.y), float32(g.w), float32(g.h),
				u0, v0, u1, v1, g.color, g.ulPos, g.ulColor)
		}
	}
}
