// Package atlas implements the bounded glyph cache shared by all
// rasterization paths: a fixed-size 2D region packer that maps cache keys
// to slot rectangles, with least-recently-used eviction under pressure.
//
// The atlas only assigns geometry. Pixel data lives in the GPU texture
// owned by the compositor; callers rasterize into the returned slot and
// queue an upload when Get reports a miss.
package atlas

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"
)

// Default atlas dimensions. Sized for a full screen of glyph cells at
// typical terminal font sizes with headroom for style variants.
const (
	DefaultWidth  = 1800
	DefaultHeight = 1200

	// MinDimension is the smallest accepted atlas edge.
	MinDimension = 64
)

// FontID identifies a font resource. The zero value is reserved for
// programmatic glyphs, which are not sourced from any font.
type FontID uint32

// BuiltinFont is the FontID under which programmatic glyphs are cached.
const BuiltinFont FontID = 0

// Style carries the style bits that change a glyph's rendered shape.
// Color and underline do not affect the bitmap and are excluded so that
// differently colored cells share cache entries.
type Style uint8

const (
	// StyleBold marks synthetic or real bold rendering.
	StyleBold Style = 1 << iota
	// StyleItalic marks synthetic or real italic rendering.
	StyleItalic
)

// Key identifies one rasterization result. Glyph holds a font glyph index
// for shaped glyphs, or a raw Unicode code point for programmatic glyphs;
// the two spaces cannot collide because programmatic glyphs always use
// BuiltinFont.
type Key struct {
	Style Style
	Glyph uint32
	Font  FontID
}

// Slot is an axis-aligned rectangle inside the atlas texture assigned to
// one key, plus a flag telling the caller whether its pixels are already
// valid.
type Slot struct {
	X, Y          int
	Width, Height int

	cached bool
}

// Cached reports whether the slot's pixels are already valid. When false
// the caller must rasterize the glyph and queue an upload for this slot.
func (s Slot) Cached() bool { return s.cached }

// UV returns the slot's texture coordinates in [0,1] given the atlas
// dimensions, as (u0, v0, u1, v1).
func (s Slot) UV(atlasWidth, atlasHeight int) (u0, v0, u1, v1 float32) {
	w := float32(atlasWidth)
	h := float32(atlasHeight)
	return float32(s.X) / w, float32(s.Y) / h,
		float32(s.X+s.Width) / w, float32(s.Y+s.Height) / h
}

// Stats holds cache statistics, useful for diagnostics and tuning.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// Resets counts full invalidations triggered by fragmentation or
	// Invalidate calls.
	Resets uint64
}

// Config configures an Atlas.
type Config struct {
	// Width and Height are the atlas texture dimensions in pixels.
	Width  int
	Height int

	// Padding is the gap in pixels between packed slots.
	Padding int
}

// DefaultConfig returns the default atlas configuration.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight, Padding: 0}
}

// Validate checks the configuration for construction-time errors.
func (c Config) Validate() error {
	if c.Width < MinDimension {
		return &ConfigError{Field: "Width", Reason: fmt.Sprintf("must be at least %d, got %d", MinDimension, c.Width)}
	}
	if c.Height < MinDimension {
		return &ConfigError{Field: "Height", Reason: fmt.Sprintf("must be at least %d, got %d", MinDimension, c.Height)}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must not be negative"}
	}
	return nil
}

// shelf is one horizontal packing row. New slots are appended left to
// right; a new shelf opens below the last when the current rows are full.
type shelf struct {
	y      int
	height int
	nextX  int
}

// entry tracks one live key → slot assignment.
type entry struct {
	key    Key
	slot   Slot
	lruRef *list.Element
}

// freeRect is a slot rectangle reclaimed by eviction, available for
// reuse by an equal-or-smaller allocation.
type freeRect struct {
	x, y, w, h int
}

// Atlas is a bounded 2D bitmap packer and cache. Get always returns a
// slot for a key, allocating (and evicting least-recently-used entries
// when full) as needed.
//
// Atlas is safe for concurrent use, though the frame pipeline drives it
// from a single goroutine.
type Atlas struct {
	mu sync.Mutex

	width   int
	height  int
	padding int

	entries map[Key]*entry
	lru     *list.List // front = most recently used, values are *entry
	shelves []shelf
	free    []freeRect

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	resets    atomic.Uint64
}

// New creates an Atlas with the given configuration.
func New(cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("atlas config: %w", err)
	}
	return &Atlas{
		width:   cfg.Width,
		height:  cfg.Height,
		padding: cfg.Padding,
		entries: make(map[Key]*entry),
		lru:     list.New(),
	}, nil
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.width }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.height }

// Len returns the number of live cache entries.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Get resolves key to a slot of exactly width x height pixels.
//
// A hit returns the previously assigned rectangle with Cached() == true
// and refreshes the entry's recency. A miss packs a fresh rectangle,
// evicting least-recently-used entries when the atlas is full, and
// returns it with Cached() == false; the caller is expected to rasterize
// and upload, after which the entry is treated as valid.
//
// The requested dimensions must stay constant for the lifetime of the
// key; font size changes must go through Invalidate instead. Get returns
// ErrAtlasFull only when the request cannot be satisfied even after
// evicting every other entry.
func (a *Atlas) Get(key Key, width, height int) (Slot, error) {
	if width <= 0 || height <= 0 {
		return Slot{}, fmt.Errorf("atlas: invalid slot size %dx%d", width, height)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[key]; ok {
		a.lru.MoveToFront(e.lruRef)
		a.hits.Add(1)
		s := e.slot
		s.cached = true
		return s, nil
	}

	a.misses.Add(1)

	x, y, ok := a.allocate(width, height)
	if !ok {
		// Evict from the cold end until the allocation fits or the
		// cache is empty.
		for a.lru.Len() > 0 {
			a.evictOldest()
			if x, y, ok = a.allocate(width, height); ok {
				break
			}
		}
	}
	if !ok {
		// Everything evictable is gone; shelf fragmentation may still
		// block the request. Start over with a clean packer.
		a.reset()
		x, y, ok = a.allocate(width, height)
	}
	if !ok {
		return Slot{}, &FullError{Width: width, Height: height, AtlasWidth: a.width, AtlasHeight: a.height}
	}

	e := &entry{
		key:  key,
		slot: Slot{X: x, Y: y, Width: width, Height: height, cached: true},
	}
	e.lruRef = a.lru.PushFront(e)
	a.entries[key] = e

	s := e.slot
	s.cached = false
	return s, nil
}

// Invalidate drops every cache entry and resets the packer. Called when
// font identity or cell metrics change, so stale slot geometry can never
// be served for a new size.
func (a *Atlas) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// Stats returns a snapshot of the cache counters.
func (a *Atlas) Stats() Stats {
	return Stats{
		Hits:      a.hits.Load(),
		Misses:    a.misses.Load(),
		Evictions: a.evictions.Load(),
		Resets:    a.resets.Load(),
	}
}

// allocate finds space for a width x height rectangle, trying reclaimed
// rectangles first and shelf packing second. Caller holds a.mu.
func (a *Atlas) allocate(width, height int) (x, y int, ok bool) {
	// Evicted terminal glyph slots are nearly always the same cell size,
	// so first-fit reuse of freed rectangles recovers most space without
	// repacking.
	for i, f := range a.free {
		if width <= f.w && height <= f.h {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return f.x, f.y, true
		}
	}
	return a.allocateShelf(width, height)
}

// allocateShelf performs first-fit shelf packing. Caller holds a.mu.
func (a *Atlas) allocateShelf(width, height int) (x, y int, ok bool) {
	if width > a.width || height > a.height {
		return 0, 0, false
	}

	pw := width + a.padding
	ph := height + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.width {
			continue
		}
		if ph > s.height {
			// An empty shelf may still grow to fit a taller item.
			if s.nextX > 0 {
				continue
			}
			if s.y+ph > a.shelfBottomLimit(i) {
				continue
			}
			s.height = ph
		}
		x = s.nextX
		s.nextX += pw
		return x, s.y, true
	}

	// Open a new shelf below the last one.
	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+ph > a.height {
		return 0, 0, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: ph, nextX: pw})
	return 0, newY, true
}

// shelfBottomLimit returns the y coordinate a shelf may grow down to:
// the top of the next shelf, or the atlas bottom for the last shelf.
func (a *Atlas) shelfBottomLimit(i int) int {
	if i+1 < len(a.shelves) {
		return a.shelves[i+1].y
	}
	return a.height
}

// evictOldest removes the least-recently-used entry and reclaims its
// rectangle. Caller holds a.mu.
func (a *Atlas) evictOldest() {
	back := a.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	a.lru.Remove(back)
	delete(a.entries, e.key)
	a.free = append(a.free, freeRect{x: e.slot.X, y: e.slot.Y, w: e.slot.Width, h: e.slot.Height})
	a.evictions.Add(1)
}

// reset drops all entries and packing state. Caller holds a.mu.
func (a *Atlas) reset() {
	a.entries = make(map[Key]*entry)
	a.lru.Init()
	a.shelves = a.shelves[:0]
	a.free = a.free[:0]
	a.resets.Add(1)
}
