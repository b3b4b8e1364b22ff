// Package text turns grapheme clusters into cell-sized glyph bitmaps.
//
// A Collection routes each cluster to a font by style and coverage,
// falling back to synthetic bold/italic flags and finally a last-resort
// font. A Shaper runs HarfBuzz shaping per row with cached per-font
// inputs. A Rasterizer renders a shaped glyph into an exact cell slot
// through four paths in fixed priority: COLR color layers, embedded
// color bitmaps (sbix, CBDT), font outlines at 2x supersampling with
// synthetic styling, and grayscale bitmap strikes. Every path is
// deterministic and none of them antialias; a glyph with no usable
// source renders as a transparent buffer rather than an error.
package text
