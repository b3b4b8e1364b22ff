// Package termgpu renders a terminal cell grid on the GPU.
//
// The host owns a grid of cells (a glyph cluster plus foreground,
// background, and modifier attributes) and pushes updates through
// [Backend.Draw]. [Backend.Flush] shapes the dirty rows, resolves every
// glyph against a bounded atlas cache, and rebuilds the vertex streams;
// [Backend.Render] drives a [Renderer] that uploads pending atlas rects
// and composites the frame in two passes (opaque backgrounds, then
// alpha-blended glyphs sampling the atlas texture).
//
// Glyphs come from three sources, tried in order: programmatic shapes
// for box drawing, block elements, braille, and powerline ranges
// (text/synth), color glyph tables (COLR, sbix, CBDT), and font
// outlines with synthetic bold/italic fallbacks (text). All paths are
// deterministic: the same cell grid produces byte-identical frames.
//
// Construct a [Renderer] over a gogpu/wgpu HAL device with
// [NewRenderer], or implement the interface to target something else.
package termgpu
