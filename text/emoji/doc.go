// Package emoji reads the color and embedded-bitmap tables of OpenType
// fonts: COLR/CPAL layered color glyphs, sbix bitmap strikes, and
// CBDT/CBLC (or the grayscale EBDT/EBLC twins). It also classifies
// runes as emoji so synthetic bold/italic can be suppressed for them.
//
// Parsers take raw table bytes, not whole fonts; the caller extracts
// tables from the sfnt directory and owns the backing slices.
package emoji
