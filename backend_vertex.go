package termgpu

import (
	"encoding/binary"
	"math"
)

// Vertex strides in bytes. Background vertices carry position and
// color; foreground vertices add atlas texture coordinates and packed
// underline metadata so the glyph shader can draw underlines without a
// second stream.
const (
	bgVertexStride = 12 // pos [2]f32 + color u32
	fgVertexStride = 28 // pos [2]f32 + uv [2]f32 + color u32 + underline pos u32 + underline color u32
)

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

// packUnderline packs the underline baseline offset within the cell and
// the stroke thickness, both in pixels, into one word. Zero means no
// underline.
func packUnderline(posPx, thicknessPx int) uint32 {
	return uint32(uint16(posPx)) | uint32(uint16(thicknessPx))<<16
}

// appendQuadIndices appends the two triangles of a quad whose four
// vertices start at base, wound top-left, top-right, bottom-left,
// bottom-right.
func appendQuadIndices(indices []uint32, base uint32) []uint32 {
	return append(indices, base, base+1, base+2, base+2, base+3, base+1)
}

// appendBgQuad appends one solid quad to the background stream.
func appendBgQuad(verts []byte, indices []uint32, x, y, w, h float32, color uint32) ([]byte, []uint32) {
	base := uint32(len(verts) / bgVertexStride)
	var buf [4 * bgVertexStride]byte
	corners := [4][2]float32{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}}
	for i, c := range corners {
		off := i * bgVertexStride
		putFloat32(buf[off:], c[0])
		putFloat32(buf[off+4:], c[1])
		binary.LittleEndian.PutUint32(buf[off+8:], color)
	}
	return append(verts, buf[:]...), appendQuadIndices(indices, base)
}

// appendFgQuad appends one textured glyph quad to the foreground
// stream. The uv rectangle addresses the glyph's atlas slot; color is
// the premultiplied tint applied to monochrome glyphs.
func appendFgQuad(verts []byte, indices []uint32, x, y, w, h, u0, v0, u1, v1 float32, color, ulPos, ulColor uint32) ([]byte, []uint32) {
	base := uint32(len(verts) / fgVertexStride)
	var buf [4 * fgVertexStride]byte
	corners := [4][4]float32{
		{x, y, u0, v0},
		{x + w, y, u1, v0},
		{x, y + h, u0, v1},
		{x + w, y + h, u1, v1},
	}
	for i, c := range corners {
		off := i * fgVertexStride
		putFloat32(buf[off:], c[0])
		putFloat32(buf[off+4:], c[1])
		putFloat32(buf[off+8:], c[2])
		putFloat32(buf[off+12:], c[3])
		binary.LittleEndian.PutUint32(buf[off+16:], color)
		binary.LittleEndian.PutUint32(buf[off+20:], ulPos)
		binary.LittleEndian.PutUint32(buf[off+24:], ulColor)
	}
	return append(verts, buf[:]...), appendQuadIndices(indices, base)
}
