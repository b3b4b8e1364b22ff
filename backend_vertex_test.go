package termgpu

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestAppendBgQuad(t *testing.T) {
	verts, indices := appendBgQuad(nil, nil, 10, 20, 12, 24, 0xFF112233)

	if len(verts) != 4*bgVertexStride {
		t.Fatalf("len(verts) = %d, want %d", len(verts), 4*bgVertexStride)
	}
	wantPos := [4][2]float32{{10, 20}, {22, 20}, {10, 44}, {22, 44}}
	for i, p := range wantPos {
		off := i * bgVertexStride
		if x, y := f32At(verts, off), f32At(verts, off+4); x != p[0] || y != p[1] {
			t.Errorf("vertex %d pos = (%v, %v), want (%v, %v)", i, x, y, p[0], p[1])
		}
		if c := binary.LittleEndian.Uint32(verts[off+8:]); c != 0xFF112233 {
			t.Errorf("vertex %d color = %#x", i, c)
		}
	}

	want := []uint32{0, 1, 2, 2, 3, 1}
	for i, v := range want {
		if indices[i] != v {
			t.Fatalf("indices = %v, want %v", indices, want)
		}
	}
}

func TestAppendBgQuad_IndexBase(t *testing.T) {
	verts, indices := appendBgQuad(nil, nil, 0, 0, 1, 1, 0)
	verts, indices = appendBgQuad(verts, indices, 1, 0, 1, 1, 0)

	if len(verts) != 8*bgVertexStride {
		t.Fatalf("len(verts) = %d", len(verts))
	}
	if indices[6] != 4 || indices[11] != 5 {
		t.Errorf("second quad indices = %v, want base 4", indices[6:])
	}
}

func TestAppendFgQuad(t *testing.T) {
	ul := packUnderline(20, 2)
	verts, indices := appendFgQuad(nil, nil, 0, 0, 12, 24, 0.1, 0.2, 0.3, 0.4, 0xFFFFFFFF, ul, 0xFF0000FF)

	if len(verts) != 4*fgVertexStride {
		t.Fatalf("len(verts) = %d, want %d", len(verts), 4*fgVertexStride)
	}
	if len(indices) != 6 {
		t.Fatalf("len(indices) = %d, want 6", len(indices))
	}

	// Top-left vertex carries (u0, v0), bottom-right (u1, v1).
	if u, v := f32At(verts, 8), f32At(verts, 12); u != 0.1 || v != 0.2 {
		t.Errorf("top-left uv = (%v, %v)", u, v)
	}
	off := 3 * fgVertexStride
	if u, v := f32At(verts, off+8), f32At(verts, off+12); u != 0.3 || v != 0.4 {
		t.Errorf("bottom-right uv = (%v, %v)", u, v)
	}

	for i := 0; i < 4; i++ {
		off := i * fgVertexStride
		if got := binary.LittleEndian.Uint32(verts[off+20:]); got != ul {
			t.Errorf("vertex %d underline pos = %#x, want %#x", i, got, ul)
		}
		if got := binary.LittleEndian.Uint32(verts[off+24:]); got != 0xFF0000FF {
			t.Errorf("vertex %d underline color = %#x", i, got)
		}
	}
}

func TestPackUnderline(t *testing.T) {
	if got := packUnderline(0, 0); got != 0 {
		t.Errorf("no underline = %#x, want 0", got)
	}
	got := packUnderline(21, 2)
	if got&0xFFFF != 21 || got>>16 != 2 {
		t.Errorf("packed = %#x, want pos 21 thickness 2", got)
	}
}
