package termgpu

import "testing"

func TestColorRGB(t *testing.T) {
	c := RGB(10, 20, 30)
	if c.IsReset() {
		t.Error("RGB color reported as reset")
	}
	r, g, b := c.RGB()
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("RGB() = (%d, %d, %d), want (10, 20, 30)", r, g, b)
	}
	if !ColorReset.IsReset() {
		t.Error("ColorReset.IsReset() = false")
	}
}

func TestColorResolve(t *testing.T) {
	reset := RGB(1, 2, 3)
	if got := ColorReset.resolve(reset); got != reset {
		t.Errorf("reset resolve = %#x, want %#x", got, reset)
	}
	c := RGB(9, 9, 9)
	if got := c.resolve(reset); got != c {
		t.Errorf("concrete resolve = %#x, want %#x", got, c)
	}
}

func TestColorPacked(t *testing.T) {
	// Little-endian RGBA word: r | g<<8 | b<<16 | 0xFF<<24.
	got := RGB(0x11, 0x22, 0x33).packed()
	want := uint32(0x11) | 0x22<<8 | 0x33<<16 | 0xFF<<24
	if got != want {
		t.Errorf("packed = %#x, want %#x", got, want)
	}
	// Black packs to opaque black, not zero.
	if RGB(0, 0, 0).packed() != 0xFF000000 {
		t.Errorf("black packed = %#x", RGB(0, 0, 0).packed())
	}
}

func TestModifierHas(t *testing.T) {
	m := ModBold | ModUnderlined
	if !m.Has(ModBold) || !m.Has(ModUnderlined) {
		t.Error("set bits not reported")
	}
	if m.Has(ModItalic) {
		t.Error("unset bit reported")
	}
	if !m.Has(ModBold | ModUnderlined) {
		t.Error("combined mask not reported")
	}
	if m.Has(ModBold | ModItalic) {
		t.Error("partial mask should not match")
	}
}

func TestCellBlank(t *testing.T) {
	if !(Cell{}).blank() {
		t.Error("zero cell should be blank")
	}
	if !(Cell{Symbol: " "}).blank() {
		t.Error("space cell should be blank")
	}
	if (Cell{Symbol: "x"}).blank() {
		t.Error("glyph cell should not be blank")
	}
}
