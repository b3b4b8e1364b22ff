package gpu

import (
	"bytes"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func testConfig() Config {
	return Config{
		Width: 960, Height: 576,
		AtlasWidth: 1800, AtlasHeight: 1200,
		CellWidth: 12, CellHeight: 24,
	}
}

func TestShadersCompile(t *testing.T) {
	for name, src := range map[string]string{
		"cell_bg": bgShaderSource,
		"cell_fg": fgShaderSource,
	} {
		if _, err := naga.Compile(src); err != nil {
			t.Errorf("%s.wgsl failed to compile: %v", name, err)
		}
	}
}

func TestNewCompositor(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewCompositor(device, queue, testConfig())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	defer c.Destroy()

	if c.bgPipeline == nil || c.fgPipeline == nil {
		t.Error("pipelines not created")
	}
	if c.atlasTex == nil || c.destTex == nil {
		t.Error("textures not created")
	}
	if c.bgBindGroup == nil || c.fgBindGroup == nil {
		t.Error("bind groups not created")
	}
}

func TestNewCompositor_InvalidConfig(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := NewCompositor(nil, queue, testConfig()); err == nil {
		t.Error("nil device should fail")
	}
	cfg := testConfig()
	cfg.Width = 0
	if _, err := NewCompositor(device, queue, cfg); err == nil {
		t.Error("zero destination width should fail")
	}
	cfg = testConfig()
	cfg.AtlasHeight = -1
	if _, err := NewCompositor(device, queue, cfg); err == nil {
		t.Error("negative atlas height should fail")
	}
}

func TestCompositor_FrameAndPoll(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewCompositor(device, queue, testConfig())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	defer c.Destroy()

	// One background quad, one glyph quad, one atlas upload.
	uploads := []AtlasUpload{{X: 0, Y: 0, Width: 12, Height: 24, Pix: make([]byte, 12*24*4)}}
	bg := VertexStream{Verts: make([]byte, 4*bgVertexStride), Indices: []uint32{0, 1, 2, 2, 3, 1}}
	fg := VertexStream{Verts: make([]byte, 4*fgVertexStride), Indices: []uint32{0, 1, 2, 2, 3, 1}}

	if err := c.Frame(uploads, bg, fg); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if c.inflight == nil {
		t.Fatal("no frame in flight after submit")
	}

	if err := c.Frame(nil, bg, fg); err != ErrFrameInFlight {
		t.Errorf("second Frame: err = %v, want ErrFrameInFlight", err)
	}

	pixels, ok, err := c.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !ok {
		t.Fatal("noop fence should signal immediately")
	}
	if want := 960 * 576 * 4; len(pixels) != want {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), want)
	}
	if c.inflight != nil {
		t.Error("frame resources not released after Poll")
	}

	// No frame in flight: Poll is a quiet no-op.
	if _, ok, err := c.Poll(); ok || err != nil {
		t.Errorf("idle Poll = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCompositor_EmptyFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewCompositor(device, queue, testConfig())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	defer c.Destroy()

	// No vertices at all: the frame still clears and reads back.
	if err := c.Frame(nil, VertexStream{}, VertexStream{}); err != nil {
		t.Fatalf("empty Frame: %v", err)
	}
	pixels, ok, err := c.Poll()
	if err != nil || !ok {
		t.Fatalf("Poll = (%v, %v)", ok, err)
	}
	if len(pixels) != 960*576*4 {
		t.Errorf("len(pixels) = %d", len(pixels))
	}
}

func TestCompositor_DestroyIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewCompositor(device, queue, testConfig())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	c.Destroy()
	c.Destroy()
}

func TestUniformData(t *testing.T) {
	c := &Compositor{cfg: testConfig()}
	data := c.uniformData()
	if len(data) != uniformSize {
		t.Fatalf("len = %d, want %d", len(data), uniformSize)
	}
	// 960 = 0x44700000 as float32 little-endian.
	if !bytes.Equal(data[0:4], []byte{0x00, 0x00, 0x70, 0x44}) {
		t.Errorf("width bytes = % x", data[0:4])
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{10, 20, 30, 255, 1, 2, 3, 4}
	dst := make([]byte, len(src))
	convertBGRAToRGBA(src, dst)
	want := []byte{30, 20, 10, 255, 3, 2, 1, 4}
	if !bytes.Equal(dst, want) {
		t.Errorf("dst = %v, want %v", dst, want)
	}
}

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct {
		width uint32
		want  uint32
	}{
		{64, 256},   // 256 bytes exactly
		{960, 3840}, // already aligned
		{100, 512},  // 400 -> 512
	}
	for _, tt := range tests {
		bpr := tt.width * 4
		got := (bpr + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		if got != tt.want {
			t.Errorf("width %d: aligned = %d, want %d", tt.width, got, tt.want)
		}
	}
}
