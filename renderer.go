package termgpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/termgpu/internal/gpu"
)

// AtlasUpload is one pending sub-rectangle write into the atlas
// texture. Pix holds Width*Height*4 RGBA8 bytes.
type AtlasUpload struct {
	X, Y          int
	Width, Height int
	Pix           []byte
}

// VertexStream is one packed vertex buffer plus its index buffer, in
// the layouts produced by Flush.
type VertexStream struct {
	Verts   []byte
	Indices []uint32
}

// Renderer composites a flushed frame. [NewRenderer] builds one over a
// gogpu/wgpu HAL device; hosts with their own presentation path can
// implement the interface instead.
type Renderer interface {
	// Frame uploads the pending atlas rects and draws the frame: the
	// background stream with blending disabled, then the foreground
	// stream sampling the atlas with premultiplied alpha.
	Frame(uploads []AtlasUpload, bg, fg VertexStream) error

	// Poll returns the finished frame's RGBA8 pixels once the GPU has
	// signaled completion. It never blocks: ok is false while the frame
	// is still in flight, and the caller retries on the next tick.
	Poll() (pixels []byte, ok bool, err error)

	// Destroy releases all GPU resources. The renderer is unusable
	// afterwards.
	Destroy()
}

// RendererConfig sizes the GPU resources backing a renderer.
type RendererConfig struct {
	// Width and Height are the destination texture dimensions in
	// pixels, normally Backend.PixelSize.
	Width, Height int

	// AtlasWidth and AtlasHeight must match the backend's atlas
	// configuration.
	AtlasWidth, AtlasHeight int

	// CellWidth and CellHeight are the cell dimensions in pixels,
	// normally Backend.CellSize. The glyph shader derives cell-local
	// coordinates from them for underline placement.
	CellWidth, CellHeight int

	// ClearColor fills the destination before the background pass,
	// normally the reset background.
	ClearColor [4]float64
}

// NewRenderer builds the wgpu-backed renderer over an open HAL device
// and its queue. Construction errors are fatal: any partially created
// resource is released before returning.
func NewRenderer(device hal.Device, queue hal.Queue, cfg RendererConfig) (Renderer, error) {
	c, err := gpu.NewCompositor(device, queue, gpu.Config{
		Width:       cfg.Width,
		Height:      cfg.Height,
		AtlasWidth:  cfg.AtlasWidth,
		AtlasHeight: cfg.AtlasHeight,
		CellWidth:   cfg.CellWidth,
		CellHeight:  cfg.CellHeight,
		ClearColor:  cfg.ClearColor,
		Logger:      Logger(),
	})
	if err != nil {
		return nil, err
	}
	return &wgpuRenderer{c: c}, nil
}

// wgpuRenderer adapts the internal compositor to the Renderer
// interface.
type wgpuRenderer struct {
	c *gpu.Compositor
}

func (r *wgpuRenderer) Frame(uploads []AtlasUpload, bg, fg VertexStream) error {
	ups := make([]gpu.AtlasUpload, len(uploads))
	for i, u := range uploads {
		ups[i] = gpu.AtlasUpload(u)
	}
	return r.c.Frame(ups, gpu.VertexStream(bg), gpu.VertexStream(fg))
}

func (r *wgpuRenderer) Poll() (pixels []byte, ok bool, err error) {
	return r.c.Poll()
}

func (r *wgpuRenderer) Destroy() {
	r.c.Destroy()
}
