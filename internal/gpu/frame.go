package gpu

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the WebGPU (and DX12) row alignment required
// for texture-to-buffer copies.
const copyPitchAlignment = 256

// inflightFrame holds the per-frame resources that must outlive the
// submit: vertex and index buffers, the readback staging buffer, the
// command buffer, and the fence. Poll releases them once the GPU
// signals.
type inflightFrame struct {
	fence   hal.Fence
	cmdBuf  hal.CommandBuffer
	staging hal.Buffer
	buffers []hal.Buffer

	alignedBytesPerRow uint32
	width, height      uint32
}

func (f *inflightFrame) destroy(device hal.Device) {
	for _, b := range f.buffers {
		device.DestroyBuffer(b)
	}
	f.buffers = nil
	if f.staging != nil {
		device.DestroyBuffer(f.staging)
		f.staging = nil
	}
	if f.cmdBuf != nil {
		device.FreeCommandBuffer(f.cmdBuf)
		f.cmdBuf = nil
	}
	if f.fence != nil {
		device.DestroyFence(f.fence)
		f.fence = nil
	}
}

// Frame uploads pending atlas rects and submits one composited frame:
// a clearing background pass, then a foreground pass sampling the
// atlas. The submit is asynchronous; Poll retrieves the pixels.
func (c *Compositor) Frame(uploads []AtlasUpload, bg, fg VertexStream) error {
	if c.inflight != nil {
		return ErrFrameInFlight
	}

	c.uploadAtlas(uploads)

	frame := &inflightFrame{
		width:  uint32(c.cfg.Width),
		height: uint32(c.cfg.Height),
	}
	fail := func(err error) error {
		frame.destroy(c.device)
		return err
	}

	bgVerts, bgIdx, err := c.uploadStream(frame, "cell_bg", bg)
	if err != nil {
		return fail(err)
	}
	fgVerts, fgIdx, err := c.uploadStream(frame, "cell_fg", fg)
	if err != nil {
		return fail(err)
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "cell_frame_encoder",
	})
	if err != nil {
		return fail(fmt.Errorf("create command encoder: %w", err))
	}
	if err := encoder.BeginEncoding("cell_frame"); err != nil {
		return fail(fmt.Errorf("begin encoding: %w", err))
	}

	// Pass 1: clear to the reset background and draw cell backgrounds.
	clear := c.cfg.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "cell_bg_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       c.destView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
		}},
	})
	if bgVerts != nil && len(bg.Indices) > 0 {
		rp.SetPipeline(c.bgPipeline)
		rp.SetBindGroup(0, c.bgBindGroup, nil)
		rp.SetVertexBuffer(0, bgVerts, 0)
		rp.SetIndexBuffer(bgIdx, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(uint32(len(bg.Indices)), 1, 0, 0, 0)
	}
	rp.End()

	// Pass 2: glyphs over the painted backgrounds. Skipped entirely when
	// no glyph is visible.
	if fgVerts != nil && len(fg.Indices) > 0 {
		rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "cell_fg_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    c.destView,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		rp.SetPipeline(c.fgPipeline)
		rp.SetBindGroup(0, c.fgBindGroup, nil)
		rp.SetVertexBuffer(0, fgVerts, 0)
		rp.SetIndexBuffer(fgIdx, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(uint32(len(fg.Indices)), 1, 0, 0, 0)
		rp.End()
	}

	if err := c.encodeReadback(encoder, frame); err != nil {
		encoder.DiscardEncoding()
		return fail(err)
	}

	frame.cmdBuf, err = encoder.EndEncoding()
	if err != nil {
		return fail(fmt.Errorf("end encoding: %w", err))
	}

	frame.fence, err = c.device.CreateFence()
	if err != nil {
		return fail(fmt.Errorf("create fence: %w", err))
	}
	if err := c.queue.Submit([]hal.CommandBuffer{frame.cmdBuf}, frame.fence, 1); err != nil {
		return fail(fmt.Errorf("submit: %w", err))
	}

	c.inflight = frame
	c.log.Debug("frame submitted",
		"bgIndices", len(bg.Indices),
		"fgIndices", len(fg.Indices),
		"atlasUploads", len(uploads))
	return nil
}

// uploadStream creates and fills the vertex and index buffers for one
// stream, registering them with the frame for deferred release. Empty
// streams return nil buffers.
func (c *Compositor) uploadStream(frame *inflightFrame, label string, s VertexStream) (verts, idx hal.Buffer, err error) {
	if len(s.Verts) == 0 || len(s.Indices) == 0 {
		return nil, nil, nil
	}

	verts, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_verts",
		Size:  uint64(len(s.Verts)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s vertex buffer: %w", label, err)
	}
	frame.buffers = append(frame.buffers, verts)
	c.queue.WriteBuffer(verts, 0, s.Verts)

	idxData := make([]byte, len(s.Indices)*4)
	for i, v := range s.Indices {
		binary.LittleEndian.PutUint32(idxData[i*4:], v)
	}
	idx, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_indices",
		Size:  uint64(len(idxData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s index buffer: %w", label, err)
	}
	frame.buffers = append(frame.buffers, idx)
	c.queue.WriteBuffer(idx, 0, idxData)
	return verts, idx, nil
}

// encodeReadback copies the destination texture into a fresh staging
// buffer, with the barriers DX12 and Vulkan require around the copy.
func (c *Compositor) encodeReadback(encoder hal.CommandEncoder, frame *inflightFrame) error {
	bytesPerRow := frame.width * 4
	frame.alignedBytesPerRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(frame.alignedBytesPerRow) * uint64(frame.height)

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "cell_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	frame.staging = staging

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.destTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(c.destTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  frame.alignedBytesPerRow,
			RowsPerImage: frame.height,
		},
		TextureBase: hal.ImageCopyTexture{Texture: c.destTex, MipLevel: 0},
		Size: hal.Extent3D{
			Width:              frame.width,
			Height:             frame.height,
			DepthOrArrayLayers: 1,
		},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.destTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return nil
}

// Poll checks the in-flight frame without blocking. Once the fence has
// signaled it reads the staging buffer, strips row padding, converts
// BGRA to RGBA, releases the frame resources, and returns the pixels.
func (c *Compositor) Poll() (pixels []byte, ok bool, err error) {
	frame := c.inflight
	if frame == nil {
		return nil, false, nil
	}

	signaled, err := c.device.Wait(frame.fence, 1, 0)
	if err != nil {
		frame.destroy(c.device)
		c.inflight = nil
		return nil, false, fmt.Errorf("wait for GPU: %w", err)
	}
	if !signaled {
		return nil, false, nil
	}

	stagingSize := uint64(frame.alignedBytesPerRow) * uint64(frame.height)
	readback := make([]byte, stagingSize)
	if err := c.queue.ReadBuffer(frame.staging, 0, readback); err != nil {
		frame.destroy(c.device)
		c.inflight = nil
		return nil, false, fmt.Errorf("readback: %w", err)
	}

	bytesPerRow := frame.width * 4
	pixels = make([]byte, uint64(bytesPerRow)*uint64(frame.height))
	for row := uint32(0); row < frame.height; row++ {
		src := readback[uint64(row)*uint64(frame.alignedBytesPerRow):]
		dst := pixels[uint64(row)*uint64(bytesPerRow):]
		convertBGRAToRGBA(src[:bytesPerRow], dst[:bytesPerRow])
	}

	frame.destroy(c.device)
	c.inflight = nil
	return pixels, true, nil
}

// WaitFrame blocks until the in-flight frame completes or the timeout
// expires, then polls it. Convenience for hosts without a render loop.
func (c *Compositor) WaitFrame(timeout time.Duration) ([]byte, error) {
	frame := c.inflight
	if frame == nil {
		return nil, nil
	}
	signaled, err := c.device.Wait(frame.fence, 1, timeout)
	if err != nil {
		frame.destroy(c.device)
		c.inflight = nil
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !signaled {
		return nil, fmt.Errorf("wait for GPU: timeout after %s", timeout)
	}
	pixels, _, err := c.Poll()
	return pixels, err
}

// convertBGRAToRGBA swaps the red and blue channels.
func convertBGRAToRGBA(src, dst []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = src[i+3]
	}
}
