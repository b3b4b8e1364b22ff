// Package gpu composites flushed cell-grid frames on a gogpu/wgpu HAL
// device: a background pass of solid quads with blending disabled, then
// a foreground pass of glyph quads sampling the atlas texture with
// premultiplied alpha, finishing with an async readback of the
// destination texture.
package gpu

import (
	"context"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/cell_bg.wgsl
var bgShaderSource string

//go:embed shaders/cell_fg.wgsl
var fgShaderSource string

// Vertex strides must match the streams packed by the backend.
const (
	bgVertexStride = 12
	fgVertexStride = 28

	uniformSize = 16 // vec4f: framebuffer size + cell size
)

// ErrFrameInFlight reports a Frame call while the previous frame's
// readback is still pending.
var ErrFrameInFlight = errors.New("gpu: previous frame still in flight")

// AtlasUpload is one pending sub-rectangle write into the atlas
// texture.
type AtlasUpload struct {
	X, Y          int
	Width, Height int
	Pix           []byte
}

// VertexStream is one packed vertex buffer plus its index buffer.
type VertexStream struct {
	Verts   []byte
	Indices []uint32
}

// Config sizes the compositor's GPU resources.
type Config struct {
	Width, Height           int
	AtlasWidth, AtlasHeight int
	CellWidth, CellHeight   int
	ClearColor              [4]float64
	Logger                  *slog.Logger
}

// Compositor owns the long-lived GPU resources of the cell renderer:
// the atlas texture, destination texture, both render pipelines, and
// the viewport uniform. Per-frame resources (vertex buffers, staging
// buffer, fence) live in the in-flight frame and are released by Poll.
type Compositor struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config
	log    *slog.Logger

	bgShader hal.ShaderModule
	fgShader hal.ShaderModule

	bgLayout       hal.BindGroupLayout
	fgLayout       hal.BindGroupLayout
	bgPipeLayout   hal.PipelineLayout
	fgPipeLayout   hal.PipelineLayout
	bgPipeline     hal.RenderPipeline
	fgPipeline     hal.RenderPipeline
	sampler        hal.Sampler
	atlasTex       hal.Texture
	atlasView      hal.TextureView
	destTex        hal.Texture
	destView       hal.TextureView
	uniformBuf     hal.Buffer
	bgBindGroup    hal.BindGroup
	fgBindGroup    hal.BindGroup

	inflight *inflightFrame
}

// NewCompositor creates all long-lived resources. Any error is fatal:
// partially created resources are released in reverse order before
// returning.
func NewCompositor(device hal.Device, queue hal.Queue, cfg Config) (*Compositor, error) {
	if device == nil || queue == nil {
		return nil, errors.New("gpu: nil device or queue")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("gpu: invalid destination size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.AtlasWidth <= 0 || cfg.AtlasHeight <= 0 {
		return nil, fmt.Errorf("gpu: invalid atlas size %dx%d", cfg.AtlasWidth, cfg.AtlasHeight)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(discardHandler{})
	}

	c := &Compositor{device: device, queue: queue, cfg: cfg, log: log}
	if err := c.createResources(); err != nil {
		c.Destroy()
		return nil, err
	}
	log.Info("compositor created",
		"dest", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"atlas", fmt.Sprintf("%dx%d", cfg.AtlasWidth, cfg.AtlasHeight))
	return c, nil
}

func (c *Compositor) createResources() error {
	var err error

	c.bgShader, err = c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "cell_bg_shader",
		Source: hal.ShaderSource{WGSL: bgShaderSource},
	})
	if err != nil {
		return fmt.Errorf("create bg shader: %w", err)
	}
	c.fgShader, err = c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "cell_fg_shader",
		Source: hal.ShaderSource{WGSL: fgShaderSource},
	})
	if err != nil {
		return fmt.Errorf("create fg shader: %w", err)
	}

	// Background layout: viewport uniform only.
	c.bgLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_bg_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bg bind group layout: %w", err)
	}

	// Foreground layout: uniform + atlas texture + sampler.
	c.fgLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "cell_fg_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create fg bind group layout: %w", err)
	}

	c.bgPipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "cell_bg_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bgLayout},
	})
	if err != nil {
		return fmt.Errorf("create bg pipeline layout: %w", err)
	}
	c.fgPipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "cell_fg_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.fgLayout},
	})
	if err != nil {
		return fmt.Errorf("create fg pipeline layout: %w", err)
	}

	// Nearest filtering: glyph slots are rendered at exact cell size, so
	// any filtering would only bleed neighboring slots in.
	c.sampler, err = c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "cell_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	if err = c.createPipelines(); err != nil {
		return err
	}
	if err = c.createTextures(); err != nil {
		return err
	}
	return c.createBindings()
}

func (c *Compositor) createPipelines() error {
	bgBuffers := []gputypes.VertexBufferLayout{{
		ArrayStride: bgVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUint32, Offset: 8, ShaderLocation: 1},
		},
	}}
	fgBuffers := []gputypes.VertexBufferLayout{{
		ArrayStride: fgVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 2},
			{Format: gputypes.VertexFormatUint32, Offset: 20, ShaderLocation: 3},
			{Format: gputypes.VertexFormatUint32, Offset: 24, ShaderLocation: 4},
		},
	}}

	var err error
	// Backgrounds are opaque: no blend state means replace.
	c.bgPipeline, err = c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cell_bg_pipeline",
		Layout: c.bgPipeLayout,
		Vertex: hal.VertexState{
			Module:     c.bgShader,
			EntryPoint: "vs_main",
			Buffers:    bgBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     c.bgShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatBGRA8Unorm,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create bg pipeline: %w", err)
	}

	premul := gputypes.BlendStatePremultiplied()
	c.fgPipeline, err = c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "cell_fg_pipeline",
		Layout: c.fgPipeLayout,
		Vertex: hal.VertexState{
			Module:     c.fgShader,
			EntryPoint: "vs_main",
			Buffers:    fgBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     c.fgShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatBGRA8Unorm,
				Blend:     &premul,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create fg pipeline: %w", err)
	}
	return nil
}

func (c *Compositor) createTextures() error {
	var err error

	c.atlasTex, err = c.device.CreateTexture(&hal.TextureDescriptor{
		Label: "cell_atlas",
		Size: hal.Extent3D{
			Width:              uint32(c.cfg.AtlasWidth),
			Height:             uint32(c.cfg.AtlasHeight),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	c.atlasView, err = c.device.CreateTextureView(c.atlasTex, &hal.TextureViewDescriptor{
		Label:         "cell_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create atlas view: %w", err)
	}

	c.destTex, err = c.device.CreateTexture(&hal.TextureDescriptor{
		Label: "cell_dest",
		Size: hal.Extent3D{
			Width:              uint32(c.cfg.Width),
			Height:             uint32(c.cfg.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create destination texture: %w", err)
	}
	c.destView, err = c.device.CreateTextureView(c.destTex, &hal.TextureViewDescriptor{
		Label:         "cell_dest_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create destination view: %w", err)
	}
	return nil
}

func (c *Compositor) createBindings() error {
	var err error

	c.uniformBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "cell_viewport_uniform",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	c.queue.WriteBuffer(c.uniformBuf, 0, c.uniformData())

	c.bgBindGroup, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "cell_bg_bind",
		Layout: c.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: c.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bg bind group: %w", err)
	}

	c.fgBindGroup, err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "cell_fg_bind",
		Layout: c.fgLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: c.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: c.atlasView.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: c.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create fg bind group: %w", err)
	}
	return nil
}

// uniformData packs the viewport uniform: framebuffer size and cell
// size, as four little-endian float32s.
func (c *Compositor) uniformData() []byte {
	data := make([]byte, uniformSize)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(float32(c.cfg.Width)))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(float32(c.cfg.Height)))
	binary.LittleEndian.PutUint32(data[8:], math.Float32bits(float32(c.cfg.CellWidth)))
	binary.LittleEndian.PutUint32(data[12:], math.Float32bits(float32(c.cfg.CellHeight)))
	return data
}

// uploadAtlas writes pending glyph rects into the atlas texture. The
// writes land before the submitted frame because queue writes order
// ahead of command buffer execution.
func (c *Compositor) uploadAtlas(uploads []AtlasUpload) {
	for _, u := range uploads {
		if u.Width <= 0 || u.Height <= 0 || len(u.Pix) < u.Width*u.Height*4 {
			continue
		}
		c.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  c.atlasTex,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: uint32(u.X), Y: uint32(u.Y), Z: 0},
				Aspect:   gputypes.TextureAspectAll,
			},
			u.Pix,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(u.Width * 4),
				RowsPerImage: uint32(u.Height),
			},
			&hal.Extent3D{
				Width:              uint32(u.Width),
				Height:             uint32(u.Height),
				DepthOrArrayLayers: 1,
			},
		)
	}
}

// Destroy releases all long-lived resources and any in-flight frame.
// Safe to call on a partially constructed compositor.
func (c *Compositor) Destroy() {
	if c.inflight != nil {
		c.inflight.destroy(c.device)
		c.inflight = nil
	}
	if c.fgBindGroup != nil {
		c.device.DestroyBindGroup(c.fgBindGroup)
		c.fgBindGroup = nil
	}
	if c.bgBindGroup != nil {
		c.device.DestroyBindGroup(c.bgBindGroup)
		c.bgBindGroup = nil
	}
	if c.uniformBuf != nil {
		c.device.DestroyBuffer(c.uniformBuf)
		c.uniformBuf = nil
	}
	if c.destView != nil {
		c.device.DestroyTextureView(c.destView)
		c.destView = nil
	}
	if c.destTex != nil {
		c.device.DestroyTexture(c.destTex)
		c.destTex = nil
	}
	if c.atlasView != nil {
		c.device.DestroyTextureView(c.atlasView)
		c.atlasView = nil
	}
	if c.atlasTex != nil {
		c.device.DestroyTexture(c.atlasTex)
		c.atlasTex = nil
	}
	if c.fgPipeline != nil {
		c.device.DestroyRenderPipeline(c.fgPipeline)
		c.fgPipeline = nil
	}
	if c.bgPipeline != nil {
		c.device.DestroyRenderPipeline(c.bgPipeline)
		c.bgPipeline = nil
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.fgPipeLayout != nil {
		c.device.DestroyPipelineLayout(c.fgPipeLayout)
		c.fgPipeLayout = nil
	}
	if c.bgPipeLayout != nil {
		c.device.DestroyPipelineLayout(c.bgPipeLayout)
		c.bgPipeLayout = nil
	}
	if c.fgLayout != nil {
		c.device.DestroyBindGroupLayout(c.fgLayout)
		c.fgLayout = nil
	}
	if c.bgLayout != nil {
		c.device.DestroyBindGroupLayout(c.bgLayout)
		c.bgLayout = nil
	}
	if c.fgShader != nil {
		c.device.DestroyShaderModule(c.fgShader)
		c.fgShader = nil
	}
	if c.bgShader != nil {
		c.device.DestroyShaderModule(c.bgShader)
		c.bgShader = nil
	}
}

// discardHandler silences logging when no logger is injected.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
