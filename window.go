package ember

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/emberforge/ember/render/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowModule is the host's entry point onto real hardware (§6
// "Application entry points" / "Graphics backend interface"): it opens an
// OS window and configures a WebGPU device and swapchain against its
// surface, then registers the systems that pump that surface every frame.
// It mirrors the teacher's ClientModule almost exactly — window creation,
// adapter/device request, surface configuration — generalized to publish
// a gpu.Backend resource instead of driving a fixed mesh/material query.
type WindowModule struct {
	Width, Height int
	Title         string
}

// WindowState is the resource systems read window geometry from and poll
// for close requests on.
type WindowState struct {
	win     *glfw.Window
	Width   int
	Height  int
	Title   string
	Resized bool
}

func (w *WindowState) ShouldClose() bool { return w.win.ShouldClose() }

func (mod WindowModule) Install(app *App, cmd *Commands) {
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(mod.Width, mod.Height, mod.Title, nil, nil)
	if err != nil {
		panic(err)
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "ember device"})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(mod.Width),
		Height:      uint32(mod.Height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	backend := &windowBackend{
		instance:       instance,
		surface:        surface,
		adapter:        adapter,
		device:         device,
		queue:          queue,
		surfaceConfig:  surfaceConfig,
		framesInFlight: 2,
		pendingDeletes: make(map[uint64][]any),
	}

	app.UseSystem(
		System(pollWindowEventsSystem).
			InStage(Prelude).
			RunAlways(),
	)
	app.UseSystem(
		System(resizeWindowSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(presentWindowSystem).
			InStage(PostRender).
			RunAlways(),
	)

	state := &WindowState{win: win, Width: mod.Width, Height: mod.Height, Title: mod.Title}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		state.Width, state.Height = width, height
		state.Resized = true
	})
	cmd.AddResources(state, backend)
}

func pollWindowEventsSystem(state *WindowState) {
	if !state.ShouldClose() {
		glfw.PollEvents()
	}
}

// resizeWindowSystem reconfigures the swapchain when the window's
// framebuffer size changed since last frame (§6 app_resize).
func resizeWindowSystem(state *WindowState, backend *windowBackend) {
	if !state.Resized {
		return
	}
	backend.Resize(uint32(state.Width), uint32(state.Height))
	state.Resized = false
}

func presentWindowSystem(backend *windowBackend) {
	if err := backend.Present(); err != nil {
		panic(err)
	}
}

// windowBackend implements render/gpu.Backend (§6 "Graphics backend
// interface") over the device and swapchain WindowModule configured.
// Resource deletion is deferred by frame index the way the teacher's
// voxelrt GPU manager deferred buffer destruction past in-flight frames,
// generalized here to any resource with a Release method (releaseDue).
type windowBackend struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig wgpu.SurfaceConfiguration

	frameIndex     uint64
	framesInFlight uint32
	timelineValue  uint64
	pendingDeletes map[uint64][]any

	currentTexture *wgpu.Texture
	currentView    *wgpu.TextureView
}

var _ gpu.Backend = (*windowBackend)(nil)

func (b *windowBackend) Device() *wgpu.Device { return b.device }
func (b *windowBackend) Queue() *wgpu.Queue   { return b.queue }

func (b *windowBackend) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	return b.device.CreateBuffer(desc)
}

func (b *windowBackend) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	return b.device.CreateTexture(desc)
}

func (b *windowBackend) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return b.device.CreateBindGroup(desc)
}

func (b *windowBackend) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return b.device.CreateRenderPipeline(desc)
}

func (b *windowBackend) CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error) {
	return b.device.CreateComputePipeline(desc)
}

// QueueForDeletion defers resource destruction until FrameIndex reaches
// the frame this call was made on plus FramesInFlight, releasing it from
// BeginFrame's per-frame sweep rather than destroying it while it may still
// be read by a frame in flight.
func (b *windowBackend) QueueForDeletion(resource any) {
	dueAt := b.frameIndex + uint64(b.framesInFlight)
	b.pendingDeletes[dueAt] = append(b.pendingDeletes[dueAt], resource)
}

func (b *windowBackend) releaseDue() {
	due, ok := b.pendingDeletes[b.frameIndex]
	if !ok {
		return
	}
	for _, r := range due {
		if releasable, ok := r.(interface{ Release() }); ok {
			releasable.Release()
		}
	}
	delete(b.pendingDeletes, b.frameIndex)
}

func (b *windowBackend) CommandEncoder() (*wgpu.CommandEncoder, error) {
	return b.device.CreateCommandEncoder(nil)
}

func (b *windowBackend) Submit(buffers []*wgpu.CommandBuffer) {
	b.queue.Submit(buffers...)
	b.timelineValue++
}

func (b *windowBackend) TimelineSignal(buf *wgpu.CommandBuffer) uint64 {
	return b.timelineValue + 1
}

// TimelineWait blocks until Submit has advanced the timeline to value.
// The real backend would poll the device/fence; this stub spins on the
// CPU-tracked counter, matching the single-threaded Step loop that calls
// it mid-frame rather than from a worker goroutine.
func (b *windowBackend) TimelineWait(value uint64) {
	for b.timelineValue < value {
		b.device.Poll(true, nil)
	}
}

func (b *windowBackend) FrameIndex() uint64     { return b.frameIndex }
func (b *windowBackend) FramesInFlight() uint32 { return b.framesInFlight }

func (b *windowBackend) BeginFrame() (*wgpu.TextureView, error) {
	b.releaseDue()

	tex, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("ember: acquire swapchain texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("ember: create swapchain view: %w", err)
	}
	b.currentTexture = tex
	b.currentView = view
	return view, nil
}

func (b *windowBackend) Present() error {
	if b.currentView != nil {
		b.currentView.Release()
		b.currentView = nil
	}
	if err := b.surface.Present(); err != nil {
		return err
	}
	b.frameIndex++
	return nil
}

func (b *windowBackend) Resize(width, height uint32) {
	b.surfaceConfig.Width = width
	b.surfaceConfig.Height = height
	b.surface.Configure(b.adapter, b.device, &b.surfaceConfig)
}
