package gpu

import "github.com/cogentcore/webgpu/wgpu"

// Backend is the graphics-device surface the renderer drives every frame
// (§6 "Graphics backend interface"): device/queue lifetime, resource
// creation and deferred deletion, command encoding, and swapchain
// presentation. A concrete backend wraps a wgpu.Device the way
// voxelrt/rt/gpu's manager wraps one for the voxel renderer; this
// interface generalizes that surface so the renderer core depends on a
// contract instead of a concrete device.
type Backend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
	CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error)
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)
	CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error)

	// QueueForDeletion defers destruction of a resource until the GPU
	// has finished every frame that may still reference it (the current
	// frame index plus FramesInFlight).
	QueueForDeletion(resource any)

	CommandEncoder() (*wgpu.CommandEncoder, error)
	Submit(buffers []*wgpu.CommandBuffer)

	// TimelineSignal returns the next monotonically increasing value the
	// backend will signal after the given command buffer completes
	// (§5's ordering guarantee: skin-upload -> skinning -> shadow ->
	// probe-faces -> view -> JFA -> post all serialize on the GPU via
	// these values rather than CPU waits).
	TimelineSignal(buf *wgpu.CommandBuffer) uint64
	TimelineWait(value uint64)

	FrameIndex() uint64
	FramesInFlight() uint32

	BeginFrame() (*wgpu.TextureView, error)
	Present() error
	Resize(width, height uint32)
}

// DynamicAllocator hands out per-frame dynamic-uniform blocks from a pool
// reset at the start of each frame (§5 "thread-local pool reset at frame
// start"); a block is written once by the CPU and read by the GPU until
// its frame's timeline value is reached.
type DynamicAllocator interface {
	Reset()
	Allocate(size uint32) (offset uint32, data []byte)
}
