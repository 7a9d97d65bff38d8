package ember

import (
	"github.com/emberforge/ember/render/gpu"
	"github.com/emberforge/ember/render/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a view's eye: the fields the teacher's CameraComponent
// carried, resolved into the matrices BindGroup0 ships to the shader.
type Camera struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Up        mgl32.Vec3
	Fov       float32
	Aspect    float32
	Near      float32
	Far       float32
}

func (c Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Direction), c.Up)
}

func (c Camera) ProjMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c Camera) ViewProj() mgl32.Mat4 {
	return c.ProjMatrix().Mul4(c.ViewMatrix())
}

// PickState is the §4.11 view picking state machine: idle -> request ->
// dispatching -> ready (for as many frames as are in flight) -> consumed.
type PickState int

const (
	PickIdle PickState = iota
	PickRequested
	PickDispatching
	PickReady
	PickConsumed
)

// pickRequest tracks one in-flight pick: the queried pixel, the request's
// sequence number (so a newer request discards a stale in-flight one per
// §5's "newest request wins"), the frame it was issued and the frame its
// read-back becomes valid, and the viewport size at request time (so a
// resize straddling the read-back is detected and the pick discarded,
// §4.12).
type pickRequest struct {
	seq            uint64
	x, y           int
	width, height  int
	requestedFrame uint64
	readyFrame     uint64
	rawIndex       uint32
}

// DebugDrawItem is one entry in a view's debug drawlist: a gizmo plus the
// MVP it was submitted with (§4.9 step 6, "Debug drawlists (world,
// selection) submitted with MVP").
type DebugDrawItem struct {
	Gizmo GizmoComponent
	MVP   mgl32.Mat4
}

// View is a rendering target: framebuffer-sized G-buffer textures, JFA
// mask textures for selection outline, a pick texture, the per-view
// camera uniform, visible-drawable index lists, and three debug
// drawlists (§3 View).
type View struct {
	Width, Height int
	Camera        Camera

	GBufferDepth  TextureHandle
	HDROutput     TextureHandle
	GBufferAlbedo TextureHandle
	GBufferNormal TextureHandle
	GBufferAOMR   TextureHandle
	JFAPing       TextureHandle
	JFAPong       TextureHandle
	PickTexture   TextureHandle

	CameraUniform gpu.BindGroup0

	VisibleDeferred []EntityId
	VisibleForward  []EntityId
	VisibleProbe    []EntityId

	DeferredDrawStream graph.DrawStream[EntityId]
	ForwardDrawStream  graph.DrawStream[EntityId]

	DebugWorld     []DebugDrawItem
	DebugGizmo     []DebugDrawItem
	DebugSelection []DebugDrawItem

	pickSeq   uint64
	pick      pickRequest
	pickState PickState
}

// CreateView allocates a view's GPU-sized textures at width x height
// (§3 "View GPU resources are (re)created on create_view / resize_view").
func CreateView(width, height int) *View {
	return &View{
		Width:         width,
		Height:        height,
		GBufferDepth:  NewTextureHandle(),
		HDROutput:     NewTextureHandle(),
		GBufferAlbedo: NewTextureHandle(),
		GBufferNormal: NewTextureHandle(),
		GBufferAOMR:   NewTextureHandle(),
		JFAPing:       NewTextureHandle(),
		JFAPong:       NewTextureHandle(),
		PickTexture:   NewTextureHandle(),
	}
}

// ResizeView reallocates v's GPU-sized textures for a new framebuffer
// size; any in-flight pick becomes stale (§4.12 "a view read-back for
// picking that straddles resize returns no hit").
func (v *View) ResizeView(width, height int) {
	v.Width, v.Height = width, height
	v.GBufferDepth = NewTextureHandle()
	v.HDROutput = NewTextureHandle()
	v.GBufferAlbedo = NewTextureHandle()
	v.GBufferNormal = NewTextureHandle()
	v.GBufferAOMR = NewTextureHandle()
	v.JFAPing = NewTextureHandle()
	v.JFAPong = NewTextureHandle()
	v.PickTexture = NewTextureHandle()
}

// CleanupView releases v's GPU resources (§3 "destroyed on cleanup_view").
// Texture handles are reference-counted GPU resources elsewhere in the
// stack; here it simply drops v's references to them.
func (v *View) CleanupView() {
	*v = View{Width: v.Width, Height: v.Height}
}

// RequestPick queues a pick at viewport pixel (x, y), superseding any
// request still in flight (§5 "newest request wins, stale results
// discarded by frame-index check").
func (v *View) RequestPick(x, y int, frame uint64) {
	v.pickSeq++
	v.pick = pickRequest{
		seq:            v.pickSeq,
		x:              x,
		y:              y,
		width:          v.Width,
		height:         v.Height,
		requestedFrame: frame,
	}
	v.pickState = PickRequested
}

// DispatchPick transitions a requested pick into dispatching, recording
// the frame its read-back becomes valid (§4.9 step 7: "read back N
// frames later").
func (v *View) DispatchPick(currentFrame uint64, framesInFlight uint64) {
	if v.pickState != PickRequested {
		return
	}
	v.pick.readyFrame = currentFrame + framesInFlight
	v.pickState = PickDispatching
}

// ResolvePickReadback supplies the raw id-image pixel value read back
// this frame and advances dispatching -> ready once its target frame has
// arrived. rawIndex is whatever the GPU pick texture returned; seq lets a
// stale in-flight read-back (superseded by a newer RequestPick before it
// completed) be discarded.
func (v *View) ResolvePickReadback(currentFrame uint64, seq uint64, rawIndex uint32) {
	if v.pickState != PickDispatching || seq != v.pick.seq {
		return
	}
	if currentFrame < v.pick.readyFrame {
		return
	}
	v.pick.rawIndex = rawIndex
	v.pickState = PickReady
}

// PickingState reports the view's current picking state.
func (v *View) PickingState() PickState { return v.pickState }

// PendingPickSeq is the sequence number of the in-flight pick request,
// for callers driving ResolvePickReadback from an async GPU read-back.
func (v *View) PendingPickSeq() uint64 { return v.pick.seq }

// ConsumeHoveredEntity resolves the ready pick's raw index into a live
// handle and marks the pick consumed. It returns NullEntity if no pick is
// ready, or if the viewport was resized between the request and the
// read-back (§4.12). The returned handle always carries the *current*
// generation at that index — whatever entity (if any) now occupies the
// slot the original click landed on, never a stale one (§8 scenario 6).
func (v *View) ConsumeHoveredEntity(ecs *Ecs) EntityId {
	if v.pickState != PickReady {
		return NullEntity
	}
	v.pickState = PickConsumed
	if v.pick.width != v.Width || v.pick.height != v.Height {
		return NullEntity
	}
	return ecs.CurrentEntityAt(v.pick.rawIndex)
}

// GatherGizmoDebugDrawlist collects every entity with a GizmoComponent
// into v's gizmo debug drawlist, submitted with the view's MVP (§3 View's
// "three debug drawlists (world, gizmo, selection)"; §4.9 step 6).
func GatherGizmoDebugDrawlist(ecs *Ecs, v *View) {
	v.DebugGizmo = v.DebugGizmo[:0]
	mvp := v.Camera.ViewProj()
	gizmos, _ := GetComponents[GizmoComponent](ecs)
	for _, g := range gizmos {
		v.DebugGizmo = append(v.DebugGizmo, DebugDrawItem{Gizmo: g, MVP: mvp})
	}
}

// BuildViewFrame runs the §4.9 per-frame view rendering pipeline's
// CPU-side steps for v against scene: frustum cull and bucket the staged
// entities (steps 1-2), build the deferred and forward subpasses' draw
// streams (steps 3 and 5), and refresh the gizmo debug drawlist (step 6).
// GPU submission of the resulting streams (G-buffer fill, lighting,
// forward, post-process) is the backend's concern; this function
// produces exactly what that submission would consume.
func BuildViewFrame(ecs *Ecs, scene *Scene, v *View) {
	objectInfo := func(e EntityId) (graph.ObjectInfo, bool) {
		obj, ok := GetComponent[Object](ecs, e)
		if !ok {
			return graph.ObjectInfo{}, false
		}
		return graph.ObjectInfo{
			Min:      obj.WorldMin,
			Max:      obj.WorldMax,
			Deferred: obj.Flags&ObjectDeferred != 0,
			Forward:  obj.Flags&ObjectForward != 0,
			Probe:    obj.Flags&ObjectVisibleToProbes != 0,
		}, true
	}
	cull := graph.Cull(scene.staged, objectInfo, v.Camera.ViewProj())
	v.VisibleDeferred = cull.Deferred
	v.VisibleForward = cull.Forward
	v.VisibleProbe = cull.Probe

	meshOf := func(e EntityId) (EntityId, bool) {
		obj, ok := GetComponent[Object](ecs, e)
		if !ok {
			return NullEntity, false
		}
		return obj.Mesh, true
	}
	meshRangeOf := func(mesh EntityId) graph.MeshRange {
		rng := scene.MeshRange(mesh)
		return graph.MeshRange{
			IndexOffset:  rng.IndexOffset,
			IndexCount:   rng.IndexCount,
			VertexOffset: rng.VertexOffset,
			DataOffset:   rng.DataOffset,
		}
	}
	v.DeferredDrawStream = graph.BuildDrawStream(cull.Deferred, meshOf, meshRangeOf)
	v.ForwardDrawStream = graph.BuildDrawStream(cull.Forward, meshOf, meshRangeOf)

	GatherGizmoDebugDrawlist(ecs, v)
}
