package ember

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPickingGenerationStaleRejection(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	e := ecs.CreateEntity("clicked")
	idx := e.Index()

	v := CreateView(800, 600)
	v.RequestPick(10, 10, 0)
	v.DispatchPick(0, 2)

	// Before read-back completes: remove e and create a new entity that
	// reuses its index (§8 scenario 6).
	ecs.RemoveEntity(e)
	newEnt := ecs.CreateEntity("new")
	assert.Equal(t, idx, newEnt.Index())
	assert.NotEqual(t, e, newEnt)

	v.ResolvePickReadback(2, v.PendingPickSeq(), idx)
	hovered := v.ConsumeHoveredEntity(ecs)

	assert.Equal(t, newEnt, hovered)
	assert.NotEqual(t, e, hovered)
}

func TestPickingReturnsNullWhenIndexNotReused(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	e := ecs.CreateEntity("clicked")
	idx := e.Index()

	v := CreateView(800, 600)
	v.RequestPick(10, 10, 0)
	v.DispatchPick(0, 2)

	ecs.RemoveEntity(e)

	v.ResolvePickReadback(2, v.PendingPickSeq(), idx)
	hovered := v.ConsumeHoveredEntity(ecs)

	assert.Equal(t, NullEntity, hovered)
}

func TestPickingResizeStraddleReturnsNoHit(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	e := ecs.CreateEntity("clicked")

	v := CreateView(800, 600)
	v.RequestPick(10, 10, 0)
	v.DispatchPick(0, 2)

	v.ResizeView(1024, 768)

	v.ResolvePickReadback(2, v.PendingPickSeq(), e.Index())
	hovered := v.ConsumeHoveredEntity(ecs)

	assert.Equal(t, NullEntity, hovered)
}

func TestPickingNewestRequestSupersedesStale(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	e1 := ecs.CreateEntity("e1")
	e2 := ecs.CreateEntity("e2")

	v := CreateView(800, 600)
	v.RequestPick(1, 1, 0)
	staleSeq := v.PendingPickSeq()
	v.DispatchPick(0, 2)

	v.RequestPick(2, 2, 1)
	v.DispatchPick(1, 2)

	v.ResolvePickReadback(2, staleSeq, e1.Index())
	assert.Equal(t, PickDispatching, v.PickingState(), "stale seq must not resolve the newer in-flight pick")

	v.ResolvePickReadback(3, v.PendingPickSeq(), e2.Index())
	assert.Equal(t, PickReady, v.PickingState())
	assert.Equal(t, e2, v.ConsumeHoveredEntity(ecs))
}

func TestGatherGizmoDebugDrawlist(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	e := ecs.CreateEntity("gizmo")
	g := NewGizmoCube(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1}, [4]float32{1, 0, 0, 1})
	AddComponent(ecs, e, g)

	v := CreateView(640, 480)
	v.Camera = Camera{Position: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, Fov: 60, Aspect: 1, Near: 0.1, Far: 100}

	GatherGizmoDebugDrawlist(ecs, v)

	assert.Len(t, v.DebugGizmo, 1)
	assert.Equal(t, g, v.DebugGizmo[0].Gizmo)
	assert.Equal(t, v.Camera.ViewProj(), v.DebugGizmo[0].MVP)
}

func TestBuildViewFrameBucketsAndBuildsDrawStreams(t *testing.T) {
	ecs := NewEcs()
	ecs.Finalize()
	scene := NewScene(ecs)

	mesh := ecs.CreateEntity("")
	AddComponent(ecs, mesh, Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	})

	near := ecs.CreateEntity("")
	AddComponent(ecs, near, Object{Mesh: mesh, WorldMin: mgl32.Vec3{-1, -1, -10}, WorldMax: mgl32.Vec3{1, 1, -5}, Flags: ObjectDeferred})
	far := ecs.CreateEntity("")
	AddComponent(ecs, far, Object{Mesh: mesh, WorldMin: mgl32.Vec3{-1, -1, -10}, WorldMax: mgl32.Vec3{1, 1, -5}, Flags: ObjectDeferred})
	offscreen := ecs.CreateEntity("")
	AddComponent(ecs, offscreen, Object{Mesh: mesh, WorldMin: mgl32.Vec3{-50, -1, -10}, WorldMax: mgl32.Vec3{-45, 1, -5}, Flags: ObjectDeferred})

	scene.AddDrawableObjects(near, far, offscreen)

	v := CreateView(800, 600)
	v.Camera = Camera{Position: mgl32.Vec3{0, 0, 0}, Direction: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, Fov: 90, Aspect: 1, Near: 1, Far: 100}

	BuildViewFrame(ecs, scene, v)

	assert.Contains(t, v.VisibleDeferred, near)
	assert.Contains(t, v.VisibleDeferred, far)
	assert.NotContains(t, v.VisibleDeferred, offscreen)
	assert.Len(t, v.DeferredDrawStream, 1)
	assert.Equal(t, mesh, v.DeferredDrawStream[0].Mesh)
	assert.ElementsMatch(t, []EntityId{near, far}, v.DeferredDrawStream[0].Instances)
}
