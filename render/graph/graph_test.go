package graph_test

import (
	"testing"

	"github.com/emberforge/ember"
	"github.com/emberforge/ember/render/graph"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testViewProj() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

func newMeshAndObject(ecs *ember.Ecs, min, max mgl32.Vec3, flags ember.ObjectFlags) ember.EntityId {
	mesh := ecs.CreateEntity("")
	ember.AddComponent(ecs, mesh, ember.Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	})
	e := ecs.CreateEntity("")
	ember.AddComponent(ecs, e, ember.Object{Mesh: mesh, WorldMin: min, WorldMax: max, Flags: flags})
	return e
}

func objectInfoLookup(ecs *ember.Ecs) func(ember.EntityId) (graph.ObjectInfo, bool) {
	return func(e ember.EntityId) (graph.ObjectInfo, bool) {
		obj, ok := ember.GetComponent[ember.Object](ecs, e)
		if !ok {
			return graph.ObjectInfo{}, false
		}
		return graph.ObjectInfo{
			Min:      obj.WorldMin,
			Max:      obj.WorldMax,
			Deferred: obj.Flags&ember.ObjectDeferred != 0,
			Forward:  obj.Flags&ember.ObjectForward != 0,
			Probe:    obj.Flags&ember.ObjectVisibleToProbes != 0,
		}, true
	}
}

func TestCullBucketsByObjectFlags(t *testing.T) {
	ecs := ember.NewEcs()
	ecs.Finalize()

	visible := newMeshAndObject(ecs, mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}, ember.ObjectDeferred|ember.ObjectVisibleToProbes)
	forward := newMeshAndObject(ecs, mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}, ember.ObjectForward)
	offscreen := newMeshAndObject(ecs, mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}, ember.ObjectDeferred)

	res := graph.Cull(
		[]ember.EntityId{visible, forward, offscreen},
		objectInfoLookup(ecs),
		testViewProj(),
	)

	assert.Contains(t, res.Deferred, visible)
	assert.Contains(t, res.Probe, visible)
	assert.Contains(t, res.Forward, forward)
	assert.NotContains(t, res.Deferred, offscreen)
	assert.NotContains(t, res.Forward, offscreen)
}

func TestBuildDrawStreamGroupsInstancesByMesh(t *testing.T) {
	ecs := ember.NewEcs()
	ecs.Finalize()

	meshA := ecs.CreateEntity("")
	meshB := ecs.CreateEntity("")
	ranges := map[ember.EntityId]graph.MeshRange{
		meshA: {IndexOffset: 0, IndexCount: 3},
		meshB: {IndexOffset: 3, IndexCount: 6},
	}
	meshOf := func(e ember.EntityId) (ember.EntityId, bool) {
		obj, ok := ember.GetComponent[ember.Object](ecs, e)
		if !ok {
			return ember.NullEntity, false
		}
		return obj.Mesh, true
	}
	meshRange := func(mesh ember.EntityId) graph.MeshRange { return ranges[mesh] }

	a1 := ecs.CreateEntity("")
	ember.AddComponent(ecs, a1, ember.Object{Mesh: meshA})
	b1 := ecs.CreateEntity("")
	ember.AddComponent(ecs, b1, ember.Object{Mesh: meshB})
	a2 := ecs.CreateEntity("")
	ember.AddComponent(ecs, a2, ember.Object{Mesh: meshA})

	stream := graph.BuildDrawStream([]ember.EntityId{a1, b1, a2}, meshOf, meshRange)

	assert.Len(t, stream, 2)
	assert.Equal(t, meshA, stream[0].Mesh)
	assert.Equal(t, []ember.EntityId{a1, a2}, stream[0].Instances)
	assert.Equal(t, meshB, stream[1].Mesh)
	assert.Equal(t, []ember.EntityId{b1}, stream[1].Instances)
}

func TestJFAPassCount(t *testing.T) {
	assert.Equal(t, 0, graph.JFAPassCount(1, 1))
	assert.Equal(t, 10, graph.JFAPassCount(1024, 720))
	assert.Equal(t, 11, graph.JFAPassCount(1920, 1080))
}
