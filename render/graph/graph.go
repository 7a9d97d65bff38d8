// Package graph builds the per-view CPU-side render graph: visibility
// culling and bucketing, and the per-subpass draw streams the runtime's
// per-frame view rendering pass (§4.9) submits against the scene's global
// buffers. It stays independent of the ECS/domain package (mirroring
// render/culling and render/gpu) — callers supply lookup closures over
// whatever id type they use for entities.
package graph

import (
	"github.com/emberforge/ember/render/culling"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectInfo is the per-candidate input Cull needs: its world AABB and
// which render-pass buckets its flags opt it into (§4.9 steps 1-2).
type ObjectInfo struct {
	Min, Max                 mgl32.Vec3
	Deferred, Forward, Probe bool
}

// CullResult buckets the ids that survived frustum culling by the pass
// they participate in.
type CullResult[E comparable] struct {
	Deferred []E
	Forward  []E
	Probe    []E
}

// Cull runs the SAT frustum test (render/culling) against every
// candidate's world AABB and buckets survivors per lookup's flags. The
// original pipeline dispatches this per-object test across worker
// threads; done here sequentially since CPU fan-out is the job system's
// concern, not the graph builder's. lookup returning false skips an id
// (a dangling reference never panics, §4.12).
func Cull[E comparable](ids []E, lookup func(E) (ObjectInfo, bool), viewProj mgl32.Mat4) CullResult[E] {
	planes := culling.ExtractFrustum(viewProj)

	var res CullResult[E]
	for _, id := range ids {
		info, ok := lookup(id)
		if !ok {
			continue
		}
		box := culling.AABB{Min: info.Min, Max: info.Max}
		if !culling.AABBInFrustum(box, planes) {
			continue
		}
		if info.Deferred {
			res.Deferred = append(res.Deferred, id)
		}
		if info.Forward {
			res.Forward = append(res.Forward, id)
		}
		if info.Probe {
			res.Probe = append(res.Probe, id)
		}
	}
	return res
}

// MeshRange is a mesh's cached offsets into the scene's global
// index/position/packed-data buffers.
type MeshRange struct {
	IndexOffset, IndexCount uint32
	VertexOffset            uint32
	DataOffset              uint32
}

// DrawCommand is one emitted draw for a view's subpass: a mesh's buffer
// ranges plus the ordered list of visible instances using it this frame
// (§4.9 step 3's "instance_offset, instance_count" contract, rebuilt per
// view instead of once per scene since each view culls a different
// subset).
type DrawCommand[E comparable] struct {
	Mesh         E
	IndexOffset  uint32
	IndexCount   uint32
	VertexOffset uint32
	DataOffset   uint32
	Instances    []E
}

// DrawStream is the ordered set of draws a subpass submits.
type DrawStream[E comparable] []DrawCommand[E]

// BuildDrawStream groups visible ids into per-mesh runs, preserving each
// mesh's first-seen order and the staging order of its instances within
// that run (§5 "drawable iteration is in staging order"). meshOf
// resolves an id to its owning mesh id (false to skip it); meshRange
// resolves a mesh id to its cached buffer ranges.
func BuildDrawStream[E comparable](visible []E, meshOf func(E) (E, bool), meshRange func(E) MeshRange) DrawStream[E] {
	index := make(map[E]int)
	var stream DrawStream[E]

	for _, id := range visible {
		mesh, ok := meshOf(id)
		if !ok {
			continue
		}
		if i, seen := index[mesh]; seen {
			stream[i].Instances = append(stream[i].Instances, id)
			continue
		}
		rng := meshRange(mesh)
		index[mesh] = len(stream)
		stream = append(stream, DrawCommand[E]{
			Mesh:         mesh,
			IndexOffset:  rng.IndexOffset,
			IndexCount:   rng.IndexCount,
			VertexOffset: rng.VertexOffset,
			DataOffset:   rng.DataOffset,
			Instances:    []E{id},
		})
	}
	return stream
}
