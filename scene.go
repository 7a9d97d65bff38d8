package ember

import (
	"github.com/emberforge/ember/render/bvh"
	"github.com/go-gl/mathgl/mgl32"
)

// Drawable is one entry in the scene's finalized draw stream: a run of
// consecutive staged entities sharing a Mesh, instanced together (§4.4).
type Drawable struct {
	Mesh           EntityId
	IndexOffset    uint32
	IndexCount     uint32
	VertexOffset   uint32
	DataOffset     uint32
	InstanceOffset uint32
	InstanceCount  uint32
}

// MeshRange is a unique mesh's cached offsets into the scene's global
// index/position/packed-data buffers, resolved once per mesh by
// unstageMeshOnce and reused by every Drawable and per-view draw stream
// that references it (§4.4, §4.9 step 3's "vertex_offset, material_offset").
type MeshRange struct {
	IndexOffset, IndexCount uint32
	VertexOffset            uint32
	DataOffset              uint32
}

// Scene owns the staged entity list, the unstaged global GPU-bound
// buffers, the material and bindless texture tables, the BVH built over
// staged objects' world AABBs, and the list of views rendering it (§4.4,
// §3 "a BVH built over object AABBs" / "a list of views").
type Scene struct {
	ecs *Ecs

	staged []EntityId

	Drawables []Drawable

	IndexBuffer      []uint32
	PositionBuffer   []mgl32.Vec3
	DataBuffer       []mgl32.Vec4 // packed Normal/Tangent/UV.../Color0, stride per mesh's StreamMask.PackedStride()
	SkinVertexBuffer []SkinVertex

	meshRanges map[EntityId]MeshRange

	materialSlots     map[EntityId]int32
	freeMaterialSlots []int32
	MaterialBuffer    []EntityId // index = slot, value = owning material entity

	Bindless2D   *bindlessTable
	BindlessCube *bindlessTable

	BVHNodes []bvh.Node

	// Views is the scene's list of render targets (§3 Scene ownership
	// item (h)); each View owns its own GPU-sized textures and per-frame
	// visibility/picking state.
	Views []*View
}

// SkinVertex is one pre-skin vertex contributed by a skinned mesh to the
// scene's separate skin_vertex_data_buffer (§4.4).
type SkinVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
	Joints   [4]uint32
	Weights  mgl32.Vec4
}

func NewScene(ecs *Ecs) *Scene {
	return &Scene{
		ecs:           ecs,
		meshRanges:    make(map[EntityId]MeshRange),
		materialSlots: make(map[EntityId]int32),
		Bindless2D:    newBindlessTable(bindless2DSlots),
		BindlessCube:  newBindlessTable(bindlessCubeSlots),
	}
}

// AddDrawableObjects appends entities to the staging list (§4.4). Staging
// order is preserved until FinalizeScene groups same-mesh runs.
func (s *Scene) AddDrawableObjects(entities ...EntityId) {
	s.staged = append(s.staged, entities...)
}

// groupByMesh orders staged entities so runs sharing the same Mesh entity
// become contiguous, via a bubble sort keyed on the mesh's entity index
// — the original implementation's chosen sort (§4.4). Runs end up in
// ascending mesh-index order; since bubble sort is stable, instances of
// the same mesh keep their staging order within a run.
func (s *Scene) groupByMesh(entities []EntityId) []EntityId {
	out := make([]EntityId, len(entities))
	copy(out, entities)

	meshOf := func(e EntityId) uint32 {
		obj, ok := GetComponent[Object](s.ecs, e)
		if !ok {
			return 0
		}
		return obj.Mesh.Index()
	}

	for i := 0; i < len(out); i++ {
		for j := 0; j < len(out)-1-i; j++ {
			if meshOf(out[j]) > meshOf(out[j+1]) {
				out[j], out[j+1] = out[j+1], out[j]
			}
		}
	}
	return out
}

// FinalizeScene unstages the grouped entity list: each unique Mesh's
// index/position/packed-attribute streams are appended to the scene's
// global buffers once, consecutive same-mesh entities become one
// instanced Drawable, and a BVH is built over the resulting objects'
// world AABBs (§4.4).
func (s *Scene) FinalizeScene() {
	grouped := s.groupByMesh(s.staged)

	var items []bvh.Item
	var cur Drawable
	var curMesh EntityId
	haveCur := false
	var instanceCursor uint32

	flush := func() {
		if haveCur {
			s.Drawables = append(s.Drawables, cur)
		}
	}

	for _, e := range grouped {
		obj, ok := GetComponent[Object](s.ecs, e)
		if !ok {
			continue
		}

		items = append(items, bvh.Item{
			Min:   obj.WorldMin,
			Max:   obj.WorldMax,
			Index: len(items),
		})

		if !haveCur || obj.Mesh != curMesh {
			flush()
			rng := s.unstageMeshOnce(obj.Mesh)
			cur = Drawable{
				Mesh:           obj.Mesh,
				IndexOffset:    rng.IndexOffset,
				IndexCount:     rng.IndexCount,
				VertexOffset:   rng.VertexOffset,
				DataOffset:     rng.DataOffset,
				InstanceOffset: instanceCursor,
				InstanceCount:  0,
			}
			curMesh = obj.Mesh
			haveCur = true
		}
		cur.InstanceCount++
		instanceCursor++
	}
	flush()

	builder := &bvh.Builder{}
	s.BVHNodes = builder.Build(items)
}

// MeshRange returns mesh's cached buffer ranges, resolving it (via
// unstageMeshOnce) if it hasn't been staged into the scene's global
// buffers yet. Used by the per-view draw stream builder to resolve a
// visible object's geometry without re-deriving it (§4.9 step 3).
func (s *Scene) MeshRange(mesh EntityId) MeshRange {
	return s.unstageMeshOnce(mesh)
}

// unstageMeshOnce appends a mesh's geometry to the global buffers the
// first time it's seen, returning its (now cached) buffer ranges.
func (s *Scene) unstageMeshOnce(meshEntity EntityId) MeshRange {
	if rng, ok := s.meshRanges[meshEntity]; ok {
		return rng
	}

	mesh, ok := GetComponent[Mesh](s.ecs, meshEntity)
	if !ok {
		rng := MeshRange{}
		s.meshRanges[meshEntity] = rng
		return rng
	}

	rng := MeshRange{
		IndexOffset:  uint32(len(s.IndexBuffer)),
		IndexCount:   uint32(len(mesh.Indices)),
		VertexOffset: uint32(len(s.PositionBuffer)),
		DataOffset:   uint32(len(s.DataBuffer)),
	}

	s.IndexBuffer = append(s.IndexBuffer, mesh.Indices...)
	s.PositionBuffer = append(s.PositionBuffer, mesh.Positions...)
	s.DataBuffer = append(s.DataBuffer, packVertexData(mesh)...)

	if mesh.StreamMask&(StreamJoints01|StreamWeights01) != 0 {
		s.SkinVertexBuffer = append(s.SkinVertexBuffer, buildSkinVertices(mesh)...)
	}

	s.meshRanges[meshEntity] = rng
	return rng
}

// packVertexData writes the §4.4 packed per-vertex attribute layout: one
// vec4 per present stream, in fixed order Normal, Tangent, UV0+1, UV2+3,
// UV4+5, UV6+7, Color0.
func packVertexData(mesh *Mesh) []mgl32.Vec4 {
	n := len(mesh.Positions)
	stride := mesh.StreamMask.PackedStride()
	out := make([]mgl32.Vec4, n*stride)

	for v := 0; v < n; v++ {
		col := 0
		put := func(val mgl32.Vec4) {
			out[v*stride+col] = val
			col++
		}
		if mesh.StreamMask&StreamNormal != 0 {
			nv := vecAt(mesh.Normals, v)
			put(mgl32.Vec4{nv.X(), nv.Y(), nv.Z(), 0})
		}
		if mesh.StreamMask&StreamTangent != 0 {
			put(vec4At(mesh.Tangents, v))
		}
		if mesh.StreamMask&StreamUV01 != 0 {
			uv0 := uvAt(mesh.UV[0], v)
			uv1 := uvAt(mesh.UV[1], v)
			put(mgl32.Vec4{uv0.X(), uv0.Y(), uv1.X(), uv1.Y()})
		}
		if mesh.StreamMask&StreamUV23 != 0 {
			uv2 := uvAt(mesh.UV[2], v)
			uv3 := uvAt(mesh.UV[3], v)
			put(mgl32.Vec4{uv2.X(), uv2.Y(), uv3.X(), uv3.Y()})
		}
		if mesh.StreamMask&StreamUV45 != 0 {
			uv4 := uvAt(mesh.UV[4], v)
			uv5 := uvAt(mesh.UV[5], v)
			put(mgl32.Vec4{uv4.X(), uv4.Y(), uv5.X(), uv5.Y()})
		}
		if mesh.StreamMask&StreamUV67 != 0 {
			uv6 := uvAt(mesh.UV[6], v)
			uv7 := uvAt(mesh.UV[7], v)
			put(mgl32.Vec4{uv6.X(), uv6.Y(), uv7.X(), uv7.Y()})
		}
		if mesh.StreamMask&StreamColor0 != 0 {
			put(vec4At(mesh.Colors0, v))
		}
	}
	return out
}

func buildSkinVertices(mesh *Mesh) []SkinVertex {
	n := len(mesh.Positions)
	out := make([]SkinVertex, n)
	for v := 0; v < n; v++ {
		joints := [4]uint32{}
		if v < len(mesh.Joints0) {
			joints[0], joints[1] = mesh.Joints0[v][0], mesh.Joints0[v][1]
		}
		if v < len(mesh.Joints1) {
			joints[2], joints[3] = mesh.Joints1[v][0], mesh.Joints1[v][1]
		}
		out[v] = SkinVertex{
			Position: mesh.Positions[v],
			Normal:   vecAt(mesh.Normals, v),
			Tangent:  vec4At(mesh.Tangents, v),
			Joints:   joints,
			Weights:  vec4At(mesh.Weights0, v),
		}
	}
	return out
}

func vecAt(s []mgl32.Vec3, i int) mgl32.Vec3 {
	if i < len(s) {
		return s[i]
	}
	return mgl32.Vec3{}
}

func vec4At(s []mgl32.Vec4, i int) mgl32.Vec4 {
	if i < len(s) {
		return s[i]
	}
	return mgl32.Vec4{}
}

func uvAt(s []mgl32.Vec2, i int) mgl32.Vec2 {
	if i < len(s) {
		return s[i]
	}
	return mgl32.Vec2{}
}

// MaterialSlot returns materialEntity's slot in MaterialBuffer, assigning
// a free slot (free-list first, then append) the first time it's seen
// (§4.4 "Material table"). The §8 "Hash-map round-trip" invariant is
// exactly this: materialSlots.get(e) == its index in MaterialBuffer.
func (s *Scene) MaterialSlot(materialEntity EntityId) int32 {
	if slot, ok := s.materialSlots[materialEntity]; ok {
		return slot
	}

	var slot int32
	if n := len(s.freeMaterialSlots); n > 0 {
		slot = s.freeMaterialSlots[n-1]
		s.freeMaterialSlots = s.freeMaterialSlots[:n-1]
		s.MaterialBuffer[slot] = materialEntity
	} else {
		slot = int32(len(s.MaterialBuffer))
		s.MaterialBuffer = append(s.MaterialBuffer, materialEntity)
	}

	s.materialSlots[materialEntity] = slot
	return slot
}

// ReleaseMaterialSlot frees materialEntity's slot for reuse by a future
// MaterialSlot call.
func (s *Scene) ReleaseMaterialSlot(materialEntity EntityId) {
	slot, ok := s.materialSlots[materialEntity]
	if !ok {
		return
	}
	delete(s.materialSlots, materialEntity)
	s.freeMaterialSlots = append(s.freeMaterialSlots, slot)
}

// TextureSlot resolves (or assigns) a texture's bindless slot, picking
// the 2D or cube table per isCube (§4.4 "Bindless texture table").
func (s *Scene) TextureSlot(h TextureHandle, isCube bool) (int32, error) {
	if isCube {
		return s.BindlessCube.Acquire(h)
	}
	return s.Bindless2D.Acquire(h)
}
