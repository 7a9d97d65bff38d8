// Package skin describes the GPU skinning compute dispatch (§4.10). The
// CPU-side joint-matrix computation lives in the core ECS's
// SkinUpdateSystem; this package covers only the compute pass that
// consumes those matrices to skin vertex positions and normals/tangents
// in place.
package skin

// Offsets locates a skinned mesh's slots within the scene's global
// buffers for one dispatch.
type Offsets struct {
	SourceDataOffset uint32
	DestDataOffset   uint32
	DestVertexOffset uint32
}

// Dispatch is one skinning compute invocation: one dispatch per skinned
// mesh, vertex_count work items (§4.10).
type Dispatch struct {
	VertexCount uint32
	Offsets     Offsets
	JointCount  uint32
}

// WorkgroupCount returns the number of workgroups to dispatch for a given
// vertex count at the skinning shader's fixed workgroup size.
const WorkgroupSize = 64

func (d Dispatch) WorkgroupCount() uint32 {
	return (d.VertexCount + WorkgroupSize - 1) / WorkgroupSize
}

// JointTextureLayout describes the joint-matrix texture a skin's
// computed JointMatrices upload into each frame: RowsPerJoint (4) RGBA32F
// texel rows per joint, one matrix row per texel row, so Height is
// JointCount*4.
type JointTextureLayout struct {
	JointCount int
	RowsPerJoint int
}

func NewJointTextureLayout(jointCount int) JointTextureLayout {
	return JointTextureLayout{JointCount: jointCount, RowsPerJoint: 4}
}

func (l JointTextureLayout) Height() int {
	return l.JointCount * l.RowsPerJoint
}
