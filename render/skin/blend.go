package skin

import "github.com/go-gl/mathgl/mgl32"

// SkinPosition linearly blends a vertex position across up to 4 joints,
// the reference math the skinning compute shader implements on the GPU
// (§4.10): position' = sum(weight_i * jointMatrix[joint_i] * position).
func SkinPosition(pos mgl32.Vec3, joints [4]uint32, weights mgl32.Vec4, jointMatrices []mgl32.Mat4) mgl32.Vec3 {
	var out mgl32.Vec3
	local := mgl32.Vec4{pos.X(), pos.Y(), pos.Z(), 1}
	for i := 0; i < 4; i++ {
		w := weights[i]
		if w == 0 {
			continue
		}
		skinned := jointMatrices[joints[i]].Mul4x1(local)
		out = out.Add(skinned.Vec3().Mul(w))
	}
	return out
}
