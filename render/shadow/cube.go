package shadow

import "github.com/go-gl/mathgl/mgl32"

// CubeFace is one of a point light's or probe's six cube faces, in the
// fixed order +X, -X, +Y, -Y, +Z, -Z.
type CubeFace int

const (
	FacePosX CubeFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

var cubeFaceDirections = [6]mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

var cubeFaceUps = [6]mgl32.Vec3{
	{0, -1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
	{0, -1, 0}, {0, -1, 0},
}

// CubeFaceView builds the view-projection matrix for one cube face of an
// omnidirectional light or probe camera positioned at center (§4.7, §4.8):
// FOV pi/2, aspect 1, looking down the face's axis.
func CubeFaceView(center mgl32.Vec3, near, far float32, face CubeFace) mgl32.Mat4 {
	view := mgl32.LookAtV(center, center.Add(cubeFaceDirections[face]), cubeFaceUps[face])
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, near, far)
	return proj.Mul4(view)
}

// PointLightFaces returns the six face view-projections for a point
// light's omni shadow, near = radius, far = range per §4.7.
func PointLightFaces(center mgl32.Vec3, radius, rangeVal float32) [6]mgl32.Mat4 {
	var out [6]mgl32.Mat4
	for f := CubeFace(0); f < 6; f++ {
		out[f] = CubeFaceView(center, radius, rangeVal, f)
	}
	return out
}

// FaceAtlasOffset returns the pixel offset of cube face f within a 2x3
// grid of resolution x resolution tiles, a 2*resolution wide by
// 3*resolution tall rectangle (§4.5, §4.7).
func FaceAtlasOffset(resolution int, f CubeFace) (x, y int) {
	col := int(f) % 2
	row := int(f) / 2
	return col * resolution, row * resolution
}
