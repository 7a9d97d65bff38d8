package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ComputeSplits computes the N cascade split depths for a camera's
// near/far range using the practical split scheme (§4.6 step 1):
// a lambda-weighted blend of the logarithmic and uniform schemes. lambda
// 0 reduces to uniform splits, lambda 1 to pure logarithmic splits.
func ComputeSplits(near, far float32, cascadeCount int, lambda float32) []float32 {
	splits := make([]float32, cascadeCount)
	clipRange := far - near
	ratio := far / near

	for i := 0; i < cascadeCount; i++ {
		p := float32(i+1) / float32(cascadeCount)
		logSplit := near * float32(math.Pow(float64(ratio), float64(p)))
		uniformSplit := near + clipRange*p
		splits[i] = lambda*logSplit + (1-lambda)*uniformSplit
	}
	return splits
}

// Cascade is one CSM cascade's shadow camera and the world-depth range it
// covers.
type Cascade struct {
	ViewProj  mgl32.Mat4
	SplitNear float32
	SplitFar  float32
}

// frustumCornersNDC are the 8 corners of a unit clip-space box at
// reverse-Z NDC depths (near=1, far=0), in the order the original
// implementation walks them (§4.6 step 2).
var frustumCornersNDC = [8]mgl32.Vec3{
	{-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}, {1, 1, 1},
	{-1, 1, 0}, {-1, -1, 0}, {1, -1, 0}, {1, 1, 0},
}

// BuildCascades produces the per-cascade view-projection matrices for a
// directional light given the camera's combined view-projection matrix
// and near/far planes (§4.6 steps 2-5). lightDir points from the light
// toward the scene.
func BuildCascades(cameraViewProj mgl32.Mat4, near, far float32, cascadeCount int, lambda float32, lightDir mgl32.Vec3) []Cascade {
	splits := ComputeSplits(near, far, cascadeCount, lambda)
	inv := cameraViewProj.Inv()

	corners := [8]mgl32.Vec3{}
	for i, c := range frustumCornersNDC {
		clip := mgl32.Vec4{c.X(), c.Y(), c.Z(), 1}
		world := inv.Mul4x1(clip)
		corners[i] = world.Vec3().Mul(1.0 / world.W())
	}

	cascades := make([]Cascade, cascadeCount)
	lastSplit := float32(0)
	for ci := 0; ci < cascadeCount; ci++ {
		splitDist := splits[ci]
		nearFrac := lastSplit / (far - near)
		farFrac := (splitDist - near) / (far - near)

		var cascadeCorners [8]mgl32.Vec3
		for i := 0; i < 4; i++ {
			nearCorner := corners[i+4]
			farCorner := corners[i]
			edge := farCorner.Sub(nearCorner)
			cascadeCorners[i] = nearCorner.Add(edge.Mul(farFrac))
			cascadeCorners[i+4] = nearCorner.Add(edge.Mul(nearFrac))
		}

		center := mgl32.Vec3{}
		for _, c := range cascadeCorners {
			center = center.Add(c)
		}
		center = center.Mul(1.0 / 8.0)

		radius := float32(0)
		for _, c := range cascadeCorners {
			d := c.Sub(center).Len()
			if d > radius {
				radius = d
			}
		}

		dir := lightDir.Normalize()
		up := mgl32.Vec3{0, 1, 0}
		if float32(math.Abs(float64(dir.Dot(up)))) > 0.999 {
			up = mgl32.Vec3{0, 0, 1}
		}
		eye := center.Sub(dir.Mul(radius + 50))
		shadowView := mgl32.LookAtV(eye, center, up)
		shadowProj := mgl32.Ortho(-radius, radius, -radius, radius, 0.01, 2*radius+50)

		cascades[ci] = Cascade{
			ViewProj:  shadowProj.Mul4(shadowView),
			SplitNear: near + lastSplit,
			SplitFar:  splitDist,
		}
		lastSplit = splitDist - near
	}
	return cascades
}
