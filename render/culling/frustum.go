// Package culling provides frustum-plane extraction and the SAT-equivalent
// AABB/frustum test the per-frame view render pass uses to build its
// visibility bitset (§4.9 of the runtime core this engine implements).
package culling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is a world-space axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// ExtractFrustum extracts the 6 planes (Left, Right, Bottom, Top, Near,
// Far) of a view-projection matrix, normalized so each plane's normal
// has unit length. Plane equation: Ax + By + Cz + D = 0, normal points
// into the frustum's interior.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4

	planes[0] = mgl32.Vec4{vp.At(3, 0) + vp.At(0, 0), vp.At(3, 1) + vp.At(0, 1), vp.At(3, 2) + vp.At(0, 2), vp.At(3, 3) + vp.At(0, 3)}
	planes[1] = mgl32.Vec4{vp.At(3, 0) - vp.At(0, 0), vp.At(3, 1) - vp.At(0, 1), vp.At(3, 2) - vp.At(0, 2), vp.At(3, 3) - vp.At(0, 3)}
	planes[2] = mgl32.Vec4{vp.At(3, 0) + vp.At(1, 0), vp.At(3, 1) + vp.At(1, 1), vp.At(3, 2) + vp.At(1, 2), vp.At(3, 3) + vp.At(1, 3)}
	planes[3] = mgl32.Vec4{vp.At(3, 0) - vp.At(1, 0), vp.At(3, 1) - vp.At(1, 1), vp.At(3, 2) - vp.At(1, 2), vp.At(3, 3) - vp.At(1, 3)}
	planes[4] = mgl32.Vec4{vp.At(3, 0) + vp.At(2, 0), vp.At(3, 1) + vp.At(2, 1), vp.At(3, 2) + vp.At(2, 2), vp.At(3, 3) + vp.At(2, 3)}
	planes[5] = mgl32.Vec4{vp.At(3, 0) - vp.At(2, 0), vp.At(3, 1) - vp.At(2, 1), vp.At(3, 2) - vp.At(2, 2), vp.At(3, 3) - vp.At(2, 3)}

	for i := range planes {
		length := float32(math.Sqrt(float64(
			planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// AABBInFrustum is the SAT-equivalent test (§8 "SAT equivalence"): for
// each plane, pick the AABB corner furthest along the plane's normal (the
// "positive vertex") and reject if even that corner is behind the plane.
func AABBInFrustum(box AABB, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		var p mgl32.Vec3
		if plane[0] > 0 {
			p[0] = box.Max[0]
		} else {
			p[0] = box.Min[0]
		}
		if plane[1] > 0 {
			p[1] = box.Max[1]
		} else {
			p[1] = box.Min[1]
		}
		if plane[2] > 0 {
			p[2] = box.Max[2]
		} else {
			p[2] = box.Min[2]
		}

		dist := plane[0]*p[0] + plane[1]*p[1] + plane[2]*p[2] + plane[3]
		if dist < 0 {
			return false
		}
	}
	return true
}

// BruteForceAABBInFrustum projects all 8 AABB corners and tests each
// against every plane; used only to cross-check AABBInFrustum in tests
// (§8's SAT-equivalence property), since it is O(8*6) instead of the
// early-exit SAT form above.
func BruteForceAABBInFrustum(box AABB, planes [6]mgl32.Vec4) bool {
	corners := [8]mgl32.Vec3{
		{box.Min.X(), box.Min.Y(), box.Min.Z()},
		{box.Max.X(), box.Min.Y(), box.Min.Z()},
		{box.Min.X(), box.Max.Y(), box.Min.Z()},
		{box.Max.X(), box.Max.Y(), box.Min.Z()},
		{box.Min.X(), box.Min.Y(), box.Max.Z()},
		{box.Max.X(), box.Min.Y(), box.Max.Z()},
		{box.Min.X(), box.Max.Y(), box.Max.Z()},
		{box.Max.X(), box.Max.Y(), box.Max.Z()},
	}

	for _, plane := range planes {
		allOutside := true
		for _, c := range corners {
			dist := plane[0]*c.X() + plane[1]*c.Y() + plane[2]*c.Z() + plane[3]
			if dist >= 0 {
				allOutside = false
				break
			}
		}
		if allOutside {
			return false
		}
	}
	return true
}
