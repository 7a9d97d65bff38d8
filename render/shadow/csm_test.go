package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSplitsMonotonic is the §8 "cascade split monotonicity" property:
// 0 < splits[0] < splits[1] < ... < splits[N-1], with the last split
// equal to far.
func TestSplitsMonotonic(t *testing.T) {
	splits := ComputeSplits(0.1, 100, 4, 0.5)
	require.Len(t, splits, 4)

	assert.Greater(t, splits[0], float32(0))
	for i := 1; i < len(splits); i++ {
		assert.Greater(t, splits[i], splits[i-1])
	}
	assert.InDelta(t, 100, splits[len(splits)-1], 0.01)
}

func TestSplitsLambdaExtremes(t *testing.T) {
	uniform := ComputeSplits(0.1, 100, 4, 0)
	log := ComputeSplits(0.1, 100, 4, 1)

	// the uniform scheme advances by equal world-depth increments, the
	// log scheme's increments grow each cascade.
	assert.InDelta(t, uniform[1]-uniform[0], uniform[2]-uniform[1], 0.01)
	assert.Greater(t, log[1]-log[0], log[0])
	assert.Greater(t, log[3]-log[2], log[2]-log[1])
}

// TestBuildCascadesContainsFrustumCorners is the §8 "Directional CSM for a
// known camera" scenario: camera at the origin looking down -Z, a
// directional light along (0,-1,0), 4 cascades at lambda=0.5. Each
// cascade's view-projection must map its own sub-frustum corners inside
// the [-1,1] NDC box (within floating-point slack).
func TestBuildCascadesContainsFrustumCorners(t *testing.T) {
	near, far := float32(0.1), float32(100.0)
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, near, far)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	vp := proj.Mul4(view)

	cascades := BuildCascades(vp, near, far, 4, 0.5, mgl32.Vec3{0, -1, 0})
	require.Len(t, cascades, 4)

	invVP := vp.Inv()
	lastSplit := float32(0)
	for _, c := range cascades {
		nearFrac := lastSplit / (far - near)
		farFrac := (c.SplitFar - near) / (far - near)

		for i := 0; i < 4; i++ {
			nearNDC := frustumCornersNDC[i+4]
			farNDC := frustumCornersNDC[i]

			nearWorld := unprojectLerp(invVP, nearNDC, farNDC, nearFrac)
			farWorld := unprojectLerp(invVP, nearNDC, farNDC, farFrac)

			assertInsideClip(t, c.ViewProj, nearWorld)
			assertInsideClip(t, c.ViewProj, farWorld)
		}
		lastSplit = c.SplitFar - near
	}
}

func unprojectLerp(invVP mgl32.Mat4, nearNDC, farNDC mgl32.Vec3, frac float32) mgl32.Vec3 {
	nearClip := invVP.Mul4x1(mgl32.Vec4{nearNDC.X(), nearNDC.Y(), nearNDC.Z(), 1})
	farClip := invVP.Mul4x1(mgl32.Vec4{farNDC.X(), farNDC.Y(), farNDC.Z(), 1})
	nearWorld := nearClip.Vec3().Mul(1.0 / nearClip.W())
	farWorld := farClip.Vec3().Mul(1.0 / farClip.W())
	return nearWorld.Add(farWorld.Sub(nearWorld).Mul(frac))
}

func assertInsideClip(t *testing.T, vp mgl32.Mat4, world mgl32.Vec3) {
	t.Helper()
	clip := vp.Mul4x1(mgl32.Vec4{world.X(), world.Y(), world.Z(), 1})
	const slack = 1e-2
	assert.LessOrEqual(t, clip.X()/clip.W(), float32(1+slack))
	assert.GreaterOrEqual(t, clip.X()/clip.W(), float32(-1-slack))
	assert.LessOrEqual(t, clip.Y()/clip.W(), float32(1+slack))
	assert.GreaterOrEqual(t, clip.Y()/clip.W(), float32(-1-slack))
}
