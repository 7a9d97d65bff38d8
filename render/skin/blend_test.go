package skin

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// TestSkinPositionScenario is the §8 "Skinning correctness" scenario: a
// 2-vertex mesh with weights (1,0) and (0,1) against a skin with two
// joints, identity and translate(10,0,0).
func TestSkinPositionScenario(t *testing.T) {
	joints := []mgl32.Mat4{
		mgl32.Ident4(),
		mgl32.Translate3D(10, 0, 0),
	}

	v0 := SkinPosition(mgl32.Vec3{1, 2, 3}, [4]uint32{0, 1, 0, 0}, mgl32.Vec4{1, 0, 0, 0}, joints)
	assert.InDelta(t, 1, v0.X(), 1e-6)
	assert.InDelta(t, 2, v0.Y(), 1e-6)
	assert.InDelta(t, 3, v0.Z(), 1e-6)

	v1 := SkinPosition(mgl32.Vec3{1, 2, 3}, [4]uint32{0, 1, 0, 0}, mgl32.Vec4{0, 1, 0, 0}, joints)
	assert.InDelta(t, 11, v1.X(), 1e-6)
	assert.InDelta(t, 2, v1.Y(), 1e-6)
	assert.InDelta(t, 3, v1.Z(), 1e-6)
}
