package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPointLightFacesDistinct(t *testing.T) {
	faces := PointLightFaces(mgl32.Vec3{0, 0, 0}, 0.1, 10)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			assert.NotEqual(t, faces[i], faces[j])
		}
	}
}

func TestFaceAtlasOffsetFillsTwoByThree(t *testing.T) {
	seen := map[[2]int]bool{}
	for f := CubeFace(0); f < 6; f++ {
		x, y := FaceAtlasOffset(512, f)
		seen[[2]int{x, y}] = true
		assert.Less(t, x, 1024)
		assert.Less(t, y, 1536)
	}
	assert.Len(t, seen, 6)
}
