package culling

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAABBInFrustum(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	planes := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"inside center", AABB{mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}}, true},
		{"outside left", AABB{mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}}, false},
		{"outside right", AABB{mgl32.Vec3{15, -1, -10}, mgl32.Vec3{20, 1, -5}}, false},
		{"behind near plane", AABB{mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}}, false},
		{"intersecting left plane", AABB{mgl32.Vec3{-15, -1, -10}, mgl32.Vec3{-5, 1, -5}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AABBInFrustum(tc.box, planes))
		})
	}
}

// TestSATEquivalence is the §8 "SAT equivalence" property test: for
// randomly sampled cameras and AABBs, the fast SAT test must agree with
// the brute-force corner-projection test.
func TestSATEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		fov := mgl32.DegToRad(40 + rng.Float32()*80)
		proj := mgl32.Perspective(fov, 1.0, 0.5, 200.0)
		eye := mgl32.Vec3{rng.Float32()*10 - 5, rng.Float32()*10 - 5, rng.Float32()*10 - 5}
		view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3{0, 0, -1}), mgl32.Vec3{0, 1, 0})
		planes := ExtractFrustum(proj.Mul4(view))

		center := mgl32.Vec3{
			rng.Float32()*60 - 30,
			rng.Float32()*60 - 30,
			rng.Float32()*60 - 30,
		}
		half := mgl32.Vec3{rng.Float32()*5 + 0.1, rng.Float32()*5 + 0.1, rng.Float32()*5 + 0.1}
		box := AABB{Min: center.Sub(half), Max: center.Add(half)}

		sat := AABBInFrustum(box, planes)
		brute := BruteForceAABBInFrustum(box, planes)
		assert.Equalf(t, brute, sat, "case %d: box %+v vs planes disagree (sat=%v brute=%v)", i, box, sat, brute)
	}
}
