package ember

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMaterialToGPURoundTrip(t *testing.T) {
	mat := &Material{
		BaseColorFactor: mgl32.Vec4{1, 0, 0, 1},
		Metallic:        0.5,
		Roughness:       0.25,
	}
	gm := MaterialToGPU(mat, [5]int32{0, -1, -1, -1, -1})
	assert.Equal(t, float32(0.5), gm.Metallic)
	assert.Equal(t, int32(0), gm.BindlessTexIdx[0])
	assert.Len(t, gm.ToBytes(), 96)
}

func TestLightToGPUShadowFlag(t *testing.T) {
	light := &Light{
		Type:  LightPoint,
		Flags: LightCastsShadow,
		Range: 10,
	}
	gl := LightToGPU(light, 3)
	assert.Equal(t, int32(1), gl.CastShadow)
	assert.Equal(t, int32(3), gl.ShadowIndex)
	assert.Equal(t, int32(LightPoint), gl.Type)
}

func TestLightShadowDataFromLightScalesByAtlas(t *testing.T) {
	light := &Light{ShadowResolution: 1024, ShadowRectX: 512, ShadowRectY: 0}
	data := LightShadowDataFromLight(light, 2048)
	assert.InDelta(t, 0.5, data.Factor, 1e-6)
	assert.InDelta(t, 0.25, data.XOffset, 1e-6)
}

func TestProbeToGPUPacksParallaxIntoAABBMaxW(t *testing.T) {
	probe := &EnvironmentProbe{Range: 4, ParallaxCorrection: true}
	gp := ProbeToGPU(probe, mgl32.Vec3{1, 2, 3}, 0, 1, 2)
	assert.Equal(t, float32(16), gp.RangeSqr)
	assert.Equal(t, float32(1), gp.AABBMax.W())
}
