package ember

import (
	"math"

	"github.com/emberforge/ember/render/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialToGPU converts a CPU Material plus its resolved bindless slots
// into the wire layout; textures not yet staged resolve to slot -1 so the
// shader falls back to the material factor alone.
func MaterialToGPU(mat *Material, slots [5]int32) gpu.GPUMaterial {
	return gpu.GPUMaterial{
		Metallic:          mat.Metallic,
		Roughness:         mat.Roughness,
		BaseColor:         mat.BaseColorFactor,
		Emissive:          mat.EmissiveFactor,
		AlphaCutoff:       mat.AlphaCutoff,
		OcclusionStrength: mat.OcclusionStr,
		EmissiveStrength:  mat.EmissiveStr,
		UVSetIndices:      mat.UVSetIndices,
		BindlessTexIdx:    slots,
	}
}

// LightToGPU converts the CPU Light component's computed state into the
// wire layout, resolving its shadow-atlas slot index.
func LightToGPU(light *Light, shadowIndex int32) gpu.GPULight {
	castShadow := int32(0)
	if light.Flags&LightCastsShadow != 0 {
		castShadow = 1
	}
	return gpu.GPULight{
		Intensity:    light.Intensity,
		Range:        light.Range,
		Position:     light.Position,
		Direction:    light.Direction,
		Color:        light.Color,
		ShadowIndex:  shadowIndex,
		CastShadow:   castShadow,
		CascadeCount: int32(light.CascadeCount),
		Type:         int32(light.Type),
		InnerConeCos: float32(math.Cos(float64(light.InnerCone))),
		OuterConeCos: float32(math.Cos(float64(light.OuterCone))),
	}
}

// LightShadowDataFromLight builds the wire layout from a Light's
// CPU-computed cascade matrices and its packed atlas rect (§4.6).
func LightShadowDataFromLight(light *Light, atlasResolution int) gpu.GPULightShadowData {
	var cascadeViewProj [gpu.MaxCascades]mgl32.Mat4
	var cascadeSplits [gpu.MaxCascades]float32
	copy(cascadeViewProj[:], light.CascadeViewProj[:])
	copy(cascadeSplits[:], light.CascadeSplits[:])

	return gpu.GPULightShadowData{
		CascadeViewProj: cascadeViewProj,
		CascadeSplits:   cascadeSplits,
		Factor:          float32(light.ShadowResolution) / float32(atlasResolution),
		XOffset:         float32(light.ShadowRectX) / float32(atlasResolution),
		YOffset:         float32(light.ShadowRectY) / float32(atlasResolution),
		ShadowMapTexIdx: light.ShadowMapIndex,
	}
}

// ProbeToGPU converts a CPU EnvironmentProbe plus its bindless slots into
// the wire layout.
func ProbeToGPU(p *EnvironmentProbe, worldPos mgl32.Vec3, ggxEnv, lambertianEnv, ggxLut int32) gpu.GPUProbeData {
	parallax := int32(0)
	if p.ParallaxCorrection {
		parallax = 1
	}
	return gpu.GPUProbeData{
		Position:           worldPos,
		RangeSqr:           p.Range * p.Range,
		GGXEnv:             ggxEnv,
		LambertianEnv:      lambertianEnv,
		GGXLut:             ggxLut,
		AABBMin:            mgl32.Vec4{p.BoxMin.X(), p.BoxMin.Y(), p.BoxMin.Z(), 0},
		AABBMax:            mgl32.Vec4{p.BoxMax.X(), p.BoxMax.Y(), p.BoxMax.Z(), float32(parallax)},
		ParallaxCorrection: parallax,
	}
}
