// Package gpu defines the bit-exact CPU-side mirrors of the uniform and
// storage-buffer layouts a compatible shader set expects (§6 "Persistent
// GPU layouts"), plus the Backend interface the renderer drives them
// through.
package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxCascades mirrors ember.MaxCascades — this package stays independent
// of the ECS/domain package so a renderer can depend on the wire layout
// without pulling in component types; ember's conversion helpers
// (MaterialToGPU and friends, in gpu_bridge.go) keep the two in sync.
const MaxCascades = 4

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
}

func putI32(buf []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
}

func putVec3(buf []byte, off int, v mgl32.Vec3) {
	putF32(buf, off, v.X())
	putF32(buf, off+4, v.Y())
	putF32(buf, off+8, v.Z())
}

func putVec4(buf []byte, off int, v mgl32.Vec4) {
	putF32(buf, off, v.X())
	putF32(buf, off+4, v.Y())
	putF32(buf, off+8, v.Z())
	putF32(buf, off+12, v.W())
}

func putMat4(buf []byte, off int, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		putF32(buf, off+i*4, m[i])
	}
}

// GPUMaterial mirrors GPUMaterial's 5-wide uv-set/bindless-index arrays;
// field order matches the WGSL struct exactly (§6).
type GPUMaterial struct {
	Metallic          float32
	Roughness         float32
	BaseColor         mgl32.Vec4
	Emissive          mgl32.Vec3
	AlphaCutoff       float32
	OcclusionStrength float32
	EmissiveStrength  float32
	UVSetIndices      [5]int32
	BindlessTexIdx    [5]int32
}

const GPUMaterialSize = 4 + 4 + 16 + 12 + 4 + 4 + 4 + 5*4 + 5*4 + 8 // padded to 16-byte multiple below

func (m *GPUMaterial) ToBytes() []byte {
	buf := make([]byte, 96)
	putF32(buf, 0, m.Metallic)
	putF32(buf, 4, m.Roughness)
	putVec4(buf, 8, m.BaseColor)
	putVec3(buf, 24, m.Emissive)
	putF32(buf, 36, m.AlphaCutoff)
	putF32(buf, 40, m.OcclusionStrength)
	putF32(buf, 44, m.EmissiveStrength)
	for i, v := range m.UVSetIndices {
		putI32(buf, 48+i*4, v)
	}
	for i, v := range m.BindlessTexIdx {
		putI32(buf, 68+i*4, v)
	}
	return buf
}

// GPULight mirrors GPULight (§6).
type GPULight struct {
	Intensity     float32
	Range         float32
	Position      mgl32.Vec3
	Direction     mgl32.Vec3
	Color         mgl32.Vec3
	ShadowIndex   int32
	CastShadow    int32
	CascadeCount  int32
	Type          int32
	InnerConeCos  float32
	OuterConeCos  float32
}

func (l *GPULight) ToBytes() []byte {
	buf := make([]byte, 80)
	putF32(buf, 0, l.Intensity)
	putF32(buf, 4, l.Range)
	putVec3(buf, 8, l.Position)
	putVec3(buf, 20, l.Direction)
	putVec3(buf, 32, l.Color)
	putI32(buf, 44, l.ShadowIndex)
	putI32(buf, 48, l.CastShadow)
	putI32(buf, 52, l.CascadeCount)
	putI32(buf, 56, l.Type)
	putF32(buf, 60, l.InnerConeCos)
	putF32(buf, 64, l.OuterConeCos)
	return buf
}

// GPULightShadowData mirrors GPULightShadowData (§6); cascade arrays are
// fixed-size at MaxCascades regardless of a light's actual cascade count.
type GPULightShadowData struct {
	CascadeViewProj [MaxCascades]mgl32.Mat4
	CascadeSplits   [MaxCascades]float32
	Factor          float32
	XOffset         float32
	YOffset         float32
	ShadowMapTexIdx int32
}

func (s *GPULightShadowData) ToBytes() []byte {
	const matBlock = MaxCascades * 64
	const splitBlock = MaxCascades * 4
	buf := make([]byte, matBlock+splitBlock+16)
	for i, m := range s.CascadeViewProj {
		putMat4(buf, i*64, m)
	}
	for i, v := range s.CascadeSplits {
		putF32(buf, matBlock+i*4, v)
	}
	tail := matBlock + splitBlock
	putF32(buf, tail, s.Factor)
	putF32(buf, tail+4, s.XOffset)
	putF32(buf, tail+8, s.YOffset)
	putI32(buf, tail+12, s.ShadowMapTexIdx)
	return buf
}

// GPUProbeData mirrors GPUProbeData (§6).
type GPUProbeData struct {
	Position            mgl32.Vec3
	RangeSqr            float32
	GGXEnv              int32
	LambertianEnv       int32
	GGXLut              int32
	AABBMin             mgl32.Vec4
	AABBMax             mgl32.Vec4
	ParallaxCorrection  int32
}

func (p *GPUProbeData) ToBytes() []byte {
	buf := make([]byte, 80)
	putVec3(buf, 0, p.Position)
	putF32(buf, 12, p.RangeSqr)
	putI32(buf, 16, p.GGXEnv)
	putI32(buf, 20, p.LambertianEnv)
	putI32(buf, 24, p.GGXLut)
	putVec4(buf, 32, p.AABBMin)
	putVec4(buf, 48, p.AABBMax)
	// parallax_correction is a trailing i32 after AABBMax rather than
	// packed into AABBMax.w's bits; the record is padded to 80 bytes.
	putI32(buf, 64, p.ParallaxCorrection)
	return buf
}

// BindGroup0 mirrors BindGroup_0, the per-view camera uniform (§6).
type BindGroup0 struct {
	ViewportSize     mgl32.Vec4
	ViewportInfo     mgl32.Vec4
	CameraPos        mgl32.Vec3
	Projection       mgl32.Mat4
	View             mgl32.Mat4
	ViewProjection   mgl32.Mat4
}

func (b *BindGroup0) ToBytes() []byte {
	buf := make([]byte, 32+16+192)
	putVec4(buf, 0, b.ViewportSize)
	putVec4(buf, 16, b.ViewportInfo)
	putVec3(buf, 32, b.CameraPos)
	putMat4(buf, 48, b.Projection)
	putMat4(buf, 112, b.View)
	putMat4(buf, 176, b.ViewProjection)
	return buf
}
