package probe

// MipLevel is one roughness-mapped mip of the prefiltered GGX specular
// cubemap (§4.8: "mipped by roughness").
type MipLevel struct {
	Roughness float32
	Size      int
}

// GGXMipChain returns the roughness-to-mip-level mapping for a specular
// cubemap of the given base size, halving resolution each mip down to
// 4x4 the way typical GGX prefilter chains bottom out.
func GGXMipChain(baseSize, mipCount int) []MipLevel {
	levels := make([]MipLevel, mipCount)
	for i := 0; i < mipCount; i++ {
		size := baseSize >> uint(i)
		if size < 4 {
			size = 4
		}
		levels[i] = MipLevel{
			Roughness: float32(i) / float32(mipCount-1),
			Size:      size,
		}
	}
	return levels
}

// PrefilterOutputs names the three resources a probe capture finishes
// into: a mipped GGX specular cubemap, a single-mip Lambertian diffuse
// cubemap, and a shared 2D GGX BRDF integration LUT (§4.8).
type PrefilterOutputs struct {
	SpecularCubeSize int
	SpecularMips     []MipLevel
	DiffuseCubeSize  int
	BRDFLutSize      int
}

// NewPrefilterOutputs describes the capture outputs for a probe of the
// given resolution; the BRDF LUT is shared across all probes so its size
// is fixed regardless of probe resolution.
func NewPrefilterOutputs(resolution int) PrefilterOutputs {
	const mipCount = 5
	return PrefilterOutputs{
		SpecularCubeSize: resolution,
		SpecularMips:     GGXMipChain(resolution, mipCount),
		DiffuseCubeSize:  32,
		BRDFLutSize:      512,
	}
}
