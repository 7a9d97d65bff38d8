package probe

import (
	"testing"

	"github.com/emberforge/ember"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFaceCamerasSixDistinct(t *testing.T) {
	cams := BuildFaceCameras(mgl32.Vec3{1, 2, 3}, 0.1, 50)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			assert.NotEqual(t, cams[i].ViewProj, cams[j].ViewProj)
		}
	}
}

func TestShouldUpdateDirtyRunsOnceThenStops(t *testing.T) {
	p := &ember.EnvironmentProbe{Flags: ember.ProbeDirty, UpdateInterval: 1}
	require.True(t, ShouldUpdate(p))
	assert.False(t, ShouldUpdate(p))
	assert.False(t, ShouldUpdate(p))
}

func TestShouldUpdateRealtimeRespectsInterval(t *testing.T) {
	p := &ember.EnvironmentProbe{Flags: ember.ProbeRealtime, UpdateInterval: 3}

	var hits int
	for i := 0; i < 9; i++ {
		if ShouldUpdate(p) {
			hits++
		}
	}
	assert.Equal(t, 3, hits)
}

func TestGGXMipChainShrinks(t *testing.T) {
	mips := GGXMipChain(256, 5)
	require.Len(t, mips, 5)
	assert.Equal(t, 256, mips[0].Size)
	for i := 1; i < len(mips); i++ {
		assert.LessOrEqual(t, mips[i].Size, mips[i-1].Size)
	}
	assert.InDelta(t, 0, mips[0].Roughness, 1e-6)
	assert.InDelta(t, 1, mips[len(mips)-1].Roughness, 1e-6)
}
