package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAtlasPackingScenario is the §8 "Shadow atlas packing" scenario: an
// 8192^2 atlas packing one 4-cascade 2048-res directional light, one
// 1024-res point light, and one 512-res spot light, all without overlap.
func TestAtlasPackingScenario(t *testing.T) {
	atlas := NewAtlas(8192)

	dw, dh := DirectionalRectSize(2048, 4)
	assert.Equal(t, 8192, dw)
	assert.Equal(t, 2048, dh)
	dRect, err := atlas.Pack(dw, dh)
	require.NoError(t, err)

	pw, ph := PointRectSize(1024)
	assert.Equal(t, 2048, pw)
	assert.Equal(t, 3072, ph)
	pRect, err := atlas.Pack(pw, ph)
	require.NoError(t, err)

	sw, sh := SpotRectSize(512)
	sRect, err := atlas.Pack(sw, sh)
	require.NoError(t, err)

	assertNoOverlap(t, dRect, pRect)
	assertNoOverlap(t, dRect, sRect)
	assertNoOverlap(t, pRect, sRect)
}

func assertNoOverlap(t *testing.T, a, b Rect) {
	t.Helper()
	overlap := a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
	assert.Falsef(t, overlap, "rects overlap: %+v vs %+v", a, b)
}

func TestAtlasFailsWhenFull(t *testing.T) {
	atlas := NewAtlas(64)
	_, err := atlas.Pack(64, 64)
	require.NoError(t, err)

	_, err = atlas.Pack(1, 1)
	assert.ErrorIs(t, err, ErrAtlasFull)
}
