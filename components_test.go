package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPackedStrideExcludesSkinStreams is the §4.4 fix: skin streams land
// in the scene's separate skin vertex buffer, never in DataBuffer, so
// their bits must not inflate the packed data stride.
func TestPackedStrideExcludesSkinStreams(t *testing.T) {
	unskinned := StreamNormal | StreamTangent | StreamUV01
	assert.Equal(t, 3, unskinned.PackedStride())

	skinned := unskinned | StreamJoints01 | StreamWeights01
	assert.Equal(t, 3, skinned.PackedStride(), "skin streams must not count toward the packed data stride")

	allSeven := StreamNormal | StreamTangent | StreamColor0 | StreamUV01 | StreamUV23 | StreamUV45 | StreamUV67
	assert.Equal(t, 7, allSeven.PackedStride())
	assert.Equal(t, 7, (allSeven | StreamJoints01 | StreamWeights01).PackedStride())
}
