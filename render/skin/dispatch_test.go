package skin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkgroupCountRoundsUp(t *testing.T) {
	d := Dispatch{VertexCount: 130}
	assert.Equal(t, uint32(3), d.WorkgroupCount())
}

func TestWorkgroupCountExact(t *testing.T) {
	d := Dispatch{VertexCount: 128}
	assert.Equal(t, uint32(2), d.WorkgroupCount())
}

func TestJointTextureLayoutHeight(t *testing.T) {
	l := NewJointTextureLayout(32)
	assert.Equal(t, 128, l.Height())
}
