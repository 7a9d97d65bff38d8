package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSingleItem(t *testing.T) {
	b := &Builder{}
	nodes := b.Build([]Item{{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}, Index: 7}})
	require.Len(t, nodes, 1)
	assert.Equal(t, int32(7), nodes[0].LeafFirst)
	assert.Equal(t, int32(1), nodes[0].LeafCount)
}

func TestBuildEmpty(t *testing.T) {
	b := &Builder{}
	nodes := b.Build(nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, int32(0), nodes[0].LeafCount)
}

func TestBuildEncompassesAllItems(t *testing.T) {
	b := &Builder{}
	items := []Item{
		{Min: mgl32.Vec3{-5, 0, 0}, Max: mgl32.Vec3{-4, 1, 1}, Index: 0},
		{Min: mgl32.Vec3{4, 0, 0}, Max: mgl32.Vec3{5, 1, 1}, Index: 1},
		{Min: mgl32.Vec3{0, -5, 0}, Max: mgl32.Vec3{1, -4, 1}, Index: 2},
	}
	nodes := b.Build(items)
	require.NotEmpty(t, nodes)

	root := nodes[0]
	assert.InDelta(t, -5, root.Min.X(), 1e-6)
	assert.InDelta(t, -5, root.Min.Y(), 1e-6)
	assert.InDelta(t, 5, root.Max.X(), 1e-6)
	assert.InDelta(t, 1, root.Max.Y(), 1e-6)

	var leafCount int
	var countLeaves func(idx int32)
	countLeaves = func(idx int32) {
		n := nodes[idx]
		if n.LeafCount > 0 {
			leafCount += int(n.LeafCount)
			return
		}
		countLeaves(n.Left)
		countLeaves(n.Right)
	}
	countLeaves(0)
	assert.Equal(t, len(items), leafCount)
}

func TestToBytesRoundTripLength(t *testing.T) {
	n := Node{Min: mgl32.Vec3{1, 2, 3}, Max: mgl32.Vec3{4, 5, 6}, Left: 1, Right: 2, LeafFirst: -1, LeafCount: 0}
	assert.Len(t, n.ToBytes(), NodeSize)
}
