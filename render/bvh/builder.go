// Package bvh builds a median-split bounding volume hierarchy over a
// scene's object AABBs and encodes it in the bit-exact GPU node layout a
// BVH-traversal shader expects (§3 "a BVH built over object AABBs").
package bvh

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Node matches the GPU-side BVHNode layout: 64 bytes, two vec4 bounds
// (w components unused, present only for std140 alignment) followed by
// four i32 indices.
type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

const NodeSize = 64

func (n *Node) ToBytes() []byte {
	buf := make([]byte, NodeSize)

	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(n.Min.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(n.Min.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(n.Min.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], 0)

	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(n.Max.X()))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(n.Max.Y()))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(n.Max.Z()))
	binary.LittleEndian.PutUint32(buf[28:32], 0)

	binary.LittleEndian.PutUint32(buf[32:36], uint32(n.Left))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(n.Right))
	binary.LittleEndian.PutUint32(buf[40:44], uint32(n.LeafFirst))
	binary.LittleEndian.PutUint32(buf[44:48], uint32(n.LeafCount))
	return buf
}

// Item is one leaf candidate: an object's world AABB plus the index the
// caller uses to look the object back up (a scene drawable slot).
type Item struct {
	Min, Max mgl32.Vec3
	Centroid mgl32.Vec3
	Index    int
}

// Builder builds a tree over object AABBs via recursive median splits on
// the longest extent axis — the pack's dominant BVH strategy (no SAH), a
// fine default since the engine rebuilds every frame rather than
// refitting incrementally.
type Builder struct{}

// Build returns the linearized node array (BuildBytes serializes it for
// direct GPU upload); an empty input yields a single degenerate empty node rather
// than a zero-length buffer so the traversal shader always has node 0 to
// start at.
func (b *Builder) Build(aabbs []Item) []Node {
	if len(aabbs) == 0 {
		return []Node{{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0}}
	}

	items := make([]Item, len(aabbs))
	copy(items, aabbs)
	for i := range items {
		items[i].Centroid = items[i].Min.Add(items[i].Max).Mul(0.5)
	}

	var nodes []Node
	b.recursiveBuild(items, &nodes)
	return nodes
}

// BuildBytes is Build followed by concatenating each node's ToBytes, for
// callers that just want the ready-to-upload buffer.
func (b *Builder) BuildBytes(aabbs []Item) []byte {
	nodes := b.Build(aabbs)
	out := make([]byte, 0, len(nodes)*NodeSize)
	for i := range nodes {
		out = append(out, nodes[i].ToBytes()...)
	}
	return out
}

func (b *Builder) recursiveBuild(items []Item, nodes *[]Node) int32 {
	idx := int32(len(*nodes))
	*nodes = append(*nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	inf := float32(math.Inf(1))
	minB := mgl32.Vec3{inf, inf, inf}
	maxB := mgl32.Vec3{-inf, -inf, -inf}
	for _, it := range items {
		minB = compMin(minB, it.Min)
		maxB = compMax(maxB, it.Max)
	}
	(*nodes)[idx].Min = minB
	(*nodes)[idx].Max = maxB

	if len(items) == 1 {
		(*nodes)[idx].LeafFirst = int32(items[0].Index)
		(*nodes)[idx].LeafCount = 1
		return idx
	}

	extent := maxB.Sub(minB)
	axis := 0
	if extent.Y() > extent[axis] {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := len(items) / 2
	left := b.recursiveBuild(items[:mid], nodes)
	right := b.recursiveBuild(items[mid:], nodes)
	(*nodes)[idx].Left = left
	(*nodes)[idx].Right = right
	return idx
}

func compMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minF(a.X(), b.X()), minF(a.Y(), b.Y()), minF(a.Z(), b.Z())}
}
func compMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxF(a.X(), b.X()), maxF(a.Y(), b.Y()), maxF(a.Z(), b.Z())}
}
func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
