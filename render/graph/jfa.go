package graph

import "math/bits"

// JFAPassCount returns the number of ping-pong jump-flood passes the
// selection outline pass needs to shrink its jump distance from roughly
// half the larger viewport dimension down to 1 pixel (§4.9 step 8,
// "Jump-Flood Algorithm... two ping-pong compute dispatches halving jump
// distance to 1 pixel").
func JFAPassCount(width, height int) int {
	dim := width
	if height > dim {
		dim = height
	}
	if dim <= 1 {
		return 0
	}
	return bits.Len(uint(dim - 1))
}
