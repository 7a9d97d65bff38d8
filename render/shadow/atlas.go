// Package shadow packs per-light shadow-map rectangles into one shared
// atlas texture and computes cascaded-shadow-map splits and matrices
// (§4.5, §4.6, §4.7).
package shadow

import "errors"

// ErrAtlasFull is returned by Pack when no skyline segment can fit the
// requested rectangle — the spec's resolution is fail-safe: the caller
// drops that light's shadow and logs a warning rather than growing the
// atlas or evicting (§9 Open Questions).
var ErrAtlasFull = errors.New("shadow: atlas has no room for rectangle")

// Rect is a packed rectangle's placement within the atlas.
type Rect struct {
	X, Y, W, H int
}

type skylineSegment struct {
	x, y, width int
}

// Atlas is a skyline bin packer over a fixed-size square texture.
type Atlas struct {
	Width, Height int
	skyline       []skylineSegment
}

func NewAtlas(size int) *Atlas {
	return &Atlas{
		Width:  size,
		Height: size,
		skyline: []skylineSegment{
			{x: 0, y: 0, width: size},
		},
	}
}

// Pack finds the lowest-then-leftmost skyline position that fits a w x h
// rectangle, inserts it, and returns its placement.
func (a *Atlas) Pack(w, h int) (Rect, error) {
	bestIdx := -1
	bestY := a.Height + 1
	bestX := 0

	for i := range a.skyline {
		x, y, ok := a.fit(i, w)
		if !ok {
			continue
		}
		if y < bestY || (y == bestY && x < bestX) {
			bestIdx = i
			bestY = y
			bestX = x
		}
	}

	if bestIdx == -1 {
		return Rect{}, ErrAtlasFull
	}
	if bestY+h > a.Height {
		return Rect{}, ErrAtlasFull
	}

	a.insert(bestX, bestY, w, h)
	return Rect{X: bestX, Y: bestY, W: w, H: h}, nil
}

// fit reports the highest y a rectangle of width w would sit at if placed
// starting at skyline segment i, scanning forward over however many
// segments it spans.
func (a *Atlas) fit(i, w int) (x, y int, ok bool) {
	x = a.skyline[i].x
	if x+w > a.Width {
		return 0, 0, false
	}

	remaining := w
	y = 0
	j := i
	for remaining > 0 && j < len(a.skyline) {
		y = max(y, a.skyline[j].y)
		remaining -= a.skyline[j].width
		j++
	}
	if remaining > 0 {
		return 0, 0, false
	}
	return x, y, true
}

func (a *Atlas) insert(x, y, w, h int) {
	newSeg := skylineSegment{x: x, y: y + h, width: w}

	var result []skylineSegment
	inserted := false
	for _, seg := range a.skyline {
		segEnd := seg.x + seg.width
		newEnd := x + w

		if segEnd <= x || seg.x >= newEnd {
			result = append(result, seg)
			continue
		}

		if !inserted {
			result = append(result, newSeg)
			inserted = true
		}

		if seg.x < x {
			result = append(result, skylineSegment{x: seg.x, y: seg.y, width: x - seg.x})
		}
		if segEnd > newEnd {
			result = append(result, skylineSegment{x: newEnd, y: seg.y, width: segEnd - newEnd})
		}
	}
	if !inserted {
		result = append(result, newSeg)
	}

	a.skyline = mergeAdjacent(result)
}

func mergeAdjacent(segs []skylineSegment) []skylineSegment {
	if len(segs) == 0 {
		return segs
	}
	sorted := make([]skylineSegment, len(segs))
	copy(sorted, segs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].x > sorted[j].x; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	var out []skylineSegment
	for _, s := range sorted {
		if n := len(out); n > 0 && out[n-1].y == s.y && out[n-1].x+out[n-1].width == s.x {
			out[n-1].width += s.width
		} else {
			out = append(out, s)
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DirectionalRectSize is the rectangle a directional light with the given
// cascade count and per-cascade resolution occupies (§4.5): one
// resolution x resolution tile per cascade, laid out side by side.
func DirectionalRectSize(resolution, cascadeCount int) (w, h int) {
	return resolution * cascadeCount, resolution
}

// PointRectSize is the rectangle a point light occupies: a 2x3 grid of
// its six cube faces.
func PointRectSize(resolution int) (w, h int) {
	return 2 * resolution, 3 * resolution
}

// SpotRectSize is the rectangle a spot light occupies: one square tile.
func SpotRectSize(resolution int) (w, h int) {
	return resolution, resolution
}
