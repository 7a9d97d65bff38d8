// Package probe schedules environment-probe cube captures and their
// DIRTY/REALTIME update cadence (§4.8, §4.11).
package probe

import (
	"github.com/emberforge/ember"
	"github.com/emberforge/ember/render/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceCamera is one of a probe's six capture cameras.
type FaceCamera struct {
	Face     shadow.CubeFace
	ViewProj mgl32.Mat4
}

// BuildFaceCameras returns the six FOV-pi/2 perspective cameras a probe
// capture renders G-buffer fill, lighting, and forward transparency into,
// centered at the probe's world position (§4.8).
func BuildFaceCameras(center mgl32.Vec3, near, far float32) [6]FaceCamera {
	var out [6]FaceCamera
	for f := shadow.CubeFace(0); f < 6; f++ {
		out[f] = FaceCamera{Face: f, ViewProj: shadow.CubeFaceView(center, near, far, f)}
	}
	return out
}

// ShouldUpdate reports whether a probe needs a capture this frame and
// advances its internal frame counter (§4.11: DIRTY updates once then
// goes clean, REALTIME updates every UpdateInterval-th frame).
func ShouldUpdate(p *ember.EnvironmentProbe) bool {
	if p.Flags&ember.ProbeDirty != 0 {
		p.Flags &^= ember.ProbeDirty
		return true
	}
	if p.Flags&ember.ProbeRealtime == 0 {
		return false
	}

	interval := p.UpdateInterval
	if interval < 1 {
		interval = 1
	}
	p.AdvanceFrame()
	return p.FramesSinceUpdate()%interval == 0
}
