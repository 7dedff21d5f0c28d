package scene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV      float32
	Aspect   float32
	Near     float32
	Far      float32
	Position ms3.Vec
	Target   ms3.Vec
	Up       ms3.Vec
}

// NewCamera returns a camera configured by cfg with the given aspect ratio.
func NewCamera(cfg gwave.CameraConfig, aspect float32) *Camera {
	return &Camera{
		FOV:      cfg.FOV,
		Aspect:   aspect,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Position: vec(cfg.Position),
		Target:   vec(cfg.Target),
		Up:       ms3.Vec{Y: 1},
	}
}

// SetSize updates the aspect ratio from a viewport size in pixels.
func (c *Camera) SetSize(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// View returns the world to view space matrix.
func (c *Camera) View() ms3.Mat4 {
	return gwave.LookAtMat4(c.Position, c.Target, c.Up)
}

// Projection returns the view to clip space matrix.
func (c *Camera) Projection() ms3.Mat4 {
	return gwave.PerspectiveMat4(c.FOV*math32.Pi/180, c.Aspect, c.Near, c.Far)
}

func vec(a [3]float32) ms3.Vec {
	return ms3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
