package scene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// polarEps keeps the camera off the poles where the view basis degenerates.
const polarEps = 1e-3

// OrbitControls orbits a [Camera] around its target. Input accumulates
// rotation which is applied gradually by Update according to Damping.
type OrbitControls struct {
	Camera *Camera
	// Damping is the fraction of pending rotation applied per Update, in (0, 1].
	Damping     float32
	MinDistance float32
	MaxDistance float32

	dTheta float32
	dPhi   float32
	scale  float32
}

// NewOrbitControls returns controls for cam with damping 0.05.
func NewOrbitControls(cam *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:      cam,
		Damping:     0.05,
		MinDistance: 0.5,
		MaxDistance: 50,
		scale:       1,
	}
}

// Rotate queues an azimuthal rotation of dTheta and a polar rotation of dPhi radians.
// Positive dPhi moves the camera towards the bottom pole.
func (oc *OrbitControls) Rotate(dTheta, dPhi float32) {
	oc.dTheta += dTheta
	oc.dPhi += dPhi
}

// Zoom scales the camera distance to the target by factor on the next Update.
// Factors above 1 move the camera away.
func (oc *OrbitControls) Zoom(factor float32) {
	if factor > 0 {
		oc.scale *= factor
	}
}

// Pending reports whether queued rotation remains to be applied.
func (oc *OrbitControls) Pending() bool {
	const eps = 1e-6
	return math32.Abs(oc.dTheta) > eps || math32.Abs(oc.dPhi) > eps || oc.scale != 1
}

// Update moves the camera by the damped fraction of the queued input.
// It returns true if the camera position changed.
func (oc *OrbitControls) Update() bool {
	if !oc.Pending() {
		oc.dTheta, oc.dPhi = 0, 0
		return false
	}
	cam := oc.Camera
	offset := ms3.Sub(cam.Position, cam.Target)
	r := ms3.Norm(offset)
	if r == 0 {
		return false
	}
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Acos(ms1.Clamp(offset.Y/r, -1, 1))

	damp := ms1.Clamp(oc.Damping, 1e-6, 1)
	theta += oc.dTheta * damp
	phi += oc.dPhi * damp
	phi = ms1.Clamp(phi, polarEps, math32.Pi-polarEps)
	r = ms1.Clamp(r*oc.scale, oc.MinDistance, oc.MaxDistance)

	oc.dTheta *= 1 - damp
	oc.dPhi *= 1 - damp
	oc.scale = 1

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	offset = ms3.Vec{
		X: r * sinPhi * sinTheta,
		Y: r * cosPhi,
		Z: r * sinPhi * cosTheta,
	}
	newPos := ms3.Add(cam.Target, offset)
	moved := newPos != cam.Position
	cam.Position = newPos
	return moved
}
