// Package gwave implements the wave displacement shader model that deforms
// the demo sphere, together with the tweakable parameters that feed it.
//
// The functions in this package mirror the GLSL generated by [glbuild] so that
// results on CPU and GPU can be compared one to one.
package gwave

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

const (
	// ViewOffsetY is added to the view-space y coordinate of every displaced
	// vertex before projection. It is a framing adjustment, not a parameter.
	ViewOffsetY = 0.2
	// FragBlue is the constant blue channel of the wave fragment color.
	FragBlue = 0.5

	// Bounds and step of the frequency and amplitude controls.
	MinWave  = 0
	MaxWave  = 10
	WaveStep = 0.1

	// Bounds and step of the directional light position controls.
	MinLight  = -100
	MaxLight  = 100
	LightStep = 1
)

// Default uniform values of the wave material.
var (
	DefaultFrequency = ms2.Vec{X: 20, Y: 5}
	DefaultAmplitude = ms2.Vec{X: 0.1, Y: 0.1}
)

// DefaultColorHex is the initial value of the color control.
const DefaultColorHex = "#fff"

// Params is the set of user-tweakable values read by the wave material every frame.
type Params struct {
	// Color is the eagerly converted value of ColorHex.
	Color    Color
	ColorHex string
	// Frequency of the wave along x (used for y displacement) and y (used for x displacement).
	Frequency ms2.Vec
	// Amplitude of the y displacement (X) and x displacement (Y).
	Amplitude ms2.Vec
	// Wireframe selects line rendering of the wave sphere.
	Wireframe bool
}

// DefaultParams returns the startup parameter set.
func DefaultParams() Params {
	return Params{
		Color:     Color{R: 1, G: 1, B: 1},
		ColorHex:  DefaultColorHex,
		Frequency: DefaultFrequency,
		Amplitude: DefaultAmplitude,
		Wireframe: true,
	}
}

// Uniforms returns the values the wave material is given for a frame at time t.
func (p Params) Uniforms(t float32) Uniforms {
	return Uniforms{
		Frequency: p.Frequency,
		Amplitude: p.Amplitude,
		Time:      t,
		Color:     p.Color,
	}
}

// Uniforms holds the per-draw inputs of the wave shader. They are constant
// across all vertices of one frame.
type Uniforms struct {
	Frequency ms2.Vec
	Amplitude ms2.Vec
	Time      float32
	// Color is uploaded as uColor but not read by the wave fragment stage.
	Color Color
}

// Vertex is a single mesh vertex as received by the wave vertex stage.
type Vertex struct {
	Pos ms3.Vec
	UV  ms2.Vec
}

// Displace applies the wave deformation to a world-space (model transformed) position.
// The x displacement is computed from the already displaced y coordinate.
func Displace(modelPos ms3.Vec, freq, amp ms2.Vec, t float32) ms3.Vec {
	modelPos.Y += math32.Sin(modelPos.X*freq.X+t) * amp.X
	modelPos.X += math32.Cos(modelPos.Y*freq.Y+t) * amp.Y
	return modelPos
}

// ViewOffset applies the fixed vertical framing offset to a view-space position.
func ViewOffset(viewPos ms3.Vec) ms3.Vec {
	viewPos.Y += ViewOffsetY
	return viewPos
}

// FragColor returns the wave fragment color for a UV coordinate. UV is
// visualized directly as red and green.
func FragColor(uv ms2.Vec) RGBA {
	return RGBA{R: uv.X, G: uv.Y, B: FragBlue, A: 1}
}

// Shade evaluates the wave vertex stage for a single vertex: model transform,
// displacement and the color passed down to the fragment stage.
func Shade(v Vertex, model ms3.Mat4, p Params, t float32) (ms3.Vec, RGBA) {
	world := model.MulPosition(v.Pos)
	return Displace(world, p.Frequency, p.Amplitude, t), FragColor(v.UV)
}

// Project takes a displaced world-space position through the view transform,
// the fixed view offset and the projection. It returns normalized device
// coordinates and the clip-space w, which is negative or zero for points
// behind the camera.
func Project(world ms3.Vec, view, proj ms3.Mat4) (ndc ms3.Vec, w float32) {
	viewPos := ViewOffset(view.MulPosition(world))
	clip, w := mulHomogeneous(proj, viewPos)
	if w == 0 {
		return clip, 0
	}
	return ms3.Scale(1/w, clip), w
}
