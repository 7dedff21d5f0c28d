package scene

import "github.com/soypat/gwave"

// Material describes how a [Mesh] is shaded.
type Material interface {
	MaterialName() string
}

var (
	_ Material = (*WaveMaterial)(nil)
	_ Material = (*ToonMaterial)(nil)
	_ Material = (*BasicMaterial)(nil)
)

// WaveMaterial is the displacement material of the demo sphere. Its uniforms
// are refreshed every frame by SetUniforms.
type WaveMaterial struct {
	Uniforms   gwave.Uniforms
	Wireframe  bool
	DoubleSide bool
}

// NewWaveMaterial returns a double sided wave material initialized from p at time zero.
func NewWaveMaterial(p gwave.Params) *WaveMaterial {
	m := &WaveMaterial{DoubleSide: true}
	m.SetUniforms(p, 0)
	return m
}

func (m *WaveMaterial) MaterialName() string { return "wave" }

// SetUniforms writes the frame uniforms from a parameter snapshot and the elapsed time t.
func (m *WaveMaterial) SetUniforms(p gwave.Params, t float32) {
	m.Uniforms = p.Uniforms(t)
	m.Wireframe = p.Wireframe
}

// ToonMaterial is a two tone cel-shaded material.
type ToonMaterial struct {
	Color gwave.Color
}

func (m *ToonMaterial) MaterialName() string { return "toon" }

// BasicMaterial is an unlit single color material.
type BasicMaterial struct {
	Color     gwave.Color
	Wireframe bool
}

func (m *BasicMaterial) MaterialName() string { return "basic" }
