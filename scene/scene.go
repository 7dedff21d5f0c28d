// Package scene holds the minimal scene graph of the wave demo: a flat list
// of meshes and lights, a perspective camera and damped orbit controls.
package scene

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/glrender"
)

// Node is an object that can be added to a [Scene].
type Node interface {
	NodeName() string
}

// Scene is a flat container of meshes and lights.
type Scene struct {
	Background gwave.Color
	nodes      []Node
}

// New returns an empty scene with a black background.
func New() *Scene {
	return &Scene{}
}

// Add appends nodes to the scene. Nil nodes are ignored.
func (s *Scene) Add(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			s.nodes = append(s.nodes, n)
		}
	}
}

// Meshes returns the meshes of the scene in insertion order.
func (s *Scene) Meshes() []*Mesh {
	var meshes []*Mesh
	for _, n := range s.nodes {
		if m, ok := n.(*Mesh); ok {
			meshes = append(meshes, m)
		}
	}
	return meshes
}

// Lights returns the lights of the scene in insertion order.
func (s *Scene) Lights() []Light {
	var lights []Light
	for _, n := range s.nodes {
		if l, ok := n.(Light); ok {
			lights = append(lights, l)
		}
	}
	return lights
}

// Find returns the first node named name or nil.
func (s *Scene) Find(name string) Node {
	for _, n := range s.nodes {
		if n.NodeName() == name {
			return n
		}
	}
	return nil
}

// Mesh is a geometry drawn with a material at a position and rotation.
type Mesh struct {
	Name     string
	Geometry *glrender.Mesh
	Material Material
	Position ms3.Vec
	// Rotation holds Euler angles in radians applied in x, y, z order.
	Rotation      ms3.Vec
	CastShadow    bool
	ReceiveShadow bool
}

func (m *Mesh) NodeName() string { return m.Name }

// Model returns the model matrix translate * rotX * rotY * rotZ.
func (m *Mesh) Model() ms3.Mat4 {
	r := ms3.MulMat4(ms3.RotationMat4(m.Rotation.X, ms3.Vec{X: 1}),
		ms3.MulMat4(ms3.RotationMat4(m.Rotation.Y, ms3.Vec{Y: 1}),
			ms3.RotationMat4(m.Rotation.Z, ms3.Vec{Z: 1})))
	return ms3.MulMat4(ms3.TranslatingMat4(m.Position), r)
}
