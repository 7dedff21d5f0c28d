package glrender

import (
	"errors"
	"io"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/gleval"
)

type Renderer interface {
	ReadTriangles(dst []ms3.Triangle, userData any) (n int, err error)
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.RenderAll implementation.
func RenderAll(r Renderer, userData any) ([]ms3.Triangle, error) {
	const startSize = 4096
	var err error
	var nt int
	result := make([]ms3.Triangle, 0, startSize)
	buf := make([]ms3.Triangle, startSize)
	for {
		nt, err = r.ReadTriangles(buf, userData)
		if err == nil || err == io.EOF {
			result = append(result, buf[:nt]...)
		}
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// MeshRenderer reads the triangles of a mesh after running the wave vertex
// stage over it. Positions are displaced once, on the first read.
type MeshRenderer struct {
	mesh  *Mesh
	model ms3.Mat4
	d     gleval.Displacer
	u     gwave.Uniforms
	world []ms3.Vec
	next  int
}

var _ Renderer = (*MeshRenderer)(nil) // Interface implementation compile-time check.

// NewMeshRenderer returns a [Renderer] over mesh transformed by model and
// displaced by d with uniforms u.
func NewMeshRenderer(mesh *Mesh, model ms3.Mat4, d gleval.Displacer, u gwave.Uniforms) (*MeshRenderer, error) {
	if mesh == nil || d == nil {
		return nil, errors.New("nil mesh or displacer")
	}
	err := mesh.Validate()
	if err != nil {
		return nil, err
	}
	return &MeshRenderer{mesh: mesh, model: model, d: d, u: u}, nil
}

// Reset rewinds the renderer with new uniforms so the mesh is displaced again on the next read.
func (mr *MeshRenderer) Reset(u gwave.Uniforms) {
	mr.u = u
	mr.world = mr.world[:0]
	mr.next = 0
}

// Positions returns the displaced world positions, evaluating them if needed.
func (mr *MeshRenderer) Positions(userData any) ([]ms3.Vec, error) {
	if len(mr.world) == len(mr.mesh.Positions) {
		return mr.world, nil
	}
	mr.world = append(mr.world[:0], mr.mesh.Positions...)
	err := gleval.ShadePositions(mr.d, mr.world, mr.mesh.Positions, mr.model, mr.u, userData)
	if err != nil {
		mr.world = mr.world[:0]
		return nil, err
	}
	return mr.world, nil
}

// ReadTriangles implements [Renderer]. io.EOF is returned together with the last triangles.
func (mr *MeshRenderer) ReadTriangles(dst []ms3.Triangle, userData any) (n int, err error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	world, err := mr.Positions(userData)
	if err != nil {
		return 0, err
	}
	idx := mr.mesh.Indices
	for n < len(dst) && mr.next+2 < len(idx) {
		dst[n] = ms3.Triangle{world[idx[mr.next]], world[idx[mr.next+1]], world[idx[mr.next+2]]}
		mr.next += 3
		n++
	}
	if mr.next+2 >= len(idx) {
		return n, io.EOF
	}
	return n, nil
}
