package glrender

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Mesh is an indexed triangle mesh. Every triangle is 3 consecutive Indices.
type Mesh struct {
	Positions []ms3.Vec
	Normals   []ms3.Vec
	UVs       []ms2.Vec
	Indices   []uint32
}

// NewSphere returns a UV sphere centered at the origin with the poles on the y axis.
// Vertices are laid out in (heightSegments+1) rings of (widthSegments+1) vertices
// so the seam and the poles hold duplicated positions with distinct UVs.
func NewSphere(radius float32, widthSegments, heightSegments int) (Mesh, error) {
	if radius <= 0 {
		return Mesh{}, errors.New("non-positive sphere radius")
	} else if widthSegments < 3 || heightSegments < 2 {
		return Mesh{}, fmt.Errorf("too few sphere segments %d, %d", widthSegments, heightSegments)
	}
	nverts := (widthSegments + 1) * (heightSegments + 1)
	m := Mesh{
		Positions: make([]ms3.Vec, 0, nverts),
		Normals:   make([]ms3.Vec, 0, nverts),
		UVs:       make([]ms2.Vec, 0, nverts),
		Indices:   make([]uint32, 0, 6*widthSegments*(heightSegments-1)),
	}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		// Pole vertices are shifted half a segment so each pole triangle gets a centered UV.
		var uOffset float32
		if iy == 0 {
			uOffset = 0.5 / float32(widthSegments)
		} else if iy == heightSegments {
			uOffset = -0.5 / float32(widthSegments)
		}
		sinTheta, cosTheta := math32.Sincos(v * math32.Pi)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			sinPhi, cosPhi := math32.Sincos(u * 2 * math32.Pi)
			p := ms3.Vec{
				X: -radius * cosPhi * sinTheta,
				Y: radius * cosTheta,
				Z: radius * sinPhi * sinTheta,
			}
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, ms3.Scale(1/radius, p))
			m.UVs = append(m.UVs, ms2.Vec{X: u + uOffset, Y: 1 - v})
		}
	}
	stride := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			row, next := uint32(iy)*stride, uint32(iy+1)*stride
			a := row + uint32(ix) + 1
			b := row + uint32(ix)
			c := next + uint32(ix)
			d := next + uint32(ix) + 1
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m, nil
}

// NewPlane returns a plane in the xy plane facing +z, centered at the origin.
func NewPlane(width, height float32, widthSegments, heightSegments int) (Mesh, error) {
	if width <= 0 || height <= 0 {
		return Mesh{}, errors.New("non-positive plane dimensions")
	} else if widthSegments < 1 || heightSegments < 1 {
		return Mesh{}, errors.New("plane requires at least one segment per side")
	}
	gridX1, gridY1 := widthSegments+1, heightSegments+1
	segW := width / float32(widthSegments)
	segH := height / float32(heightSegments)
	m := Mesh{
		Positions: make([]ms3.Vec, 0, gridX1*gridY1),
		Normals:   make([]ms3.Vec, 0, gridX1*gridY1),
		UVs:       make([]ms2.Vec, 0, gridX1*gridY1),
		Indices:   make([]uint32, 0, 6*widthSegments*heightSegments),
	}
	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - width/2
			m.Positions = append(m.Positions, ms3.Vec{X: x, Y: -y})
			m.Normals = append(m.Normals, ms3.Vec{Z: 1})
			m.UVs = append(m.UVs, ms2.Vec{
				X: float32(ix) / float32(widthSegments),
				Y: 1 - float32(iy)/float32(heightSegments),
			})
		}
	}
	stride := uint32(gridX1)
	for iy := uint32(0); iy < uint32(heightSegments); iy++ {
		for ix := uint32(0); ix < uint32(widthSegments); ix++ {
			a := ix + stride*iy
			b := ix + stride*(iy+1)
			c := ix + 1 + stride*(iy+1)
			d := ix + 1 + stride*iy
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m, nil
}

// NumTriangles returns the amount of triangles in the mesh.
func (m *Mesh) NumTriangles() int { return len(m.Indices) / 3 }

// Validate checks buffer lengths and index bounds.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return errors.New("mesh has no positions")
	} else if len(m.UVs) != n || (m.Normals != nil && len(m.Normals) != n) {
		return errors.New("mesh attribute length mismatch")
	} else if len(m.Indices)%3 != 0 {
		return errors.New("mesh index count not multiple of 3")
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh index %d out of range: %d >= %d", i, idx, n)
		}
	}
	return nil
}

// AppendEdges appends the unique edges of the mesh triangles to dst, the way
// a wireframe draw shows them. Edges are stored with the smaller index first.
func (m *Mesh) AppendEdges(dst [][2]uint32) [][2]uint32 {
	seen := make(map[[2]uint32]struct{}, len(m.Indices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tri := m.Indices[i : i+3]
		for j := 0; j < 3; j++ {
			a, b := tri[j], tri[(j+1)%3]
			if a > b {
				a, b = b, a
			}
			e := [2]uint32{a, b}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			dst = append(dst, e)
		}
	}
	return dst
}

// Bounds returns the bounding box of the mesh positions.
func (m *Mesh) Bounds() ms3.Box {
	bb := ms3.Box{
		Min: ms3.Vec{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)},
		Max: ms3.Vec{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)},
	}
	for _, p := range m.Positions {
		bb.Min = ms3.MinElem(bb.Min, p)
		bb.Max = ms3.MaxElem(bb.Max, p)
	}
	return bb
}
