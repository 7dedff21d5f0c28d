// Package wire renders a scene as wireframe lines on the CPU. Wave material
// meshes go through the same vertex stage as the GPU program, evaluated by
// [gleval.CPUDisplacer].
package wire

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/gleval"
	"github.com/soypat/gwave/glloop"
	"github.com/soypat/gwave/glrender"
	"github.com/soypat/gwave/scene"
)

// Canvas is a line drawing target.
type Canvas interface {
	// Size returns the canvas size in pixels.
	Size() (width, height int)
	Clear(c gwave.Color)
	// StrokeLine draws a line between two pixel coordinates with color c.
	StrokeLine(a, b ms2.Vec, c gwave.RGBA)
}

// Renderer implements [glloop.Renderer] over a [Canvas]. Target must be set
// before each Render call.
type Renderer struct {
	Target Canvas
	d      gleval.CPUDisplacer
	meshes map[*scene.Mesh]*meshCache
	screen []ms2.Vec
	vis    []bool
}

var _ glloop.Renderer = (*Renderer)(nil) // Interface implementation compile-time check.

type meshCache struct {
	edges  [][2]uint32
	colors []gwave.RGBA
	world  []ms3.Vec
}

// Evaluations returns the amount of displaced positions over the renderer's lifetime.
func (r *Renderer) Evaluations() uint64 { return r.d.Evaluations() }

// Render implements [glloop.Renderer].
func (r *Renderer) Render(s *scene.Scene, cam *scene.Camera) error {
	if r.Target == nil {
		return errors.New("nil render target")
	}
	w, h := r.Target.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	cam.SetSize(w, h)
	r.Target.Clear(s.Background)
	vp := glrender.Viewport{View: cam.View(), Projection: cam.Projection(), Width: w, Height: h}
	for _, m := range s.Meshes() {
		err := r.drawMesh(vp, m)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name, err)
		}
	}
	return nil
}

func (r *Renderer) drawMesh(vp glrender.Viewport, m *scene.Mesh) error {
	mc, err := r.cache(m)
	if err != nil {
		return err
	}
	geom := m.Geometry
	model := m.Model()
	switch mat := m.Material.(type) {
	case *scene.WaveMaterial:
		err = gleval.ShadePositions(&r.d, mc.world, geom.Positions, model, mat.Uniforms, nil)
		if err != nil {
			return err
		}
		if len(mc.colors) != len(geom.UVs) {
			mc.colors = gleval.Colors(mc.colors[:0], geom.UVs)
		}
	case *scene.ToonMaterial:
		r.transform(mc, geom, model)
		mc.colors = append(mc.colors[:0], mat.Color.RGBA())
	case *scene.BasicMaterial:
		r.transform(mc, geom, model)
		mc.colors = append(mc.colors[:0], mat.Color.RGBA())
	default:
		return fmt.Errorf("unsupported material %T", m.Material)
	}
	n := len(mc.world)
	r.screen = resize(r.screen, n)
	r.vis = resize(r.vis, n)
	err = vp.Project(r.screen, r.vis, mc.world)
	if err != nil {
		return err
	}
	for _, e := range mc.edges {
		if !r.vis[e[0]] || !r.vis[e[1]] {
			continue
		}
		c := mc.colors[0]
		if len(mc.colors) > 1 {
			c = average(mc.colors[e[0]], mc.colors[e[1]])
		}
		r.Target.StrokeLine(r.screen[e[0]], r.screen[e[1]], c)
	}
	return nil
}

func (r *Renderer) transform(mc *meshCache, geom *glrender.Mesh, model ms3.Mat4) {
	for i, p := range geom.Positions {
		mc.world[i] = model.MulPosition(p)
	}
}

func (r *Renderer) cache(m *scene.Mesh) (*meshCache, error) {
	if mc, ok := r.meshes[m]; ok && len(mc.world) == len(m.Geometry.Positions) {
		return mc, nil
	}
	if m.Geometry == nil {
		return nil, errors.New("nil geometry")
	}
	err := m.Geometry.Validate()
	if err != nil {
		return nil, err
	}
	if r.meshes == nil {
		r.meshes = make(map[*scene.Mesh]*meshCache)
	}
	mc := &meshCache{
		edges: m.Geometry.AppendEdges(nil),
		world: make([]ms3.Vec, len(m.Geometry.Positions)),
	}
	r.meshes[m] = mc
	return mc, nil
}

func average(a, b gwave.RGBA) gwave.RGBA {
	return gwave.RGBA{R: (a.R + b.R) / 2, G: (a.G + b.G) / 2, B: (a.B + b.B) / 2, A: (a.A + b.A) / 2}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
