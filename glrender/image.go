package glrender

import (
	"errors"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// Viewport maps world positions to pixel coordinates of a Width x Height
// target through the wave material's view stage, see [gwave.Project].
type Viewport struct {
	View       ms3.Mat4
	Projection ms3.Mat4
	Width      int
	Height     int
}

// Project writes the pixel coordinates of world positions to dst. visible[i] is
// false for positions behind the camera or outside the clip depth range.
func (vp Viewport) Project(dst []ms2.Vec, visible []bool, world []ms3.Vec) error {
	if len(dst) != len(world) || len(visible) != len(world) {
		return errors.New("projection buffer length mismatch")
	}
	w, h := float32(vp.Width), float32(vp.Height)
	for i, p := range world {
		ndc, cw := gwave.Project(p, vp.View, vp.Projection)
		visible[i] = cw > 0 && ndc.Z >= -1 && ndc.Z <= 1
		dst[i] = ms2.Vec{
			X: (ndc.X + 1) * 0.5 * w,
			Y: (1 - ndc.Y) * 0.5 * h,
		}
	}
	return nil
}

// ImageRenderer draws wireframes of displaced meshes into images.
type ImageRenderer struct {
	Viewport Viewport
	screen   []ms2.Vec
	visible  []bool
}

// DrawEdges strokes edges between world positions. colors holds either one
// color per position, interpolated along each edge, or a single color for all.
func (ir *ImageRenderer) DrawEdges(img setImage, world []ms3.Vec, colors []gwave.RGBA, edges [][2]uint32) error {
	if len(colors) != 1 && len(colors) != len(world) {
		return errors.New("need one color per position or a single color")
	}
	bb := img.Bounds()
	vp := ir.Viewport
	vp.Width, vp.Height = bb.Dx(), bb.Dy()
	ir.screen = resize(ir.screen, len(world))
	ir.visible = resize(ir.visible, len(world))
	err := vp.Project(ir.screen, ir.visible, world)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if int(e[0]) >= len(world) || int(e[1]) >= len(world) {
			return errors.New("edge index out of range")
		}
		if !ir.visible[e[0]] || !ir.visible[e[1]] {
			continue
		}
		c0, c1 := colors[0], colors[0]
		if len(colors) > 1 {
			c0, c1 = colors[e[0]], colors[e[1]]
		}
		drawLine(img, bb.Min, ir.screen[e[0]], ir.screen[e[1]], c0, c1)
	}
	return nil
}

func drawLine(img setImage, origin image.Point, a, b ms2.Vec, ca, cb gwave.RGBA) {
	d := ms2.Sub(b, a)
	steps := int(math32.Ceil(math32.Max(math32.Abs(d.X), math32.Abs(d.Y))))
	if steps > 1<<14 {
		return // Degenerate projection close to the camera plane.
	}
	bb := img.Bounds()
	for i := 0; i <= steps; i++ {
		var t float32
		if steps > 0 {
			t = float32(i) / float32(steps)
		}
		p := ms2.Add(a, ms2.Scale(t, d))
		pt := image.Point{X: origin.X + int(p.X), Y: origin.Y + int(p.Y)}
		if !pt.In(bb) {
			continue
		}
		img.Set(pt.X, pt.Y, lerpRGBA(ca, cb, t))
	}
}

func lerpRGBA(a, b gwave.RGBA, t float32) gwave.RGBA {
	return gwave.RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
