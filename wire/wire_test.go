package wire

import (
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/app"
	"github.com/soypat/gwave/scene"
)

type recordCanvas struct {
	w, h   int
	clears int
	lines  int
	blue   int
}

func (rc *recordCanvas) Size() (int, int) { return rc.w, rc.h }

func (rc *recordCanvas) Clear(c gwave.Color) { rc.clears++ }

func (rc *recordCanvas) StrokeLine(a, b ms2.Vec, c gwave.RGBA) {
	rc.lines++
	if c.B == gwave.FragBlue {
		rc.blue++
	}
}

func TestRenderApp(t *testing.T) {
	a, err := app.New(gwave.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	canvas := &recordCanvas{w: 300, h: 200}
	r := &Renderer{Target: canvas}
	loop, err := a.NewLoop(nil, r)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		err = loop.Step()
		if err != nil {
			t.Fatal(err)
		}
	}
	if canvas.clears != 2 {
		t.Errorf("want a clear per frame, got %d", canvas.clears)
	}
	if canvas.lines == 0 || canvas.blue == 0 {
		t.Errorf("expected sphere lines, got %d lines %d wave colored", canvas.lines, canvas.blue)
	}
	nverts := uint64(len(a.Sphere.Geometry.Positions))
	if r.Evaluations() != 2*nverts {
		t.Errorf("want %d displacements, got %d", 2*nverts, r.Evaluations())
	}
	if a.Camera.Aspect != 1.5 {
		t.Errorf("camera aspect not updated: %g", a.Camera.Aspect)
	}
}

func TestRenderMaterialSwap(t *testing.T) {
	a, err := app.New(gwave.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	canvas := &recordCanvas{w: 300, h: 200}
	r := &Renderer{Target: canvas}
	wave := a.Sphere.Material
	a.Sphere.Material = &scene.ToonMaterial{Color: gwave.Color{R: 1}}
	err = r.Render(a.Scene, a.Camera)
	if err != nil {
		t.Fatal(err)
	}
	toonBlue := canvas.blue
	a.Sphere.Material = wave
	err = r.Render(a.Scene, a.Camera)
	if err != nil {
		t.Fatal(err)
	}
	if waveBlue := canvas.blue - toonBlue; waveBlue <= toonBlue {
		t.Errorf("wave frame must draw uv colored edges: toon frame %d, wave frame %d", toonBlue, waveBlue)
	}
}

func TestRenderErrors(t *testing.T) {
	a, err := app.New(gwave.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var r Renderer
	err = r.Render(a.Scene, a.Camera)
	if err == nil {
		t.Error("expected error without target")
	}
	r.Target = &recordCanvas{w: 10, h: 10}
	a.Scene.Add(&scene.Mesh{Name: "bad", Geometry: a.Sphere.Geometry})
	err = r.Render(a.Scene, a.Camera)
	if err == nil {
		t.Error("expected error on mesh without material")
	}
}
