package gleval_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/gleval"
)

func TestCPUDisplacer(t *testing.T) {
	var d gleval.CPUDisplacer
	u := gwave.DefaultParams().Uniforms(0.75)
	pos := []ms3.Vec{{X: 1}, {X: -0.5, Y: 2, Z: 1}, {}}
	dst := make([]ms3.Vec, len(pos))
	err := d.Displace(dst, pos, u, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pos {
		want := gwave.Displace(p, u.Frequency, u.Amplitude, u.Time)
		if dst[i] != want {
			t.Errorf("%d: want %v, got %v", i, want, dst[i])
		}
	}
	if d.Evaluations() != uint64(len(pos)) {
		t.Error("bad evaluation count", d.Evaluations())
	}
	// Aliased buffers.
	err = d.Displace(pos, pos, u, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pos[1] != dst[1] {
		t.Error("aliased displacement mismatch")
	}
	if err = d.Displace(dst[:1], pos, u, nil); err == nil {
		t.Error("expected length mismatch error")
	}
	if err = d.Displace(nil, nil, u, nil); err == nil {
		t.Error("expected empty buffer error")
	}
}

func TestShadePositions(t *testing.T) {
	var d gleval.CPUDisplacer
	model := ms3.TranslatingMat4(ms3.Vec{Y: 2})
	u := gwave.DefaultParams().Uniforms(1)
	local := []ms3.Vec{{Y: 1}, {Y: -1}}
	world := make([]ms3.Vec, len(local))
	err := gleval.ShadePositions(&d, world, local, model, u, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range local {
		want, _ := gwave.Shade(gwave.Vertex{Pos: v}, model, gwave.DefaultParams(), 1)
		if world[i] != want {
			t.Errorf("%d: want %v, got %v", i, want, world[i])
		}
	}
	wantY := 3 + math32.Sin(1)*0.1
	if math32.Abs(world[0].Y-wantY) > 1e-5 {
		t.Errorf("top vertex: want y=%v, got %v", wantY, world[0].Y)
	}
	if err = gleval.ShadePositions(nil, world, local, model, u, nil); err == nil {
		t.Error("expected error for nil displacer")
	}
}

func TestColors(t *testing.T) {
	got := gleval.Colors(nil, []ms2.Vec{{}, {X: 1, Y: 1}})
	if len(got) != 2 {
		t.Fatal("bad length")
	}
	if got[0] != (gwave.RGBA{B: 0.5, A: 1}) || got[1] != (gwave.RGBA{R: 1, G: 1, B: 0.5, A: 1}) {
		t.Error("unexpected colors", got)
	}
}
