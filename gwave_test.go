package gwave_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

func TestDisplaceYOffset(t *testing.T) {
	freq := ms2.Vec{X: 20, Y: 5}
	amp := ms2.Vec{X: 0.1, Y: 0.1}
	got := gwave.Displace(ms3.Vec{X: 1}, freq, amp, 0)
	want := math32.Sin(20) * 0.1
	if got.Y != want {
		t.Errorf("y-offset: want %v, got %v", want, got.Y)
	}
	wantX := 1 + math32.Cos(want*5)*0.1
	if math32.Abs(got.X-wantX) > 1e-6 {
		t.Errorf("x: want %v, got %v", wantX, got.X)
	}
	if got.Z != 0 {
		t.Error("z must not be displaced, got", got.Z)
	}
}

func TestDisplaceIdempotent(t *testing.T) {
	freq := ms2.Vec{X: 3.3, Y: 7.1}
	amp := ms2.Vec{X: 2, Y: 0.4}
	for _, p := range []ms3.Vec{{}, {X: 1, Y: -2, Z: 3}, {X: -100, Y: 50, Z: 0.5}} {
		for _, tm := range []float32{0, 0.5, 1e3} {
			a := gwave.Displace(p, freq, amp, tm)
			b := gwave.Displace(p, freq, amp, tm)
			if math32.Float32bits(a.X) != math32.Float32bits(b.X) ||
				math32.Float32bits(a.Y) != math32.Float32bits(b.Y) ||
				math32.Float32bits(a.Z) != math32.Float32bits(b.Z) {
				t.Errorf("non identical results for %v t=%v: %v %v", p, tm, a, b)
			}
		}
	}
}

func TestDisplaceZeroAmplitude(t *testing.T) {
	p := ms3.Vec{X: 0.3, Y: 0.7, Z: -1}
	got := gwave.Displace(p, ms2.Vec{X: 10, Y: 10}, ms2.Vec{}, 12.5)
	if got != p {
		t.Errorf("zero amplitude should not displace, got %v want %v", got, p)
	}
}

func TestFragColor(t *testing.T) {
	for _, test := range []struct {
		uv   ms2.Vec
		want gwave.RGBA
	}{
		{uv: ms2.Vec{}, want: gwave.RGBA{R: 0, G: 0, B: 0.5, A: 1}},
		{uv: ms2.Vec{X: 1, Y: 1}, want: gwave.RGBA{R: 1, G: 1, B: 0.5, A: 1}},
		{uv: ms2.Vec{X: 0.25, Y: 0.75}, want: gwave.RGBA{R: 0.25, G: 0.75, B: 0.5, A: 1}},
	} {
		got := gwave.FragColor(test.uv)
		if got != test.want {
			t.Errorf("uv %v: want %v, got %v", test.uv, test.want, got)
		}
	}
}

func TestFrequencyChangeNotStale(t *testing.T) {
	store := gwave.NewStore(gwave.DefaultParams())
	pos := ms3.Vec{X: 0.05}
	const tm = 0.3
	const delta = 0.1
	err := store.SetFloat(gwave.KeyFrequencyX, store.Params().Frequency.X+delta)
	if err == nil {
		t.Fatal("expected default frequency 20 plus delta to be out of range")
	}
	// Work inside the control range.
	err = store.SetFloat(gwave.KeyFrequencyX, 2)
	if err != nil {
		t.Fatal(err)
	}
	p := store.Params()
	before := gwave.Displace(pos, p.Frequency, p.Amplitude, tm).Y
	err = store.SetFloat(gwave.KeyFrequencyX, 2+delta)
	if err != nil {
		t.Fatal(err)
	}
	p = store.Params()
	after := gwave.Displace(pos, p.Frequency, p.Amplitude, tm).Y
	// d/dfx sin(x*fx+t)*ax = x*ax*cos(x*fx+t).
	derivSign := math32.Signbit(pos.X * p.Amplitude.X * math32.Cos(pos.X*2+tm))
	if after == before {
		t.Fatal("frequency change did not change displacement")
	}
	if math32.Signbit(after-before) != derivSign {
		t.Errorf("displacement moved against derivative sign: before=%v after=%v", before, after)
	}
}

func TestShadeTopVertex(t *testing.T) {
	// Sphere of radius 1 placed at (0,2,0). Top vertex at local (0,1,0).
	model := ms3.TranslatingMat4(ms3.Vec{Y: 2})
	v := gwave.Vertex{Pos: ms3.Vec{Y: 1}, UV: ms2.Vec{X: 0.5, Y: 1}}
	pos, col := gwave.Shade(v, model, gwave.DefaultParams(), 1)
	const tol = 1e-5
	wantY := 3 + math32.Sin(1)*0.1
	if math32.Abs(pos.Y-wantY) > tol {
		t.Errorf("top vertex y: want %v, got %v", wantY, pos.Y)
	}
	wantX := math32.Cos(wantY*5+1) * 0.1
	if math32.Abs(pos.X-wantX) > tol {
		t.Errorf("top vertex x: want %v, got %v", wantX, pos.X)
	}
	if col != (gwave.RGBA{R: 0.5, G: 1, B: 0.5, A: 1}) {
		t.Error("unexpected color", col)
	}
}

func TestProjectViewOffset(t *testing.T) {
	view := gwave.LookAtMat4(ms3.Vec{Z: 5}, ms3.Vec{}, ms3.Vec{Y: 1})
	proj := gwave.PerspectiveMat4(math32.Pi/2, 1, 0.1, 100)
	ndc, w := gwave.Project(ms3.Vec{}, view, proj)
	if w <= 0 {
		t.Fatal("point in front of camera has non-positive w", w)
	}
	// Origin sits 5 units away; fov 90 deg means ndc.y = offset/distance.
	const tol = 1e-5
	if math32.Abs(ndc.Y-gwave.ViewOffsetY/5) > tol {
		t.Errorf("want ndc.y=%v, got %v", gwave.ViewOffsetY/5, ndc.Y)
	}
	if math32.Abs(ndc.X) > tol {
		t.Errorf("want ndc.x=0, got %v", ndc.X)
	}
	_, w = gwave.Project(ms3.Vec{Z: 10}, view, proj)
	if w > 0 {
		t.Error("point behind camera should have non-positive w", w)
	}
}

func TestLookAtPerspective(t *testing.T) {
	const tol = 1e-6
	eye := ms3.Vec{X: 1, Y: 2, Z: 3}
	view := gwave.LookAtMat4(eye, ms3.Vec{X: 1, Y: 2}, ms3.Vec{Y: 1})
	// Camera looking down -Z from eye is a pure translation by -eye.
	if !ms3.EqualMat4(view, ms3.TranslatingMat4(ms3.Scale(-1, eye)), tol) {
		t.Errorf("unexpected view matrix %v", view.Array())
	}
	got := view.MulPosition(ms3.Vec{X: 1, Y: 2, Z: -1})
	if want := (ms3.Vec{Z: -4}); ms3.Norm(ms3.Sub(got, want)) > tol {
		t.Errorf("want %v, got %v", want, got)
	}
	proj := gwave.PerspectiveMat4(math32.Pi/2, 2, 1, 10)
	a := proj.Array()
	if math32.Abs(a[0]-0.5) > tol || math32.Abs(a[5]-1) > tol || a[14] != -1 || a[15] != 0 {
		t.Errorf("unexpected projection %v", a)
	}
	// Near and far planes map to -1 and 1 in ndc.
	for _, z := range []float32{-1, -10} {
		ndc, w := gwave.Project(ms3.Vec{Y: -gwave.ViewOffsetY, Z: z}, ms3.IdentityMat4(), proj)
		if w != -z {
			t.Errorf("z=%v: want w=%v, got %v", z, -z, w)
		}
		want := float32(-1)
		if z == -10 {
			want = 1
		}
		if math32.Abs(ndc.Z-want) > 1e-5 {
			t.Errorf("z=%v: want ndc.z=%v, got %v", z, want, ndc.Z)
		}
	}
}

func TestManualClock(t *testing.T) {
	var c gwave.ManualClock
	if c.ElapsedTime() != 0 {
		t.Fatal("clock must start at zero")
	}
	c.Advance(0.5)
	c.Advance(-1)
	c.Advance(0.5)
	if got := c.ElapsedTime(); got != 1 {
		t.Errorf("want 1s elapsed, got %v", got)
	}
	if c.Reads() != 2 {
		t.Errorf("want 2 reads, got %d", c.Reads())
	}
	wall := gwave.NewWallClock()
	if wall.ElapsedTime() < 0 {
		t.Error("negative wall elapsed time")
	}
}
