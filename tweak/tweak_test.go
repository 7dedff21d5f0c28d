package tweak

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/soypat/gwave"
)

func newTestPanel(t *testing.T) (*Panel, *gwave.Store) {
	t.Helper()
	store := gwave.NewStore(gwave.DefaultParams())
	p := New("Controls")
	x := p.AddFolder(FolderConfig{Title: "X", Expanded: true})
	opts := InputOpts{Min: gwave.MinWave, Max: gwave.MaxWave, Step: gwave.WaveStep}
	for _, key := range []string{gwave.KeyFrequencyX, gwave.KeyAmplitudeX} {
		_, err := x.AddInput(store, key, opts)
		if err != nil {
			t.Fatal(err)
		}
	}
	_, err := p.AddColor(store, "Color")
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.AddToggle(store, gwave.KeyWireframe, "Wireframe")
	if err != nil {
		t.Fatal(err)
	}
	return p, store
}

func TestInputClampAndSnap(t *testing.T) {
	p, store := newTestPanel(t)
	rows := p.Rows()
	freq := rows[1].Binding
	if freq == nil || freq.Key() != gwave.KeyFrequencyX {
		t.Fatalf("unexpected row layout %+v", rows)
	}
	for _, test := range []struct {
		in, want float32
	}{
		{in: 3.14, want: 3.1},
		{in: 3.16, want: 3.2},
		{in: -5, want: 0},
		{in: 11, want: 10},
	} {
		err := freq.Input(test.in)
		if err != nil {
			t.Fatal(err)
		}
		got := store.Params().Frequency.X
		if diff := got - test.want; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("Input(%g): got %g, want %g", test.in, got, test.want)
		}
	}
	if freq.Input(float32NaN()) == nil {
		t.Error("expected error on NaN input")
	}
}

func TestNudgeFromOutOfRange(t *testing.T) {
	p, store := newTestPanel(t)
	p.Select(1)
	_, row := p.Selected()
	if row.Binding == nil || row.Binding.Key() != gwave.KeyFrequencyX {
		t.Fatalf("expected frequency.x selected, got %+v", row)
	}
	// Default frequency of 20 lies above the control range.
	err := p.Nudge(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := store.Params().Frequency.X; got != gwave.MaxWave {
		t.Errorf("want clamped %d, got %g", gwave.MaxWave, got)
	}
	err = p.Nudge(-3)
	if err != nil {
		t.Fatal(err)
	}
	if got := row.Binding.Value(); got != "9.7" {
		t.Errorf("want 9.7, got %s", got)
	}
}

func TestToggleAndColorCycle(t *testing.T) {
	p, store := newTestPanel(t)
	rows := p.Rows()
	colorRow, toggleRow := rows[3], rows[4]
	if colorRow.Binding.Kind() != KindColor || toggleRow.Binding.Kind() != KindToggle {
		t.Fatal("unexpected row kinds")
	}
	p.Select(4)
	err := p.Activate()
	if err != nil {
		t.Fatal(err)
	}
	if store.Params().Wireframe {
		t.Error("wireframe should be off after toggle")
	}
	p.Select(-1)
	err = p.Activate()
	if err != nil {
		t.Fatal(err)
	}
	if got := store.ColorHex(); got != DefaultColorPresets[1] {
		t.Errorf("want %q after cycle, got %q", DefaultColorPresets[1], got)
	}
	err = colorRow.Binding.Nudge(-2)
	if err != nil {
		t.Fatal(err)
	}
	if got := store.ColorHex(); got != DefaultColorPresets[len(DefaultColorPresets)-1] {
		t.Errorf("cycle back did not wrap, got %q", got)
	}
	if c := store.Params().Color; c != (gwave.Color{}) {
		t.Errorf("want black, got %+v", c)
	}
}

func TestColorCycleOffPreset(t *testing.T) {
	for _, test := range []struct {
		steps int
		want  string
	}{
		{steps: 1, want: DefaultColorPresets[0]},
		{steps: -1, want: DefaultColorPresets[len(DefaultColorPresets)-1]},
		{steps: 2, want: DefaultColorPresets[1]},
		{steps: -2, want: DefaultColorPresets[len(DefaultColorPresets)-2]},
	} {
		p, store := newTestPanel(t)
		err := store.SetColorHex("#123456")
		if err != nil {
			t.Fatal(err)
		}
		err = p.Rows()[3].Binding.Nudge(test.steps)
		if err != nil {
			t.Fatal(err)
		}
		if got := store.ColorHex(); got != test.want {
			t.Errorf("steps=%d: want %q, got %q", test.steps, test.want, got)
		}
	}
}

func TestRowsCollapse(t *testing.T) {
	p, _ := newTestPanel(t)
	if n := len(p.Rows()); n != 5 {
		t.Fatalf("want 5 rows expanded, got %d", n)
	}
	p.Dirty()
	err := p.Activate() // First row is the X folder.
	if err != nil {
		t.Fatal(err)
	}
	rows := p.Rows()
	if len(rows) != 3 {
		t.Fatalf("want 3 rows collapsed, got %d", len(rows))
	}
	if !p.Dirty() {
		t.Error("collapse should mark panel dirty")
	}
	if p.Dirty() {
		t.Error("dirty flag not cleared")
	}
	p.Select(-1)
	idx, row := p.Selected()
	if idx != 2 || row.Binding.Kind() != KindToggle {
		t.Errorf("selection did not wrap to last row: %d", idx)
	}
}

func TestAddInputValidation(t *testing.T) {
	store := gwave.NewStore(gwave.DefaultParams())
	p := New("")
	_, err := p.AddInput(store, gwave.KeyAmplitudeY, InputOpts{Min: 1, Max: 0, Step: 0.1})
	if err == nil {
		t.Error("expected error on inverted range")
	}
	_, err = p.AddInput(store, "nope", InputOpts{Min: 0, Max: 1, Step: 0.1})
	if err == nil {
		t.Error("expected error on unknown key")
	}
	b, err := p.AddInput(store, gwave.KeyAmplitudeY, InputOpts{Min: 0, Max: 1, Step: 0.01})
	if err != nil {
		t.Fatal(err)
	}
	if b.Label() != gwave.KeyAmplitudeY {
		t.Errorf("label should default to key, got %q", b.Label())
	}
	if b.Value() != "0.10" {
		t.Errorf("want two decimals, got %q", b.Value())
	}
}

func TestFPSGraph(t *testing.T) {
	var now time.Time
	now = now.Add(time.Hour)
	g := FPSGraph{Now: func() time.Time { return now }}
	for i := 0; i < 10; i++ {
		g.Begin()
		now = now.Add(4 * time.Millisecond)
		g.End()
		now = now.Add(16 * time.Millisecond)
	}
	if fps := g.FPS(); fps < 49.9 || fps > 50.1 {
		t.Errorf("want 50 FPS, got %g", fps)
	}
	if ft := g.FrameTime(); ft != 4*time.Millisecond {
		t.Errorf("want 4ms frame time, got %s", ft)
	}
	iv := g.AppendIntervals(nil)
	if len(iv) != 9 {
		t.Errorf("want 9 intervals, got %d", len(iv))
	}
	for i := 0; i < 2*fpsSamples; i++ {
		g.Begin()
		g.End()
		now = now.Add(10 * time.Millisecond)
	}
	if n := len(g.AppendIntervals(nil)); n != fpsSamples {
		t.Errorf("ring should hold %d samples, got %d", fpsSamples, n)
	}
	if fps := g.FPS(); fps < 99.9 || fps > 100.1 {
		t.Errorf("want 100 FPS, got %g", fps)
	}
}

func TestDraw(t *testing.T) {
	face, err := NewFace(12)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := newTestPanel(t)
	p.FPS = &FPSGraph{}
	sz := p.Size(face)
	if sz.X != p.Width || sz.Y <= 0 {
		t.Fatalf("bad panel size %v", sz)
	}
	img := image.NewRGBA(image.Rectangle{Max: sz})
	p.Draw(img, face)
	if img.RGBAAt(0, 0) == (color.RGBA{}) {
		t.Error("background not drawn")
	}
	// White color swatch must show up somewhere.
	found := false
	for i := 0; i+3 < len(img.Pix) && !found; i += 4 {
		found = img.Pix[i] == 0xff && img.Pix[i+1] == 0xff && img.Pix[i+2] == 0xff
	}
	if !found {
		t.Error("color swatch not drawn")
	}
}

func float32NaN() float32 {
	var zero float32
	return zero / zero
}
