package gwave_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soypat/gwave"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := gwave.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p != gwave.DefaultParams() {
		t.Errorf("default config params differ from DefaultParams:\n%+v\n%+v", p, gwave.DefaultParams())
	}
}

func TestLoadConfig(t *testing.T) {
	const doc = `
[wave]
frequency = [4.5, 1.0]
color = "#ff0000"

[sphere]
material = "toon"
`
	cfg, err := gwave.LoadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Wave.Frequency != [2]float32{4.5, 1} {
		t.Error("frequency not decoded", cfg.Wave.Frequency)
	}
	if cfg.Sphere.Material != "toon" {
		t.Error("material not decoded")
	}
	def := gwave.DefaultConfig()
	if cfg.Wave.Amplitude != def.Wave.Amplitude || cfg.Plane != def.Plane {
		t.Error("absent keys must keep defaults")
	}
	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Color != (gwave.Color{R: 1}) {
		t.Error("bad color", p.Color)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for _, doc := range []string{
		"[wave]\nfrequency = [-1.0, 5.0]\n",
		"[sphere]\nmaterial = \"glass\"\n",
		"[camera]\nnear = 10.0\nfar = 1.0\n",
		"[window]\nfullscreen = true\n", // Unknown key.
		"[light]\nposition = [0.0, 200.0, 0.0]\n",
		"not toml at all",
	} {
		_, err := gwave.LoadConfig(strings.NewReader(doc))
		if err == nil {
			t.Errorf("expected error for config:\n%s", doc)
		}
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	cfg := gwave.DefaultConfig()
	cfg.Wave.Amplitude = [2]float32{0.5, 2}
	var buf bytes.Buffer
	err := gwave.WriteConfig(&buf, cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := gwave.LoadConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n%+v\n%+v", got, cfg)
	}
}
