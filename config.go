package gwave

import (
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/geometry/ms2"
)

// Config describes the demo scene and window. The zero value is not valid;
// start from [DefaultConfig].
type Config struct {
	Window WindowConfig `toml:"window"`
	Wave   WaveConfig   `toml:"wave"`
	Sphere SphereConfig `toml:"sphere"`
	Plane  PlaneConfig  `toml:"plane"`
	Light  LightConfig  `toml:"light"`
	Camera CameraConfig `toml:"camera"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	// Panel enables drawing of the control panel overlay.
	Panel bool `toml:"panel"`
}

// WaveConfig holds the initial [Params].
type WaveConfig struct {
	Frequency [2]float32 `toml:"frequency"`
	Amplitude [2]float32 `toml:"amplitude"`
	Color     string     `toml:"color"`
	Wireframe bool       `toml:"wireframe"`
}

type SphereConfig struct {
	Radius         float32    `toml:"radius"`
	WidthSegments  int        `toml:"width_segments"`
	HeightSegments int        `toml:"height_segments"`
	Position       [3]float32 `toml:"position"`
	// Material is "wave" or "toon".
	Material  string `toml:"material"`
	ToonColor string `toml:"toon_color"`
}

type PlaneConfig struct {
	Width          float32 `toml:"width"`
	Height         float32 `toml:"height"`
	WidthSegments  int     `toml:"width_segments"`
	HeightSegments int     `toml:"height_segments"`
	Color          string  `toml:"color"`
}

type LightConfig struct {
	Position         [3]float32 `toml:"position"`
	Intensity        float32    `toml:"intensity"`
	AmbientIntensity float32    `toml:"ambient_intensity"`
	ShadowMapSize    int        `toml:"shadow_map_size"`
	ShadowFar        float32    `toml:"shadow_far"`
	NormalBias       float32    `toml:"normal_bias"`
}

type CameraConfig struct {
	// FOV is the vertical field of view in degrees.
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
	Damping  float32    `toml:"damping"`
}

// DefaultConfig returns the configuration of the demo scene.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1024, Height: 768, Title: "gwave", Panel: true},
		Wave: WaveConfig{
			Frequency: [2]float32{DefaultFrequency.X, DefaultFrequency.Y},
			Amplitude: [2]float32{DefaultAmplitude.X, DefaultAmplitude.Y},
			Color:     DefaultColorHex,
			Wireframe: true,
		},
		Sphere: SphereConfig{
			Radius:         1,
			WidthSegments:  32,
			HeightSegments: 32,
			Position:       [3]float32{0, 2, 0},
			Material:       "wave",
			ToonColor:      "teal",
		},
		Plane: PlaneConfig{
			Width: 10, Height: 10,
			WidthSegments: 20, HeightSegments: 20,
			Color: "white",
		},
		Light: LightConfig{
			Position:         [3]float32{0.25, 2, 2.25},
			Intensity:        1,
			AmbientIntensity: 0.5,
			ShadowMapSize:    1024,
			ShadowFar:        15,
			NormalBias:       0.05,
		},
		Camera: CameraConfig{
			FOV: 75, Near: 0.1, Far: 100,
			Position: [3]float32{4, 4, 6},
			Target:   [3]float32{0, 1, 0},
			Damping:  0.05,
		},
	}
}

// LoadConfig decodes a TOML document over [DefaultConfig]. Keys absent from
// the document keep their default value. Unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks cfg for values the demo cannot run with.
func (cfg Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		add("window: invalid size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	// Initial values may sit outside the control range, as the default
	// frequency of 20 does. Controls clamp on first interaction.
	for i, v := range [4]float32{cfg.Wave.Frequency[0], cfg.Wave.Frequency[1], cfg.Wave.Amplitude[0], cfg.Wave.Amplitude[1]} {
		if v < 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
			add("wave: value %d (%g) must be finite and non-negative", i, v)
		}
	}
	if _, err := ParseColor(cfg.Wave.Color); err != nil {
		add("wave: %w", err)
	}
	s := cfg.Sphere
	if s.Radius <= 0 {
		add("sphere: radius must be positive")
	}
	if s.WidthSegments < 3 || s.HeightSegments < 2 {
		add("sphere: need at least 3 width and 2 height segments, got %d, %d", s.WidthSegments, s.HeightSegments)
	}
	if s.Material != "wave" && s.Material != "toon" {
		add("sphere: unknown material %q", s.Material)
	}
	if _, err := ParseColor(s.ToonColor); err != nil {
		add("sphere: toon color: %w", err)
	}
	p := cfg.Plane
	if p.Width <= 0 || p.Height <= 0 || p.WidthSegments < 1 || p.HeightSegments < 1 {
		add("plane: invalid dimensions")
	}
	if _, err := ParseColor(p.Color); err != nil {
		add("plane: %w", err)
	}
	for i, v := range cfg.Light.Position {
		if v < MinLight || v > MaxLight {
			add("light: position %d (%g) outside [%d, %d]", i, v, MinLight, MaxLight)
		}
	}
	c := cfg.Camera
	if c.FOV <= 0 || c.FOV >= 180 {
		add("camera: fov %g outside (0, 180)", c.FOV)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		add("camera: invalid clip planes near=%g far=%g", c.Near, c.Far)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		add("camera: damping %g outside (0, 1]", c.Damping)
	}
	if c.Position == c.Target {
		add("camera: position equals target")
	}
	return errors.Join(errs...)
}

// Params returns the initial parameter set described by the wave section.
func (cfg Config) Params() (Params, error) {
	c, err := ParseColor(cfg.Wave.Color)
	if err != nil {
		return Params{}, err
	}
	return Params{
		Color:     c,
		ColorHex:  cfg.Wave.Color,
		Frequency: ms2.Vec{X: cfg.Wave.Frequency[0], Y: cfg.Wave.Frequency[1]},
		Amplitude: ms2.Vec{X: cfg.Wave.Amplitude[0], Y: cfg.Wave.Amplitude[1]},
		Wireframe: cfg.Wave.Wireframe,
	}, nil
}
