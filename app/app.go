// Package app builds the wave demo: parameter store, scene, camera, orbit
// controls and control panel. An [App] is the single context handed to the
// frontends, there is no package level state.
package app

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/glloop"
	"github.com/soypat/gwave/glrender"
	"github.com/soypat/gwave/scene"
	"github.com/soypat/gwave/tweak"
)

// Node names of the demo scene.
const (
	NameAmbient = "ambient"
	NameLight   = "directional"
	NameSphere  = "sphere"
	NamePlane   = "ground"
)

// App holds everything a frontend needs to run the demo.
type App struct {
	Config gwave.Config
	Store  *gwave.Store
	// Clock is read once per frame. It may be replaced before calling NewLoop.
	Clock    gwave.Clock
	Scene    *scene.Scene
	Camera   *scene.Camera
	Controls *scene.OrbitControls
	Panel    *tweak.Panel
	FPS      *tweak.FPSGraph

	Sphere  *scene.Mesh
	Plane   *scene.Mesh
	Light   *scene.DirectionalLight
	Ambient *scene.AmbientLight
	// Wave receives the per-frame uniforms even when the sphere is drawn
	// with the toon material.
	Wave *scene.WaveMaterial
}

// New builds the demo scene described by cfg.
func New(cfg gwave.Config) (*App, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	a := &App{
		Config: cfg,
		Store:  gwave.NewStore(params),
		Clock:  gwave.NewWallClock(),
		Scene:  scene.New(),
		Wave:   scene.NewWaveMaterial(params),
		FPS:    &tweak.FPSGraph{},
	}
	err = a.buildScene()
	if err != nil {
		return nil, err
	}
	a.Camera = scene.NewCamera(cfg.Camera, float32(cfg.Window.Width)/float32(cfg.Window.Height))
	a.Controls = scene.NewOrbitControls(a.Camera)
	a.Controls.Damping = cfg.Camera.Damping
	err = a.buildPanel()
	if err != nil {
		return nil, fmt.Errorf("building panel: %w", err)
	}
	return a, nil
}

func (a *App) buildScene() error {
	cfg := a.Config
	white := gwave.Color{R: 1, G: 1, B: 1}
	a.Ambient = &scene.AmbientLight{Name: NameAmbient, Color: white, Intensity: cfg.Light.AmbientIntensity}
	a.Light = &scene.DirectionalLight{
		Name:          NameLight,
		Position:      vec(cfg.Light.Position),
		Color:         white,
		Intensity:     cfg.Light.Intensity,
		CastShadow:    true,
		ShadowMapSize: cfg.Light.ShadowMapSize,
		ShadowFar:     cfg.Light.ShadowFar,
		NormalBias:    cfg.Light.NormalBias,
	}

	sc := cfg.Sphere
	sphereGeom, err := glrender.NewSphere(sc.Radius, sc.WidthSegments, sc.HeightSegments)
	if err != nil {
		return err
	}
	var sphereMat scene.Material = a.Wave
	if sc.Material == "toon" {
		c, err := gwave.ParseColor(sc.ToonColor)
		if err != nil {
			return err
		}
		sphereMat = &scene.ToonMaterial{Color: c}
	}
	a.Sphere = &scene.Mesh{
		Name:       NameSphere,
		Geometry:   &sphereGeom,
		Material:   sphereMat,
		Position:   vec(sc.Position),
		CastShadow: true,
	}

	pc := cfg.Plane
	planeGeom, err := glrender.NewPlane(pc.Width, pc.Height, pc.WidthSegments, pc.HeightSegments)
	if err != nil {
		return err
	}
	planeColor, err := gwave.ParseColor(pc.Color)
	if err != nil {
		return err
	}
	a.Plane = &scene.Mesh{
		Name:          NamePlane,
		Geometry:      &planeGeom,
		Material:      &scene.BasicMaterial{Color: planeColor},
		Rotation:      ms3.Vec{X: -math32.Pi / 2},
		ReceiveShadow: true,
	}
	a.Scene.Add(a.Ambient, a.Light, a.Sphere, a.Plane)
	return nil
}

func (a *App) buildPanel() error {
	p := tweak.New(a.Config.Window.Title)
	lightOpts := tweak.InputOpts{Min: gwave.MinLight, Max: gwave.MaxLight, Step: gwave.LightStep}
	light := p.AddFolder(tweak.FolderConfig{Title: "Directional Light"})
	for _, key := range []string{"x", "y", "z"} {
		_, err := light.AddInput(a.Light, key, lightOpts)
		if err != nil {
			return err
		}
	}
	waveOpts := func(label string) tweak.InputOpts {
		return tweak.InputOpts{Label: label, Min: gwave.MinWave, Max: gwave.MaxWave, Step: gwave.WaveStep}
	}
	for _, axis := range []struct {
		title     string
		freq, amp string
	}{
		{title: "X", freq: gwave.KeyFrequencyX, amp: gwave.KeyAmplitudeX},
		{title: "Y", freq: gwave.KeyFrequencyY, amp: gwave.KeyAmplitudeY},
	} {
		f := p.AddFolder(tweak.FolderConfig{Title: axis.title, Expanded: true})
		_, err := f.AddInput(a.Store, axis.freq, waveOpts("Frequency"))
		if err != nil {
			return err
		}
		_, err = f.AddInput(a.Store, axis.amp, waveOpts("Amplitude"))
		if err != nil {
			return err
		}
	}
	_, err := p.AddColor(a.Store, "Color")
	if err != nil {
		return err
	}
	_, err = p.AddToggle(a.Store, gwave.KeyWireframe, "Wireframe")
	if err != nil {
		return err
	}
	p.FPS = a.FPS
	a.Panel = p
	return nil
}

// NewLoop returns a frame loop rendering the app scene with r. ticker may be
// nil for frontends that call Step themselves.
func (a *App) NewLoop(ticker glloop.Ticker, r glloop.Renderer) (*glloop.Loop, error) {
	if r == nil {
		return nil, errors.New("nil renderer")
	}
	return glloop.NewLoop(glloop.Config{
		Clock:    a.Clock,
		Params:   a.Store,
		Uniforms: a.Wave,
		Controls: a.Controls,
		Renderer: r,
		Scene:    a.Scene,
		Camera:   a.Camera,
		Perf:     a.FPS,
		Ticker:   ticker,
	})
}

// Changes returns a channel that receives store changes. Changes are dropped
// while the channel buffer is full.
func (a *App) Changes(buffer int) <-chan gwave.Change {
	ch := make(chan gwave.Change, max(buffer, 1))
	a.Store.Subscribe(ch)
	return ch
}

func vec(a [3]float32) ms3.Vec {
	return ms3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
