// Package glloop drives the per-frame cycle of the wave demo: read the clock,
// write the wave uniforms, update the orbit controls and render, once per
// display refresh.
package glloop

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/soypat/gwave"
	"github.com/soypat/gwave/scene"
)

// ErrClosed is returned by a [Ticker] when the host stops providing frames,
// for example when the window is closed.
var ErrClosed = errors.New("ticker closed")

// State of a [Loop].
type State uint32

const (
	// StateIdle is the state before the first frame is rendered.
	StateIdle State = iota
	// StateRunning is entered on Run and never left.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	}
	return "State(?)"
}

// Ticker blocks until the host is ready for the next frame.
type Ticker interface {
	Next(ctx context.Context) error
}

// ParamSource provides the current parameter snapshot. [*gwave.Store] implements it.
type ParamSource interface {
	Params() gwave.Params
}

// UniformSetter receives the per-frame uniforms. [*scene.WaveMaterial] implements it.
type UniformSetter interface {
	SetUniforms(p gwave.Params, t float32)
}

// Updater is a per-frame update such as [*scene.OrbitControls].
type Updater interface {
	Update() bool
}

// Renderer draws the scene as seen by the camera.
type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera) error
}

// Span measures a frame. Begin is called before any frame work and End after rendering.
type Span interface {
	Begin()
	End()
}

// Config holds the collaborators of a [Loop]. Perf and Ticker are optional:
// without a Ticker only Step can be used.
type Config struct {
	Clock    gwave.Clock
	Params   ParamSource
	Uniforms UniformSetter
	Controls Updater
	Renderer Renderer
	Scene    *scene.Scene
	Camera   *scene.Camera
	Perf     Span
	Ticker   Ticker
}

// Loop renders frames. Exactly one frame is in flight at a time.
type Loop struct {
	cfg    Config
	state  atomic.Uint32
	frames atomic.Uint64
}

// NewLoop validates cfg and returns an idle loop.
func NewLoop(cfg Config) (*Loop, error) {
	var errs []error
	if cfg.Clock == nil {
		errs = append(errs, errors.New("nil Clock"))
	}
	if cfg.Params == nil {
		errs = append(errs, errors.New("nil ParamSource"))
	}
	if cfg.Uniforms == nil {
		errs = append(errs, errors.New("nil UniformSetter"))
	}
	if cfg.Controls == nil {
		errs = append(errs, errors.New("nil Controls"))
	}
	if cfg.Renderer == nil {
		errs = append(errs, errors.New("nil Renderer"))
	}
	if cfg.Scene == nil || cfg.Camera == nil {
		errs = append(errs, errors.New("nil Scene or Camera"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Loop{cfg: cfg}, nil
}

// State returns the current state of the loop.
func (l *Loop) State() State { return State(l.state.Load()) }

// Frames returns the amount of successfully rendered frames.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Step renders a single frame. Render errors are returned unmodified.
func (l *Loop) Step() error {
	cfg := &l.cfg
	if cfg.Perf != nil {
		cfg.Perf.Begin()
	}
	t := cfg.Clock.ElapsedTime()
	cfg.Uniforms.SetUniforms(cfg.Params.Params(), t)
	cfg.Controls.Update()
	err := cfg.Renderer.Render(cfg.Scene, cfg.Camera)
	if cfg.Perf != nil {
		cfg.Perf.End()
	}
	if err != nil {
		return err
	}
	l.frames.Add(1)
	return nil
}

// Run renders the first frame immediately and then one frame per tick until
// ctx is done, the ticker closes or a frame fails. Closing of the ticker is
// a clean exit and returns nil. Run may be called only once.
func (l *Loop) Run(ctx context.Context) error {
	if l.cfg.Ticker == nil {
		return errors.New("Run requires a Ticker")
	}
	if !l.state.CompareAndSwap(uint32(StateIdle), uint32(StateRunning)) {
		return errors.New("loop already running")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := l.Step()
	for err == nil {
		err = l.cfg.Ticker.Next(ctx)
		if err == nil {
			err = l.Step()
		}
	}
	if errors.Is(err, ErrClosed) {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	return err
}
