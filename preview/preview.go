// Package preview runs the wave demo in an Ebitengine window using the CPU
// wireframe renderer. It needs no OpenGL 4 context and serves as a fallback
// where the GLFW frontend cannot run.
package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/app"
	"github.com/soypat/gwave/glloop"
	"github.com/soypat/gwave/tweak"
	"github.com/soypat/gwave/wire"
	"golang.org/x/image/font"
)

const (
	orbitSensitivity = 0.005
	zoomPerScroll    = 0.95
)

// Config configures the preview window.
type Config struct {
	// Width and Height of the window. Zero values use the app window config.
	Width  int
	Height int
	// Silent disables logging of parameter changes.
	Silent bool
}

// Game implements [ebiten.Game]. Each Draw renders one frame of the loop.
type Game struct {
	a        *app.App
	loop     *glloop.Loop
	renderer wire.Renderer
	canvas   canvas
	changes  <-chan gwave.Change
	log      func(args ...any)

	face      font.Face
	panelRGBA *image.RGBA
	panelImg  *ebiten.Image
	showPanel bool

	dragging bool
	lastX    int
	lastY    int
	// err is set by Draw, which cannot return errors, and returned by the next Update.
	err error
}

var _ ebiten.Game = (*Game)(nil) // Interface implementation compile-time check.

// New returns a game driving the frame loop of a.
func New(a *app.App, cfg Config) (*Game, error) {
	if a == nil {
		return nil, errors.New("nil app")
	}
	face, err := tweak.NewFace(13)
	if err != nil {
		return nil, err
	}
	g := &Game{
		a:         a,
		face:      face,
		showPanel: a.Config.Window.Panel,
		changes:   a.Changes(32),
		log: func(args ...any) {
			if !cfg.Silent {
				fmt.Println(args...)
			}
		},
	}
	g.renderer.Target = &g.canvas
	g.loop, err = a.NewLoop(nil, &g.renderer)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Run opens the preview window and blocks until it is closed.
func Run(a *app.App, cfg Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = a.Config.Window.Width, a.Config.Window.Height
	}
	g, err := New(a, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(a.Config.Window.Title + " preview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Frames returns the amount of frames rendered.
func (g *Game) Frames() uint64 { return g.loop.Frames() }

// Update handles input. It returns errors of the last frame.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging {
			dx, dy := float32(x-g.lastX), float32(y-g.lastY)
			g.a.Controls.Rotate(-dx*orbitSensitivity, -dy*orbitSensitivity)
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.a.Controls.Zoom(math32.Pow(zoomPerScroll, float32(wy)))
	}
	return g.handleKeys()
}

func (g *Game) handleKeys() error {
	steps := 1
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		steps = 10
	}
	p := g.a.Panel
	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyH), inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.showPanel = !g.showPanel
	case repeating(ebiten.KeyArrowUp):
		p.Select(-1)
	case repeating(ebiten.KeyArrowDown):
		p.Select(1)
	case repeating(ebiten.KeyArrowLeft):
		err = p.Nudge(-steps)
	case repeating(ebiten.KeyArrowRight):
		err = p.Nudge(steps)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		err = p.Activate()
	}
	if err != nil {
		g.log("panel:", err)
	}
	return nil
}

// repeating reports key presses with auto repeat after a short hold.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > 20 && d%4 == 0)
}

// Draw renders a frame of the loop onto screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.img = screen
	err := g.loop.Step()
	if err != nil && g.err == nil {
		g.err = err
		return
	}
	g.drainChanges()
	if g.showPanel {
		g.drawPanel(screen)
	}
}

// Layout implements [ebiten.Game]. The screen matches the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	p := g.a.Panel
	sz := p.Size(g.face)
	// The FPS graph changes every frame so the panel is always redrawn.
	if g.panelRGBA == nil || g.panelRGBA.Bounds().Size() != sz {
		g.panelRGBA = image.NewRGBA(image.Rectangle{Max: sz})
		if g.panelImg != nil {
			g.panelImg.Deallocate()
		}
		g.panelImg = ebiten.NewImage(sz.X, sz.Y)
	} else {
		clear(g.panelRGBA.Pix)
	}
	p.Draw(g.panelRGBA, g.face)
	p.Dirty()
	g.panelImg.WritePixels(g.panelRGBA.Pix)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(screen.Bounds().Dx()-sz.X), 0)
	screen.DrawImage(g.panelImg, &op)
}

func (g *Game) drainChanges() {
	for {
		select {
		case c := <-g.changes:
			g.log(c.Field, "changed")
		default:
			return
		}
	}
}

// canvas adapts an ebiten image to [wire.Canvas].
type canvas struct {
	img *ebiten.Image
}

func (c *canvas) Size() (int, int) {
	if c.img == nil {
		return 0, 0
	}
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *canvas) Clear(col gwave.Color) {
	c.img.Fill(col.RGBA8())
}

func (c *canvas) StrokeLine(a, b ms2.Vec, col gwave.RGBA) {
	vector.StrokeLine(c.img, a.X, a.Y, b.X, b.Y, 1, col, true)
}
