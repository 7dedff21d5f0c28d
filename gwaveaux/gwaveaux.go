// Package gwaveaux provides frontends for the wave demo built on OpenGL and
// GLFW, and an offline snapshot renderer. Users wanting a different window
// toolkit should drive an [app.App] with their own [glloop.Renderer].
package gwaveaux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"time"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/app"
	"github.com/soypat/gwave/glbuild"
	"github.com/soypat/gwave/gleval"
	"github.com/soypat/gwave/glloop"
	"github.com/soypat/gwave/glrender"
	"github.com/soypat/gwave/scene"
)

// UIConfig configures the GLFW frontend.
type UIConfig struct {
	// Width and Height of the window. Zero values use the app window config.
	Width  int
	Height int
	// Context cancels the frame loop when done. May be nil.
	Context context.Context
	// Silent disables logging of parameter changes.
	Silent bool
	// FPS caps the frame rate with a fixed interval instead of vertical
	// sync. Zero waits for the display refresh.
	FPS float64
}

// UI opens a window and runs the demo until the window is closed or the
// context is done. It must be called from the main thread.
func UI(a *app.App, cfg UIConfig) error {
	if a == nil {
		return errors.New("nil app")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = a.Config.Window.Width, a.Config.Window.Height
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.FPS < 0 || math.IsNaN(cfg.FPS) {
		return fmt.Errorf("invalid frame rate %v", cfg.FPS)
	}
	return ui(a, cfg)
}

// framePacer returns the ticker that paces frames at fps or nil when frames
// are paced by vertical sync.
func framePacer(fps float64) *glloop.IntervalTicker {
	if fps <= 0 {
		return nil
	}
	return glloop.NewIntervalTicker(fps)
}

// SnapshotConfig configures [Snapshot]. At least one output is required.
type SnapshotConfig struct {
	// Time is the elapsed time in seconds the sphere is evaluated at.
	Time float32
	// STLOutput receives the displaced sphere as binary STL.
	STLOutput io.Writer
	// GLSLOutput receives the generated programs in combined "#shader" format.
	GLSLOutput io.Writer
	// PNGOutput receives a wireframe picture of the scene as seen by the app camera.
	PNGOutput io.Writer
	// UseGPU displaces with the compute program instead of the CPU.
	UseGPU bool
	Silent bool
}

// Snapshot evaluates the wave sphere of a at a fixed time with the current
// store parameters and writes the requested outputs.
func Snapshot(a *app.App, cfg SnapshotConfig) (err error) {
	if cfg.STLOutput == nil && cfg.GLSLOutput == nil && cfg.PNGOutput == nil {
		return errors.New("Snapshot requires output parameter in config")
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	if cfg.GLSLOutput != nil {
		watch := stopwatch()
		n, err := WriteSources(cfg.GLSLOutput, glbuild.NewDefaultProgrammer())
		if err != nil {
			return fmt.Errorf("writing GLSL: %w", err)
		}
		log("wrote", n, "bytes of GLSL to", outputName(cfg.GLSLOutput, "GLSL output"), "in", watch())
	}
	if cfg.STLOutput == nil && cfg.PNGOutput == nil {
		return nil
	}

	watch := stopwatch()
	var d interface {
		gleval.Displacer
		Evaluations() uint64
	}
	if cfg.UseGPU {
		log("using GPU")
		terminate, err := gleval.Init1x1GLFW()
		if err != nil {
			return err
		}
		defer terminate()
		invoc := min(256, gleval.MaxComputeInvocations())
		cd, err := gleval.NewComputeDisplacer(gleval.ComputeConfig{InvocX: invoc})
		if err != nil {
			return err
		}
		defer cd.Delete()
		d = cd
	} else {
		log("using CPU")
		d = &gleval.CPUDisplacer{}
	}
	log("instantiating displacer took", watch())

	u := a.Store.Params().Uniforms(cfg.Time)
	mr, err := glrender.NewMeshRenderer(a.Sphere.Geometry, a.Sphere.Model(), d, u)
	if err != nil {
		return err
	}
	if cfg.STLOutput != nil {
		watch = stopwatch()
		triangles, err := glrender.RenderAll(mr, nil)
		if err != nil {
			return fmt.Errorf("rendering triangles: %w", err)
		}
		log("displaced", d.Evaluations(), "positions and rendered", len(triangles), "triangles in", watch())
		watch = stopwatch()
		_, err = glrender.WriteBinarySTL(cfg.STLOutput, triangles)
		if err != nil {
			return fmt.Errorf("writing STL file: %w", err)
		}
		log("wrote", outputName(cfg.STLOutput, "STL"), "in", watch())
	}
	if cfg.PNGOutput != nil {
		watch = stopwatch()
		world, err := mr.Positions(nil)
		if err != nil {
			return err
		}
		img, err := wireframeImage(a, world)
		if err != nil {
			return err
		}
		err = png.Encode(cfg.PNGOutput, img)
		if err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
		log("wrote", outputName(cfg.PNGOutput, "PNG"), "in", watch())
	}
	return nil
}

// WriteSources writes every program of the demo in combined "#shader" format.
func WriteSources(w io.Writer, programmer *glbuild.Programmer) (n int, err error) {
	var buf bytes.Buffer
	stages := []struct {
		header string
		write  func(io.Writer) (int, error)
	}{
		{"#shader vertex\n", programmer.WriteWaveVertex},
		{"#shader fragment\n", programmer.WriteWaveFragment},
		{"#shader vertex\n", programmer.WriteLitVertex},
		{"#shader fragment\n", programmer.WriteToonFragment},
		{"#shader fragment\n", programmer.WriteGroundFragment},
		{"#shader vertex\n", programmer.WritePanelVertex},
		{"#shader fragment\n", programmer.WritePanelFragment},
		{"", programmer.WriteComputeDisplace},
	}
	for _, stage := range stages {
		buf.WriteString(stage.header)
		_, err = stage.write(&buf)
		if err != nil {
			return n, err
		}
		buf.WriteByte('\n')
		ngot, err := w.Write(buf.Bytes())
		n += ngot
		if err != nil {
			return n, err
		}
		buf.Reset()
	}
	return n, nil
}

func wireframeImage(a *app.App, sphereWorld []ms3.Vec) (*image.RGBA, error) {
	cfg := a.Config.Window
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	bg := a.Scene.Background
	draw.Draw(img, img.Bounds(), image.NewUniform(bg.RGBA8()), image.Point{}, draw.Src)
	ir := glrender.ImageRenderer{
		Viewport: glrender.Viewport{View: a.Camera.View(), Projection: a.Camera.Projection()},
	}
	plane := a.Plane.Geometry
	planeWorld := make([]ms3.Vec, len(plane.Positions))
	model := a.Plane.Model()
	for i, p := range plane.Positions {
		planeWorld[i] = model.MulPosition(p)
	}
	planeColor := gwave.Color{R: 1, G: 1, B: 1}
	if basic, ok := a.Plane.Material.(*scene.BasicMaterial); ok {
		planeColor = basic.Color
	}
	err := ir.DrawEdges(img, planeWorld, []gwave.RGBA{planeColor.RGBA()}, plane.AppendEdges(nil))
	if err != nil {
		return nil, err
	}
	sphere := a.Sphere.Geometry
	colors := gleval.Colors(nil, sphere.UVs)
	err = ir.DrawEdges(img, sphereWorld, colors, sphere.AppendEdges(nil))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func outputName(w io.Writer, fallback string) string {
	if fp, ok := w.(*os.File); ok {
		return fp.Name()
	}
	return fallback
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
