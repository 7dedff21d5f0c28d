//go:build !tinygo && cgo

package gwaveaux

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/app"
	"github.com/soypat/gwave/glbuild"
	"github.com/soypat/gwave/glloop"
	"github.com/soypat/gwave/glrender"
	"github.com/soypat/gwave/scene"
	"github.com/soypat/gwave/tweak"
	"golang.org/x/image/font"
)

const (
	orbitSensitivity = 0.005
	zoomPerScroll    = 0.95
	// Panel is re-rasterized at least this often so the FPS graph moves.
	panelRefreshFrames = 20
)

func ui(a *app.App, cfg UIConfig) error {
	window, term, err := startGLFW(cfg.Width, cfg.Height, a.Config.Window.Title)
	if err != nil {
		return err
	}
	defer term()
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	r, err := newGLRenderer(a, window)
	if err != nil {
		return err
	}
	defer r.Delete()
	r.showPanel = a.Config.Window.Panel
	r.changes = a.Changes(32)
	r.log = log
	setCallbacks(window, a, r)

	ticker := &swapTicker{window: window, pace: framePacer(cfg.FPS)}
	if ticker.pace != nil {
		glfw.SwapInterval(0)
		defer ticker.pace.Stop()
	}
	loop, err := a.NewLoop(ticker, r)
	if err != nil {
		return err
	}
	return loop.Run(cfg.Context)
}

// swapTicker presents the rendered frame and waits for the next display
// refresh, or for pace when set.
type swapTicker struct {
	window *glfw.Window
	pace   *glloop.IntervalTicker
}

func (st *swapTicker) Next(ctx context.Context) error {
	st.window.SwapBuffers()
	glfw.PollEvents()
	if st.window.ShouldClose() {
		return glloop.ErrClosed
	}
	if st.pace != nil {
		return st.pace.Next(ctx)
	}
	return ctx.Err()
}

func setCallbacks(window *glfw.Window, a *app.App, r *glRenderer) {
	var (
		lastMouseX     float64
		lastMouseY     float64
		firstMouseMove = true
		isMousePressed = false
	)
	window.SetCursorPosCallback(func(w *glfw.Window, xpos float64, ypos float64) {
		if !isMousePressed {
			return
		}
		if firstMouseMove {
			lastMouseX = xpos
			lastMouseY = ypos
			firstMouseMove = false
		}
		deltaX := xpos - lastMouseX
		deltaY := ypos - lastMouseY
		a.Controls.Rotate(-float32(deltaX)*orbitSensitivity, -float32(deltaY)*orbitSensitivity)
		lastMouseX = xpos
		lastMouseY = ypos
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.Controls.Zoom(math32.Pow(zoomPerScroll, float32(yoff)))
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		if action == glfw.Press {
			isMousePressed = true
			firstMouseMove = true
			window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else if action == glfw.Release {
			isMousePressed = false
			window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		steps := 1
		if mods&glfw.ModShift != 0 {
			steps = 10
		}
		var err error
		p := a.Panel
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyH, glfw.KeyTab:
			if action == glfw.Press {
				r.showPanel = !r.showPanel
			}
		case glfw.KeyUp:
			p.Select(-1)
		case glfw.KeyDown:
			p.Select(1)
		case glfw.KeyLeft:
			err = p.Nudge(-steps)
		case glfw.KeyRight:
			err = p.Nudge(steps)
		case glfw.KeyEnter, glfw.KeySpace:
			if action == glfw.Press {
				err = p.Activate()
			}
		}
		if err != nil {
			r.log("panel:", err)
		}
	})
}

// glRenderer implements [glloop.Renderer] with OpenGL programs generated by glbuild.
type glRenderer struct {
	a      *app.App
	window *glfw.Window

	wave   glgl.Program
	toon   glgl.Program
	ground glgl.Program
	panel  glgl.Program
	meshes map[*scene.Mesh]*meshVAO

	panelVAO  uint32
	panelVBO  uint32
	panelTex  uint32
	panelImg  *image.RGBA
	face      font.Face
	showPanel bool
	frames    int

	changes <-chan gwave.Change
	log     func(args ...any)
}

var _ glloop.Renderer = (*glRenderer)(nil) // Interface implementation compile-time check.

type meshVAO struct {
	vao   uint32
	bufs  [4]uint32
	count int32
}

func newGLRenderer(a *app.App, window *glfw.Window) (_ *glRenderer, err error) {
	r := &glRenderer{a: a, window: window, meshes: make(map[*scene.Mesh]*meshVAO), log: func(...any) {}}
	defer func() {
		if err != nil {
			r.Delete()
		}
	}()
	programmer := glbuild.NewDefaultProgrammer()
	r.wave, err = compile(programmer.WriteWaveVertex, programmer.WriteWaveFragment)
	if err != nil {
		return nil, fmt.Errorf("wave program: %w", err)
	}
	r.toon, err = compile(programmer.WriteLitVertex, programmer.WriteToonFragment)
	if err != nil {
		return nil, fmt.Errorf("toon program: %w", err)
	}
	r.ground, err = compile(programmer.WriteLitVertex, programmer.WriteGroundFragment)
	if err != nil {
		return nil, fmt.Errorf("ground program: %w", err)
	}
	r.panel, err = compile(programmer.WritePanelVertex, programmer.WritePanelFragment)
	if err != nil {
		return nil, fmt.Errorf("panel program: %w", err)
	}
	for _, m := range a.Scene.Meshes() {
		err = r.addMesh(m)
		if err != nil {
			return nil, err
		}
	}
	r.face, err = tweak.NewFace(13)
	if err != nil {
		return nil, err
	}
	err = r.initPanel()
	if err != nil {
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	return r, glgl.Err()
}

// addMesh uploads m and registers it for drawing. m is registered only if
// the upload succeeds.
func (r *glRenderer) addMesh(m *scene.Mesh) error {
	prog, err := r.program(m.Material)
	if err != nil {
		return err
	}
	vao, err := newMeshVAO(prog, m.Geometry)
	if err != nil {
		return fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	r.meshes[m] = vao
	return nil
}

func (r *glRenderer) program(mat scene.Material) (glgl.Program, error) {
	switch mat.(type) {
	case *scene.WaveMaterial:
		return r.wave, nil
	case *scene.ToonMaterial:
		return r.toon, nil
	case *scene.BasicMaterial:
		return r.ground, nil
	}
	return glgl.Program{}, fmt.Errorf("unsupported material %T", mat)
}

// Delete releases all GL resources held by the renderer.
func (r *glRenderer) Delete() {
	for _, m := range r.meshes {
		m.delete()
	}
	clear(r.meshes)
	if r.panelTex != 0 {
		gl.DeleteTextures(1, &r.panelTex)
		gl.DeleteVertexArrays(1, &r.panelVAO)
		gl.DeleteBuffers(1, &r.panelVBO)
		r.panelTex = 0
	}
	for _, p := range []*glgl.Program{&r.wave, &r.toon, &r.ground, &r.panel} {
		if p.ID() != 0 {
			p.Delete()
			*p = glgl.Program{}
		}
	}
}

// Render implements [glloop.Renderer].
func (r *glRenderer) Render(s *scene.Scene, cam *scene.Camera) error {
	r.drainChanges()
	width, height := r.window.GetFramebufferSize()
	cam.SetSize(width, height)
	gl.Viewport(0, 0, int32(width), int32(height))
	bg := s.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view, proj := cam.View(), cam.Projection()
	var ambient gwave.Color
	var sun *scene.DirectionalLight
	for _, l := range s.Lights() {
		switch l := l.(type) {
		case *scene.AmbientLight:
			c := l.Radiance()
			ambient = gwave.Color{R: ambient.R + c.R, G: ambient.G + c.G, B: ambient.B + c.B}
		case *scene.DirectionalLight:
			if sun == nil {
				sun = l
			}
		}
	}
	for _, m := range s.Meshes() {
		vao, ok := r.meshes[m]
		if !ok {
			return fmt.Errorf("mesh %s added after renderer creation", m.Name)
		}
		prog, err := r.program(m.Material)
		if err != nil {
			return err
		}
		prog.Bind()
		setMat4(prog, glbuild.UniformProjection, proj)
		setMat4(prog, glbuild.UniformView, view)
		setMat4(prog, glbuild.UniformModel, m.Model())
		wireframe := false
		switch mat := m.Material.(type) {
		case *scene.WaveMaterial:
			u := mat.Uniforms
			gl.Uniform2f(uniform(prog, glbuild.UniformFrequency), u.Frequency.X, u.Frequency.Y)
			gl.Uniform2f(uniform(prog, glbuild.UniformAmplitude), u.Amplitude.X, u.Amplitude.Y)
			gl.Uniform1f(uniform(prog, glbuild.UniformTime), u.Time)
			setColor(prog, glbuild.UniformColor, u.Color)
			wireframe = mat.Wireframe
		case *scene.ToonMaterial:
			setColor(prog, glbuild.UniformColor, mat.Color)
			setColor(prog, glbuild.UniformAmbient, ambient)
			if sun != nil {
				d := sun.Direction()
				gl.Uniform3f(uniform(prog, glbuild.UniformLightPos), d.X, d.Y, d.Z)
				setColor(prog, glbuild.UniformLightColor, sun.Radiance())
			}
		case *scene.BasicMaterial:
			setColor(prog, glbuild.UniformColor, mat.Color)
			wireframe = mat.Wireframe
		}
		if wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.BindVertexArray(vao.vao)
		gl.DrawElements(gl.TRIANGLES, vao.count, gl.UNSIGNED_INT, nil)
		if wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
	}
	if r.showPanel {
		r.drawPanel(width, height)
	}
	gl.BindVertexArray(0)
	return glgl.Err()
}

func (r *glRenderer) drainChanges() {
	for {
		select {
		case c := <-r.changes:
			p := c.Params
			switch c.Field {
			case gwave.FieldColor:
				r.log(c.Field, "=", p.ColorHex)
			case gwave.FieldWireframe:
				r.log(c.Field, "=", p.Wireframe)
			default:
				r.log(c.Field, "=", p.Frequency, p.Amplitude)
			}
		default:
			return
		}
	}
}

func (r *glRenderer) initPanel() error {
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.GenVertexArrays(1, &r.panelVAO)
	gl.BindVertexArray(r.panelVAO)
	gl.GenBuffers(1, &r.panelVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.panelVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	posAttrib, err := r.panel.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	gl.GenTextures(1, &r.panelTex)
	gl.BindTexture(gl.TEXTURE_2D, r.panelTex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	r.rasterPanel()
	return glgl.Err()
}

// rasterPanel draws the panel into its image and uploads it, resizing the texture as needed.
func (r *glRenderer) rasterPanel() {
	sz := r.a.Panel.Size(r.face)
	resized := r.panelImg == nil || r.panelImg.Bounds().Size() != sz
	if resized {
		r.panelImg = image.NewRGBA(image.Rectangle{Max: sz})
	} else {
		clear(r.panelImg.Pix)
	}
	r.a.Panel.Draw(r.panelImg, r.face)
	gl.BindTexture(gl.TEXTURE_2D, r.panelTex)
	if resized {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(sz.X), int32(sz.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.panelImg.Pix))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(sz.X), int32(sz.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.panelImg.Pix))
	}
}

func (r *glRenderer) drawPanel(width, height int) {
	r.frames++
	if r.a.Panel.Dirty() || r.frames%panelRefreshFrames == 0 {
		r.rasterPanel()
	}
	sz := r.panelImg.Bounds().Size()
	x0 := 1 - 2*float32(sz.X)/float32(width)
	y0 := 1 - 2*float32(sz.Y)/float32(height)
	r.panel.Bind()
	gl.Uniform4f(uniform(r.panel, glbuild.UniformRect), x0, y0, 1, 1)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.panelTex)
	gl.Uniform1i(uniform(r.panel, glbuild.UniformTexture), 0)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	// image.RGBA holds alpha premultiplied colors.
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.BindVertexArray(r.panelVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// newMeshVAO uploads mesh attributes read by prog. Attributes the program
// does not use are optimized out by the GL compiler and skipped here.
func newMeshVAO(prog glgl.Program, m *glrender.Mesh) (*meshVAO, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	v := &meshVAO{count: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &v.vao)
	gl.BindVertexArray(v.vao)
	gl.GenBuffers(int32(len(v.bufs)), &v.bufs[0])
	attrib := func(buf uint32, name string, size int32, data unsafe.Pointer, nbytes int) {
		gl.BindBuffer(gl.ARRAY_BUFFER, buf)
		gl.BufferData(gl.ARRAY_BUFFER, nbytes, data, gl.STATIC_DRAW)
		loc := gl.GetAttribLocation(prog.ID(), gl.Str(name+"\x00"))
		if loc < 0 {
			return
		}
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, 0, gl.PtrOffset(0))
	}
	attrib(v.bufs[0], glbuild.AttribPosition, 3, unsafe.Pointer(&m.Positions[0]), 12*len(m.Positions))
	attrib(v.bufs[1], glbuild.AttribUV, 2, unsafe.Pointer(&m.UVs[0]), 8*len(m.UVs))
	if len(m.Normals) > 0 {
		attrib(v.bufs[2], glbuild.AttribNormal, 3, unsafe.Pointer(&m.Normals[0]), 12*len(m.Normals))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, v.bufs[3])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(m.Indices), gl.Ptr(m.Indices), gl.STATIC_DRAW)
	gl.BindVertexArray(0)
	if err := glgl.Err(); err != nil {
		v.delete()
		return nil, err
	}
	return v, nil
}

func (v *meshVAO) delete() {
	gl.DeleteVertexArrays(1, &v.vao)
	gl.DeleteBuffers(int32(len(v.bufs)), &v.bufs[0])
}

func compile(vertex, fragment func(io.Writer) (int, error)) (glgl.Program, error) {
	var vert, frag bytes.Buffer
	_, err := vertex(&vert)
	if err != nil {
		return glgl.Program{}, err
	}
	_, err = fragment(&frag)
	if err != nil {
		return glgl.Program{}, err
	}
	vert.WriteByte(0)
	frag.WriteByte(0)
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vert.String(),
		Fragment: frag.String(),
	})
	if err != nil {
		return glgl.Program{}, fmt.Errorf("%s\n%s\n%w", vert.String(), frag.String(), err)
	}
	return prog, nil
}

// uniform returns the location of a uniform or -1 if the program does not
// use it. GL ignores writes to location -1.
func uniform(prog glgl.Program, name string) int32 {
	return gl.GetUniformLocation(prog.ID(), gl.Str(name+"\x00"))
}

func setMat4(prog glgl.Program, name string, m ms3.Mat4) {
	// Array is row-major, GL expects column-major.
	a := m.Array()
	gl.UniformMatrix4fv(uniform(prog, name), 1, true, &a[0])
}

func setColor(prog glgl.Program, name string, c gwave.Color) {
	gl.Uniform3f(uniform(prog, name), c.R, c.G, c.B)
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	// Swap on vertical blank so the frame loop runs at display refresh rate.
	glfw.SwapInterval(1)
	return window, glfw.Terminate, nil
}
