package glbuild_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/glbuild"
)

func TestWaveSources(t *testing.T) {
	programmer := glbuild.NewDefaultProgrammer()
	var source bytes.Buffer
	n, err := programmer.WriteWaveVertex(&source)
	if err != nil {
		t.Fatal(err)
	} else if n != source.Len() {
		t.Fatal("written length mismatch")
	}
	vert := source.String()
	for _, want := range []string{
		"uniform mat4 projectionMatrix;",
		"uniform mat4 viewMatrix;",
		"uniform mat4 modelMatrix;",
		"uniform vec2 uFrequency;",
		"uniform vec2 uAmplitude;",
		"uniform float uTime;",
		"p.y += sin(p.x * uFrequency.x + uTime) * uAmplitude.x;",
		"p.x += cos(p.y * uFrequency.y + uTime) * uAmplitude.y;",
		"gl_Position = projectionMatrix * viewOffset * viewMatrix * modelPosition;",
	} {
		if !strings.Contains(vert, want) {
			t.Errorf("vertex source missing %q:\n%s", want, vert)
		}
	}
	if !strings.HasPrefix(vert, glbuild.VersionStr) {
		t.Error("missing version directive")
	}
	offset := constMat4(t, vert, "viewOffset")
	want := ms3.TranslatingMat4(ms3.Vec{Y: gwave.ViewOffsetY})
	if !ms3.EqualMat4(offset, want, 1e-7) {
		t.Errorf("view offset constant: want %v, got %v", want.Array(), offset.Array())
	}
	// The offset matrix must agree with the CPU view offset.
	viewPos := ms3.Vec{X: 1, Y: -2, Z: -3}
	if got := offset.MulPosition(viewPos); ms3.Norm(ms3.Sub(got, gwave.ViewOffset(viewPos))) > 1e-6 {
		t.Errorf("offset mismatch: %v", got)
	}

	source.Reset()
	_, err = programmer.WriteWaveFragment(&source)
	if err != nil {
		t.Fatal(err)
	}
	frag := source.String()
	if !strings.Contains(frag, "uniform vec3 uColor;") {
		t.Error("fragment must declare uColor")
	}
	if strings.Count(frag, "uColor") != 1 {
		t.Error("fragment color must not depend on uColor")
	}
	if !strings.Contains(frag, "fragColor = vec4(vUv, fragBlue, 1.0);") {
		t.Error("unexpected fragment body:\n", frag)
	}
	if constValue(t, frag, "fragBlue") != gwave.FragBlue {
		t.Error("fragment blue constant mismatch")
	}
}

func TestWaveUniforms(t *testing.T) {
	var names []string
	for _, u := range glbuild.WaveUniforms() {
		names = append(names, u.Name)
	}
	got := strings.Join(names, ",")
	const want = "projectionMatrix,viewMatrix,modelMatrix,uFrequency,uAmplitude,uTime,uColor"
	if got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestComputeDisplace(t *testing.T) {
	programmer := glbuild.NewDefaultProgrammer()
	programmer.SetComputeInvocations(64, 1, 1)
	var source bytes.Buffer
	_, err := programmer.WriteComputeDisplace(&source)
	if err != nil {
		t.Fatal(err)
	}
	src := source.String()
	for _, want := range []string{
		"#shader compute\n",
		"local_size_x = 64,",
		"layout(std430,binding=0) buffer Buffer0 {\n\tvec4 vbo_positions[];\n};",
		"layout(std430,binding=1) buffer Buffer1 {\n\tvec4 vbo_displaced[];\n};",
		"uniform vec2 uFrequency;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("compute source missing %q:\n%s", want, src)
		}
	}
	x, _, _ := programmer.ComputeInvocations()
	if x != 64 {
		t.Error("invocations not set")
	}
}

func TestLitSources(t *testing.T) {
	programmer := glbuild.NewDefaultProgrammer()
	for _, write := range []func(*bytes.Buffer) (int, error){
		func(b *bytes.Buffer) (int, error) { return programmer.WriteLitVertex(b) },
		func(b *bytes.Buffer) (int, error) { return programmer.WriteToonFragment(b) },
		func(b *bytes.Buffer) (int, error) { return programmer.WriteGroundFragment(b) },
		func(b *bytes.Buffer) (int, error) { return programmer.WritePanelVertex(b) },
		func(b *bytes.Buffer) (int, error) { return programmer.WritePanelFragment(b) },
	} {
		var buf bytes.Buffer
		n, err := write(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if n != buf.Len() || !strings.Contains(buf.String(), "void main()") {
			t.Errorf("bad source:\n%s", buf.String())
		}
	}
}

func TestShaderBuffer(t *testing.T) {
	_, err := glbuild.MakeShaderBufferReadOnly[float32]([]byte("empty"), 0, nil)
	if err == nil {
		t.Error("expected error for empty buffer")
	}
	_, err = glbuild.MakeShaderBufferReadOnly([]byte("strs"), 0, []string{"a"})
	if err == nil {
		t.Error("expected error for unsupported element type")
	}
	obj, err := glbuild.MakeShaderBufferReadOnly([]byte("pos"), 3, []ms3.Vec{{X: 1}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := glbuild.AppendShaderBufferDecl(nil, "", "inst", obj)
	if err != nil {
		t.Fatal(err)
	}
	const want = "layout(std430,binding=3) buffer {\n\tvec3 pos[];\n} inst;\n"
	if string(b) != want {
		t.Errorf("want %q, got %q", want, b)
	}
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float32
		want string
	}{
		{v: 1, want: "1.0"},
		{v: -2.5, want: "-2.5"},
		{v: 0, want: "0.0"},
	} {
		got := string(glbuild.AppendFloat(nil, '-', '.', test.v))
		if got != test.want {
			t.Errorf("%v: want %q, got %q", test.v, test.want, got)
		}
	}
	got := string(glbuild.AppendFloat(nil, 'n', 'p', -1.5))
	if got != "n1p5" {
		t.Error("custom sign/decimal characters not applied", got)
	}
	m := ms3.TranslatingMat4(ms3.Vec{X: 1, Y: 2, Z: 3})
	decl := string(glbuild.AppendMat4Decl(nil, "m", m))
	// Translation lives in the last column, which GLSL expects last.
	if !strings.HasSuffix(decl, "1.0,2.0,3.0,1.0);\n") {
		t.Error("matrix must be written column major:", decl)
	}
}

func constValue(t *testing.T, src, name string) float32 {
	t.Helper()
	prefix := "const float " + name + "="
	start := strings.Index(src, prefix)
	if start < 0 {
		t.Fatalf("constant %s not found", name)
	}
	rest := src[start+len(prefix):]
	end := strings.IndexByte(rest, ';')
	v, err := strconv.ParseFloat(rest[:end], 32)
	if err != nil {
		t.Fatal(err)
	}
	return float32(v)
}

// constMat4 parses a mat4 constant written by [glbuild.AppendMat4Decl].
func constMat4(t *testing.T, src, name string) ms3.Mat4 {
	t.Helper()
	prefix := "const mat4 " + name + "=mat4("
	start := strings.Index(src, prefix)
	if start < 0 {
		t.Fatalf("constant %s not found", name)
	}
	rest := src[start+len(prefix):]
	fields := strings.Split(rest[:strings.IndexByte(rest, ')')], ",")
	if len(fields) != 16 {
		t.Fatalf("want 16 matrix elements, got %d", len(fields))
	}
	var colmajor [16]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			t.Fatal(err)
		}
		colmajor[i] = float32(v)
	}
	return ms3.NewMat4(colmajor[:]).Transpose()
}
