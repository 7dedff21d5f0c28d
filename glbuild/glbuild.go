package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

const VersionStr = "#version 430\n"

// Uniform and attribute names shared by the generated programs and the
// code that binds them.
const (
	UniformProjection = "projectionMatrix"
	UniformView       = "viewMatrix"
	UniformModel      = "modelMatrix"
	UniformFrequency  = "uFrequency"
	UniformAmplitude  = "uAmplitude"
	UniformTime       = "uTime"
	UniformColor      = "uColor"
	UniformLightPos   = "uLightPos"
	UniformLightColor = "uLightColor"
	UniformAmbient    = "uAmbient"
	UniformRect       = "uRect"
	UniformTexture    = "uTexture"

	AttribPosition = "position"
	AttribUV       = "uv"
	AttribNormal   = "normal"
)

// Uniform is a single uniform declaration of a generated program.
type Uniform struct {
	Name string
	// Type is the Go type mirrored by the uniform, see [AppendUniformDecl].
	Type reflect.Type
}

var (
	typeMat4  = reflect.TypeOf(ms3.Mat4{})
	typeVec2  = reflect.TypeOf(ms2.Vec{})
	typeFloat = reflect.TypeOf(float32(0))
	typeColor = reflect.TypeOf(gwave.Color{})
	typeVec3  = reflect.TypeOf(ms3.Vec{})
	typeVec4  = reflect.TypeOf([4]float32{})
	typeInt   = reflect.TypeOf(int32(0))
)

var (
	transformUniforms = []Uniform{
		{Name: UniformProjection, Type: typeMat4},
		{Name: UniformView, Type: typeMat4},
		{Name: UniformModel, Type: typeMat4},
	}
	waveUniforms = []Uniform{
		{Name: UniformFrequency, Type: typeVec2},
		{Name: UniformAmplitude, Type: typeVec2},
		{Name: UniformTime, Type: typeFloat},
	}
	litUniforms = []Uniform{
		{Name: UniformColor, Type: typeColor},
		{Name: UniformLightPos, Type: typeVec3},
		{Name: UniformLightColor, Type: typeColor},
		{Name: UniformAmbient, Type: typeColor},
	}
)

// WaveUniforms returns the uniforms of the wave program in declaration order.
// uColor is declared by the fragment stage but never read by it.
func WaveUniforms() []Uniform {
	u := append([]Uniform{}, transformUniforms...)
	u = append(u, waveUniforms...)
	return append(u, Uniform{Name: UniformColor, Type: typeColor})
}

// Programmer generates the GLSL sources of the wave demo. The wave stages
// mirror [gwave.Displace], [gwave.ViewOffset] and [gwave.FragColor].
type Programmer struct {
	scratch       []byte
	computeHeader []byte
	// Invocations size in X (local group size) to give each compute work group.
	invocX     int
	viewOffset ms3.Mat4
	fragBlue   float32
}

var defaultComputeHeader = []byte("#shader compute\n" + VersionStr)

// NewDefaultProgrammer returns a Programmer with reasonable default parameters for use with glgl package on the local machine.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratch:       make([]byte, 0, 1024),
		computeHeader: defaultComputeHeader,
		invocX:        32,
		viewOffset:    ms3.TranslatingMat4(ms3.Vec{Y: gwave.ViewOffsetY}),
		fragBlue:      gwave.FragBlue,
	}
}

// SetComputeInvocations sets the work group local-sizes. x*y*z must be less than maximum number of invocations.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the worker group invocation size in x y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

// WriteWaveVertex writes the vertex stage of the wave material.
func (p *Programmer) WriteWaveVertex(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := appendUniformDecls(b, transformUniforms)
	if err != nil {
		return 0, err
	}
	b, err = appendUniformDecls(b, waveUniforms)
	if err != nil {
		return 0, err
	}
	b = append(b, "const "...)
	b = AppendMat4Decl(b, "viewOffset", p.viewOffset)
	b = append(b, `
in vec3 position;
in vec2 uv;
out vec2 vUv;

vec3 displace(vec3 p) {
	p.y += sin(p.x * uFrequency.x + uTime) * uAmplitude.x;
	p.x += cos(p.y * uFrequency.y + uTime) * uAmplitude.y;
	return p;
}

void main() {
	vec4 modelPosition = modelMatrix * vec4(position, 1.0);
	modelPosition.xyz = displace(modelPosition.xyz);
	gl_Position = projectionMatrix * viewOffset * viewMatrix * modelPosition;
	vUv = uv;
}
`...)
	return p.flush(w, b)
}

// WriteWaveFragment writes the fragment stage of the wave material.
func (p *Programmer) WriteWaveFragment(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := AppendUniformDecl(b, UniformColor, typeColor)
	if err != nil {
		return 0, err
	}
	b = append(b, "const "...)
	b = AppendFloatDecl(b, "fragBlue", p.fragBlue)
	b = append(b, `
in vec2 vUv;
out vec4 fragColor;

void main() {
	fragColor = vec4(vUv, fragBlue, 1.0);
}
`...)
	return p.flush(w, b)
}

// WriteLitVertex writes the vertex stage shared by the toon and ground
// materials. Normals are passed through in world space.
func (p *Programmer) WriteLitVertex(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := appendUniformDecls(b, transformUniforms)
	if err != nil {
		return 0, err
	}
	b = append(b, `
in vec3 position;
in vec3 normal;
out vec3 vNormal;
out vec3 vWorld;

void main() {
	vec4 world = modelMatrix * vec4(position, 1.0);
	vWorld = world.xyz;
	vNormal = mat3(modelMatrix) * normal;
	gl_Position = projectionMatrix * viewMatrix * world;
}
`...)
	return p.flush(w, b)
}

// WriteToonFragment writes a two tone cel-shaded fragment stage.
func (p *Programmer) WriteToonFragment(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := appendUniformDecls(b, litUniforms)
	if err != nil {
		return 0, err
	}
	b = append(b, `
in vec3 vNormal;
in vec3 vWorld;
out vec4 fragColor;

void main() {
	vec3 n = normalize(vNormal);
	float d = max(dot(n, normalize(uLightPos)), 0.0);
	float tone = d < 0.5 ? 0.7 : 1.0;
	fragColor = vec4(uColor * (uAmbient + uLightColor * tone * d), 1.0);
}
`...)
	return p.flush(w, b)
}

// WriteGroundFragment writes an unlit fragment stage for the ground plane.
func (p *Programmer) WriteGroundFragment(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := AppendUniformDecl(b, UniformColor, typeColor)
	if err != nil {
		return 0, err
	}
	b = append(b, `
in vec3 vNormal;
in vec3 vWorld;
out vec4 fragColor;

void main() {
	fragColor = vec4(uColor, 1.0);
}
`...)
	return p.flush(w, b)
}

// WritePanelVertex writes the vertex stage of the textured overlay quad.
// uRect holds the quad's (x0, y0, x1, y1) corners in normalized device coordinates.
func (p *Programmer) WritePanelVertex(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b, err := AppendUniformDecl(b, UniformRect, typeVec4)
	if err != nil {
		return 0, err
	}
	b = append(b, `
in vec2 aPos;
out vec2 vTexCoord;

void main() {
	vec2 t = aPos * 0.5 + 0.5;
	vTexCoord = vec2(t.x, 1.0 - t.y);
	gl_Position = vec4(mix(uRect.xy, uRect.zw, t), 0.0, 1.0);
}
`...)
	return p.flush(w, b)
}

// WritePanelFragment writes the fragment stage of the textured overlay quad.
func (p *Programmer) WritePanelFragment(w io.Writer) (int, error) {
	b := append(p.scratch[:0], VersionStr...)
	b = append(b, `uniform sampler2D uTexture;
in vec2 vTexCoord;
out vec4 fragColor;

void main() {
	fragColor = texture(uTexture, vTexCoord);
}
`...)
	return p.flush(w, b)
}

// WriteComputeDisplace writes a compute program that displaces world
// positions exactly as the wave vertex stage does. Positions are packed as
// vec4 to avoid std430 vec3 padding.
func (p *Programmer) WriteComputeDisplace(w io.Writer) (int, error) {
	b := append(p.scratch[:0], p.computeHeader...)
	b, err := appendUniformDecls(b, waveUniforms)
	if err != nil {
		return 0, err
	}
	b = fmt.Appendf(b, "\nlayout(local_size_x = %d, local_size_y = 1, local_size_z = 1) in;\n\n", p.invocX)
	// Only the element type matters for the declaration.
	z := make([][4]float32, 1)
	for i, name := range []string{"vbo_positions", "vbo_displaced"} {
		obj, err := MakeShaderBufferReadOnly([]byte(name), i, z)
		if err != nil {
			return 0, err
		}
		b, err = AppendShaderBufferDecl(b, "Buffer"+strconv.Itoa(i), "", obj)
		if err != nil {
			return 0, err
		}
	}
	b = append(b, `
void main() {
	int idx = int( gl_GlobalInvocationID.x );
	if (idx >= vbo_positions.length()) {
		return;
	}
	vec3 p = vbo_positions[idx].xyz;
	p.y += sin(p.x * uFrequency.x + uTime) * uAmplitude.x;
	p.x += cos(p.y * uFrequency.y + uTime) * uAmplitude.y;
	vbo_displaced[idx] = vec4(p, 1.0);
}
`...)
	return p.flush(w, b)
}

func (p *Programmer) flush(w io.Writer, b []byte) (int, error) {
	p.scratch = b[:0]
	return w.Write(b)
}

// ShaderObject describes a Shader Storage Buffer Object (SSBO) declared by a generated program.
type ShaderObject struct {
	// NamePtr is the name of the buffer array inside the program.
	NamePtr []byte
	// Element is the element type of the buffer.
	Element reflect.Type
	// Data points to the start of buffer data.
	Data unsafe.Pointer
	// Size of buffer in bytes.
	Size int
	// Binding specifies the resource's binding point during shader execution.
	Binding int
	read    bool
}

// MakeShaderBufferReadOnly returns a bindable [ShaderObject] over data.
func MakeShaderBufferReadOnly[T any](namePtr []byte, binding int, data []T) (ssbo ShaderObject, err error) {
	if len(data) == 0 {
		return ShaderObject{}, errors.New("empty shader buffer data")
	}
	var z T
	ssbo = ShaderObject{
		NamePtr: namePtr,
		Element: reflect.TypeOf(z),
		Data:    unsafe.Pointer(&data[0]),
		Size:    int(unsafe.Sizeof(z)) * len(data),
		Binding: binding,
		read:    true,
	}
	err = ssbo.Validate()
	if err != nil {
		return ShaderObject{}, err
	}
	return ssbo, nil
}

// AppendShaderBufferDecl appends the [ShaderObject] as a Shader Storage Buffer Object (SSBO).
//
//	layout(<ssbo.std>, binding = <base>) buffer <BlockName> {
//		<ssbo.Element> <ssbo.NamePtr>[];
//	} <instanceName>;
func AppendShaderBufferDecl(dst []byte, BlockName, instanceName string, ssbo ShaderObject) ([]byte, error) {
	err := ssbo.Validate()
	if err != nil {
		return dst, err
	} else if BlockName == "" && instanceName == "" {
		return nil, errors.New("AppendShaderBufferDecl requires BlockName for a valid SSBO declaration")
	}
	typename, std, err := glTypename(ssbo.Element)
	if err != nil {
		return dst, fmt.Errorf("typename failed for %q: %w", ssbo.NamePtr, err)
	}
	dst = append(dst, "layout("...)
	dst = append(dst, std...)
	dst = append(dst, ",binding="...)
	dst = strconv.AppendInt(dst, int64(ssbo.Binding), 10)
	dst = append(dst, ") buffer"...)
	if len(BlockName) > 0 {
		dst = append(dst, ' ')
		dst = append(dst, BlockName...)
	}
	dst = append(dst, " {\n\t"...)
	dst = append(dst, typename...)
	dst = append(dst, ' ')
	dst = append(dst, ssbo.NamePtr...)
	dst = append(dst, "[];\n}"...)
	if len(instanceName) > 0 {
		dst = append(dst, ' ')
		dst = append(dst, instanceName...)
	}
	dst = append(dst, ";\n"...)
	return dst, nil
}

func (obj ShaderObject) Validate() error {
	if len(obj.NamePtr) == 0 {
		return errors.New("shader object zero-length name")
	} else if obj.Data == nil {
		return errors.New("shader object nil data pointer")
	} else if obj.Size <= 0 {
		return errors.New("shader object zero/negative length data")
	} else if !obj.read {
		return errors.New("shader object no usage defined")
	} else if obj.Binding < 0 {
		return errors.New("shader object negative binding point")
	}
	_, _, err := glTypename(obj.Element)
	return err
}

// AppendUniformDecl appends a uniform declaration of the GLSL type equivalent to tp.
func AppendUniformDecl(b []byte, name string, tp reflect.Type) ([]byte, error) {
	typename, _, err := glTypename(tp)
	if err != nil {
		return b, fmt.Errorf("uniform %q: %w", name, err)
	}
	b = append(b, "uniform "...)
	b = append(b, typename...)
	b = append(b, ' ')
	b = append(b, name...)
	b = append(b, ";\n"...)
	return b, nil
}

func appendUniformDecls(b []byte, uniforms []Uniform) (_ []byte, err error) {
	for _, u := range uniforms {
		b, err = AppendUniformDecl(b, u.Name, u.Type)
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

func glTypename(tp reflect.Type) (typename, std string, err error) {
	std = "std430"
	switch tp {
	case typeFloat:
		typename = "float"
	case typeVec2:
		typename = "vec2"
	case typeVec3, typeColor:
		typename = "vec3"
	case typeVec4:
		typename = "vec4"
	case typeMat4:
		typename = "mat4"
	case typeInt:
		typename = "int"
	case reflect.TypeOf(uint32(0)):
		typename = "uint"
	case nil:
		err = errors.New("nil element type")
	default:
		err = fmt.Errorf("equivalent type not implemented for %s", tp.String())
	}
	return typename, std, err
}

func AppendFloatDecl(b []byte, floatVarname string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = AppendFloat(b, '-', '.', v)
	b = append(b, ';', '\n')
	return b
}

// AppendMat4Decl appends m44 as a mat4 constructor. GLSL constructors take
// columns first so the row-major [ms3.Mat4] is written transposed.
func AppendMat4Decl(b []byte, mat4Varname string, m44 ms3.Mat4) []byte {
	b = append(b, "mat4 "...)
	b = append(b, mat4Varname...)
	b = append(b, "=mat4("...)
	t := m44.Transpose().Array()
	b = AppendFloats(b, ',', '-', '.', t[:]...)
	b = append(b, ");\n"...)
	return b
}

const decimalDigits = 9

func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes, keeping one after the decimal point.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
