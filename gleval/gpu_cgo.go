//go:build !tinygo && cgo

package gleval

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/gwave"
	"github.com/soypat/gwave/glbuild"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// MaxComputeInvocations returns the maximum local group size in x supported by the GPU.
// A GL context must be current.
func MaxComputeInvocations() int {
	return glgl.MaxComputeInvocations()
}

// ComputeDisplacer evaluates the wave displacement with a GL compute program.
// A GL context must be current on the calling thread.
type ComputeDisplacer struct {
	prog    glgl.Program
	invocX  int
	locFreq int32
	locAmp  int32
	locTime int32
	// vec4 packed positions.
	packed [][4]float32
	evals  uint64
}

var _ Displacer = (*ComputeDisplacer)(nil) // Interface implementation compile-time check.

// NewComputeDisplacer compiles the displacement compute program.
func NewComputeDisplacer(cfg ComputeConfig) (*ComputeDisplacer, error) {
	if cfg.InvocX < 1 {
		return nil, errZeroInvoc
	}
	programmer := glbuild.NewDefaultProgrammer()
	programmer.SetComputeInvocations(cfg.InvocX, 1, 1)
	var src bytes.Buffer
	_, err := programmer.WriteComputeDisplace(&src)
	if err != nil {
		return nil, err
	}
	combinedSource, err := glgl.ParseCombined(&src)
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	cd := &ComputeDisplacer{prog: prog, invocX: cfg.InvocX}
	for _, u := range []struct {
		name string
		loc  *int32
	}{
		{name: glbuild.UniformFrequency, loc: &cd.locFreq},
		{name: glbuild.UniformAmplitude, loc: &cd.locAmp},
		{name: glbuild.UniformTime, loc: &cd.locTime},
	} {
		*u.loc, err = prog.UniformLocation(u.name + "\x00")
		if err != nil {
			prog.Delete()
			return nil, fmt.Errorf("uniform %s: %w", u.name, err)
		}
	}
	return cd, nil
}

// Delete releases the GL program.
func (cd *ComputeDisplacer) Delete() {
	cd.prog.Delete()
}

// Evaluations returns total positions displaced during the displacer's lifetime.
func (cd *ComputeDisplacer) Evaluations() uint64 {
	return cd.evals
}

// Displace implements [Displacer].
func (cd *ComputeDisplacer) Displace(dst, pos []ms3.Vec, u gwave.Uniforms, userData any) (err error) {
	if len(pos) != len(dst) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	} else if cd.prog.ID() == 0 {
		return errors.New("bad program compile or ComputeDisplacer not initialized before first use")
	}
	cd.packed = cd.packed[:0]
	for _, p := range pos {
		cd.packed = append(cd.packed, [4]float32{p.X, p.Y, p.Z, 1})
	}
	cd.prog.Bind()
	defer cd.prog.Unbind()
	gl.Uniform2f(cd.locFreq, u.Frequency.X, u.Frequency.Y)
	gl.Uniform2f(cd.locAmp, u.Amplitude.X, u.Amplitude.Y)
	gl.Uniform1f(cd.locTime, u.Time)

	var p runtime.Pinner
	var posSSBO, outSSBO uint32
	p.Pin(&posSSBO)
	p.Pin(&outSSBO)
	defer p.Unpin()
	posSSBO = loadSSBO(cd.packed, 0, gl.STATIC_DRAW)
	if posSSBO == 0 {
		return glErrOrMessage("zero SSBO id set by GL during compute loading")
	}
	defer gl.DeleteBuffers(1, &posSSBO)
	outSSBO = createSSBO(elemSize[[4]float32]()*len(cd.packed), 1, gl.DYNAMIC_READ)
	if outSSBO == 0 {
		return glErrOrMessage("zero id SSBO creating displaced buffer")
	}
	defer gl.DeleteBuffers(1, &outSSBO)
	nWorkX := (len(pos) + cd.invocX - 1) / cd.invocX
	gl.DispatchCompute(uint32(nWorkX), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	err = copySSBO(cd.packed, outSSBO)
	if err != nil {
		return err
	}
	err = glgl.Err()
	if err != nil {
		return err
	}
	for i, v := range cd.packed {
		dst[i] = ms3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	cd.evals += uint64(len(pos))
	return nil
}

func loadSSBO[T any](slice []T, base, usage uint32) (ssbo uint32) {
	var p runtime.Pinner
	p.Pin(&ssbo)
	gl.GenBuffers(1, &ssbo)
	p.Unpin()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	size := len(slice) * elemSize[T]()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, unsafe.Pointer(&slice[0]), usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func createSSBO(size int, base, usage uint32) (ssbo uint32) {
	gl.GenBuffers(1, &ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func copySSBO[T any](dst []T, ssbo uint32) error {
	singleSize := elemSize[T]()
	bufSize := singleSize * len(dst)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, bufSize, gl.MAP_READ_BIT)
	if ptr == nil {
		return glErrOrMessage("failed to map SSBO buffer during copy")
	}
	defer gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gpuBytes := unsafe.Slice((*byte)(ptr), bufSize)
	bufBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bufSize)
	copy(bufBytes, gpuBytes)
	return nil
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
