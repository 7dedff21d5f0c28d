package gleval

import (
	"errors"
	"unsafe"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

// Displacer evaluates the wave displacement over a batch of world space
// positions, as the wave vertex stage does after the model transform.
type Displacer interface {
	// Displace writes the displaced position of every pos element to dst.
	// dst and pos must be of same length and may alias.
	//
	// userData facilitates getting data to the evaluators for use in processing.
	Displace(dst, pos []ms3.Vec, u gwave.Uniforms, userData any) error
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and displaced buffer length mismatch")
	errZeroInvoc            = errors.New("zero or negative invocation size")
)

// ComputeConfig configures GPU compute evaluation.
type ComputeConfig struct {
	// InvocX is the local group size in x of the compute program.
	InvocX int
}

// CPUDisplacer evaluates [gwave.Displace] on the CPU.
type CPUDisplacer struct {
	evals uint64
}

var _ Displacer = (*CPUDisplacer)(nil) // Interface implementation compile-time check.

// Displace implements [Displacer].
func (d *CPUDisplacer) Displace(dst, pos []ms3.Vec, u gwave.Uniforms, userData any) error {
	if len(pos) != len(dst) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	for i, p := range pos {
		dst[i] = gwave.Displace(p, u.Frequency, u.Amplitude, u.Time)
	}
	d.evals += uint64(len(pos))
	return nil
}

// Evaluations returns total positions displaced during the displacer's lifetime.
func (d *CPUDisplacer) Evaluations() uint64 {
	return d.evals
}

// ShadePositions runs the vertex stage of the wave material over local
// positions: model transform followed by displacement through d.
// The result is in world space and is stored in dst.
func ShadePositions(d Displacer, dst, local []ms3.Vec, model ms3.Mat4, u gwave.Uniforms, userData any) error {
	if len(dst) != len(local) {
		return errMismatchBufferLength
	} else if d == nil {
		return errors.New("nil Displacer")
	}
	for i, p := range local {
		dst[i] = model.MulPosition(p)
	}
	return d.Displace(dst, dst, u, userData)
}

// Colors appends the wave fragment color of every uv to dst.
func Colors(dst []gwave.RGBA, uvs []ms2.Vec) []gwave.RGBA {
	for _, uv := range uvs {
		dst = append(dst, gwave.FragColor(uv))
	}
	return dst
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}
