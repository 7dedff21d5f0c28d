//go:build tinygo || !cgo

package gleval

import (
	"errors"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// MaxComputeInvocations returns zero when built without cgo.
func MaxComputeInvocations() int { return 0 }

// NewComputeDisplacer instantiates a [Displacer] that runs on the GPU.
func NewComputeDisplacer(cfg ComputeConfig) (*ComputeDisplacer, error) {
	return nil, errNoCGO
}

type ComputeDisplacer struct{}

func (cd *ComputeDisplacer) Delete() {}

func (cd *ComputeDisplacer) Evaluations() uint64 { return 0 }

func (cd *ComputeDisplacer) Displace(dst, pos []ms3.Vec, u gwave.Uniforms, userData any) error {
	return errNoCGO
}
