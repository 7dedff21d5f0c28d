package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/gwave"
)

// Light is a light source [Node].
type Light interface {
	Node
	// Radiance returns the light color scaled by its intensity.
	Radiance() gwave.Color
}

// AmbientLight lights all surfaces equally.
type AmbientLight struct {
	Name      string
	Color     gwave.Color
	Intensity float32
}

func (l *AmbientLight) NodeName() string { return l.Name }

func (l *AmbientLight) Radiance() gwave.Color { return l.Color.Scale(l.Intensity) }

// DirectionalLight shines from Position towards the origin.
type DirectionalLight struct {
	Name          string
	Position      ms3.Vec
	Color         gwave.Color
	Intensity     float32
	CastShadow    bool
	ShadowMapSize int
	ShadowFar     float32
	NormalBias    float32
}

func (l *DirectionalLight) NodeName() string { return l.Name }

func (l *DirectionalLight) Radiance() gwave.Color { return l.Color.Scale(l.Intensity) }

// Direction returns the unit vector pointing from the origin towards the light.
func (l *DirectionalLight) Direction() ms3.Vec {
	if l.Position == (ms3.Vec{}) {
		return ms3.Vec{Y: 1}
	}
	return ms3.Unit(l.Position)
}

// Float returns the position component named key: "x", "y" or "z".
func (l *DirectionalLight) Float(key string) (float32, error) {
	p, err := l.component(key)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// SetFloat sets the position component named key. Values outside
// [gwave.MinLight, gwave.MaxLight] are rejected.
func (l *DirectionalLight) SetFloat(key string, v float32) error {
	p, err := l.component(key)
	if err != nil {
		return err
	}
	if math32.IsNaN(v) || v < gwave.MinLight || v > gwave.MaxLight {
		return fmt.Errorf("light %s=%g: %w [%d, %d]", key, v, gwave.ErrOutOfRange, gwave.MinLight, gwave.MaxLight)
	}
	*p = v
	return nil
}

func (l *DirectionalLight) component(key string) (*float32, error) {
	switch key {
	case "x":
		return &l.Position.X, nil
	case "y":
		return &l.Position.Y, nil
	case "z":
		return &l.Position.Z, nil
	}
	return nil, fmt.Errorf("light: %w %q", gwave.ErrUnknownField, key)
}
