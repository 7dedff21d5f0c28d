package gwave

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/soypat/glgl/math/ms1"
)

// Color is a linear RGB triple with components in 0..1.
type Color struct {
	R, G, B float32
}

// RGBA is a color with alpha as produced by fragment stages.
// It implements [color.Color].
type RGBA struct {
	R, G, B, A float32
}

var _ color.Color = RGBA{}

// RGBA implements [color.Color]. Components are clamped to 0..1 and alpha premultiplied.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	alpha := ms1.Clamp(c.A, 0, 1)
	a = uint32(alpha * 0xffff)
	r = uint32(ms1.Clamp(c.R, 0, 1) * alpha * 0xffff)
	g = uint32(ms1.Clamp(c.G, 0, 1) * alpha * 0xffff)
	b = uint32(ms1.Clamp(c.B, 0, 1) * alpha * 0xffff)
	return r, g, b, a
}

// RGBA returns the color as an opaque [RGBA].
func (c Color) RGBA() RGBA { return RGBA{R: c.R, G: c.G, B: c.B, A: 1} }

// RGBA8 returns the color as an opaque 8 bit per channel [color.RGBA].
func (c Color) RGBA8() color.RGBA {
	v := rgbToC(c.R, c.G, c.B)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Hex returns the color formatted as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", rgbToC(c.R, c.G, c.B))
}

// Scale returns the color with all components multiplied by f.
func (c Color) Scale(f float32) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

var namedColors = map[string]uint32{
	"white": 0xffffff,
	"black": 0x000000,
	"teal":  0x008080,
	"red":   0xff0000,
	"green": 0x008000,
	"blue":  0x0000ff,
	"gray":  0x808080,
	"grey":  0x808080,
}

var errEmptyColor = errors.New("empty color string")

// ParseColor parses a color in #rgb, #rrggbb (leading # optional) or a
// small set of CSS color names.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Color{}, errEmptyColor
	}
	if c, ok := namedColors[s]; ok {
		return cToColor(c), nil
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("invalid color %q: want #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return cToColor(uint32(v)), nil
}

func cToColor(c uint32) Color {
	r, g, b := cToRGB(c)
	return Color{R: r, G: g, B: b}
}

// cToRGB converts a 24 bit RGB value stored in the least significant bits
func cToRGB(c uint32) (r, g, b float32) {
	r = float32(uint8(c>>16)) / 255
	g = float32(uint8(c>>8)) / 255
	b = float32(uint8(c)) / 255
	return r, g, b
}

// rgbToC converts r, g, and b values on the range of 0.0 to 1.0 to a
// 24 bit RGB value stored in the least significant bits of a uint32. The inputs
// are clamped to the range of 0.0 to 1.0
func rgbToC(r, g, b float32) (c uint32) {
	return uint32(ms1.Clamp(r, 0, 1)*255+0.5)<<16 |
		uint32(ms1.Clamp(g, 0, 1)*255+0.5)<<8 |
		uint32(ms1.Clamp(b, 0, 1)*255+0.5)
}
