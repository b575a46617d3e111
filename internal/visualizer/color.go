package visualizer

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Visible reports whether drawing with c changes any pixel.
func (c Color) Visible() bool {
	return c.A > 0
}

// NRGBA converts c for use with image/draw.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: unit8(c.R),
		G: unit8(c.G),
		B: unit8(c.B),
		A: unit8(c.A),
	}
}

// RGBA builds a color from 0-255 channels and an alpha in [0, 1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: clamp01(a),
	}
}

// HSLA builds a color from a hue in degrees (any value, wrapped), saturation and
// lightness in [0, 1] and an alpha in [0, 1].
func HSLA(hue, sat, light, alpha float64) Color {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp01(sat), clamp01(light)).Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: clamp01(alpha)}
}

func unit8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
