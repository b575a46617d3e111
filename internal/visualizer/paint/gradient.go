package paint

import (
	"image"
	"image/color"
	"math"

	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

// farBounds stands in for an unbounded image, like image.Uniform.
var farBounds = image.Rectangle{Min: image.Point{X: -1e9, Y: -1e9}, Max: image.Point{X: 1e9, Y: 1e9}}

// premul is a premultiplied color with components in [0, 1].
type premul struct {
	r, g, b, a float64
}

func toPremul(c visualizer.Color) premul {
	return premul{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

func (p premul) lerp(q premul, t float64) premul {
	return premul{
		r: p.r + (q.r-p.r)*t,
		g: p.g + (q.g-p.g)*t,
		b: p.b + (q.b-p.b)*t,
		a: p.a + (q.a-p.a)*t,
	}
}

func (p premul) rgba() color.RGBA {
	to8 := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(v, 1)) * 255))
	}
	return color.RGBA{R: to8(p.r), G: to8(p.g), B: to8(p.b), A: to8(p.a)}
}

// ramp maps t in [0, 1] onto a list of stops sorted by offset.
type ramp []gradientStop

type gradientStop struct {
	offset float64
	color  premul
}

func newRamp(stops []visualizer.GradientStop) ramp {
	r := make(ramp, len(stops))
	for i, s := range stops {
		r[i] = gradientStop{offset: s.Offset, color: toPremul(s.Color)}
	}
	return r
}

func (r ramp) at(t float64) color.RGBA {
	if len(r) == 0 {
		return color.RGBA{}
	}
	if math.IsNaN(t) || t <= r[0].offset {
		return r[0].color.rgba()
	}
	for i := 1; i < len(r); i++ {
		if t <= r[i].offset {
			prev := r[i-1]
			span := r[i].offset - prev.offset
			if span <= 0 {
				return r[i].color.rgba()
			}
			return prev.color.lerp(r[i].color, (t-prev.offset)/span).rgba()
		}
	}
	return r[len(r)-1].color.rgba()
}

// linearGradient is an unbounded image shading along the line from (x0, y0) to (x1, y1).
type linearGradient struct {
	x0, y0 float64
	dx, dy float64
	lenSq  float64
	ramp   ramp
}

func newLinearGradient(x0, y0, x1, y1 float64, stops []visualizer.GradientStop) *linearGradient {
	dx, dy := x1-x0, y1-y0
	return &linearGradient{x0: x0, y0: y0, dx: dx, dy: dy, lenSq: dx*dx + dy*dy, ramp: newRamp(stops)}
}

func (g *linearGradient) ColorModel() color.Model { return color.RGBAModel }
func (g *linearGradient) Bounds() image.Rectangle { return farBounds }

func (g *linearGradient) At(x, y int) color.Color {
	if g.lenSq == 0 {
		return g.ramp.at(0)
	}
	px, py := float64(x)+0.5-g.x0, float64(y)+0.5-g.y0
	return g.ramp.at((px*g.dx + py*g.dy) / g.lenSq)
}

// radialGradient shades between two concentric circles, padding beyond both.
type radialGradient struct {
	cx, cy float64
	r0, r1 float64
	ramp   ramp
}

func newRadialGradient(cx, cy, r0, r1 float64, stops []visualizer.GradientStop) *radialGradient {
	return &radialGradient{cx: cx, cy: cy, r0: r0, r1: r1, ramp: newRamp(stops)}
}

func (g *radialGradient) ColorModel() color.Model { return color.RGBAModel }
func (g *radialGradient) Bounds() image.Rectangle { return farBounds }

func (g *radialGradient) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy)
	if g.r1 == g.r0 {
		if d < g.r0 {
			return g.ramp.at(0)
		}
		return g.ramp.at(1)
	}
	return g.ramp.at((d - g.r0) / (g.r1 - g.r0))
}
