package visualizer

import (
	"math"
)

const (
	superellipseExponent = 4.0
	cornerInset          = 0.3    // Fraction of the corner radius trimmed off each half dimension
	axisEpsilon          = 0.0001 // Direction cosines below this take the axis-aligned branch

	glowThreshold = 0.1
	glowSize      = 50.0
)

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Anchor is the rounded rectangle the rings are drawn around, usually the album art.
type Anchor struct {
	CX, CY       float64
	HalfWidth    float64
	HalfHeight   float64
	CornerRadius float64
}

// AnchorFromRect builds an anchor from a top-left corner and size.
func AnchorFromRect(x, y, w, h, cornerRadius float64) Anchor {
	return Anchor{
		CX:           x + w/2,
		CY:           y + h/2,
		HalfWidth:    w / 2,
		HalfHeight:   h / 2,
		CornerRadius: cornerRadius,
	}
}

// effective returns the superellipse half dimensions.
func (a Anchor) effective() (hw, hh float64) {
	inset := a.CornerRadius * cornerInset
	return a.HalfWidth - inset, a.HalfHeight - inset
}

// Usable reports whether rings can be placed around a: every value is finite and
// the superellipse has a positive size.
func (a Anchor) Usable() bool {
	for _, v := range []float64{a.CX, a.CY, a.HalfWidth, a.HalfHeight, a.CornerRadius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	hw, hh := a.effective()
	return hw > 0 && hh > 0
}

// RingDescriptor configures one ring around the anchor.
type RingDescriptor struct {
	Offset    float64 // Base distance outside the anchor boundary
	Band      Band
	Hue       float64
	Alpha     float64
	LineWidth float64
}

// Rings is the nested ring table, innermost first.
var Rings = [...]RingDescriptor{
	{Offset: 10, Band: BandBass, Hue: 250, Alpha: 0.6, LineWidth: 2.5},
	{Offset: 25, Band: BandMid, Hue: 270, Alpha: 0.4, LineWidth: 2},
	{Offset: 42, Band: BandTreble, Hue: 290, Alpha: 0.25, LineWidth: 1.5},
}

// Angle maps t in [0, 1) to the ring angle, starting at the top and going clockwise
// on a y-down surface.
func Angle(t float64) float64 {
	return t*2*math.Pi - math.Pi/2
}

// SuperellipsePoint returns the offset from the center of the point where direction
// theta meets the superellipse |x/hw|^4 + |y/hh|^4 = 1.
func SuperellipsePoint(theta, hw, hh float64) (dx, dy float64) {
	cos, sin := math.Cos(theta), math.Sin(theta)
	absCos, absSin := math.Abs(cos), math.Abs(sin)

	switch {
	case absCos < axisEpsilon:
		return 0, sign(sin) * hh
	case absSin < axisEpsilon:
		return sign(cos) * hw, 0
	}

	r := math.Pow(
		math.Pow(absCos/hw, superellipseExponent)+math.Pow(absSin/hh, superellipseExponent),
		-1/superellipseExponent,
	)
	return cos * r, sin * r
}

// RingPoints appends n deformed points of ring idx around anchor to dst.
// spatial holds the spatially smoothed spectrum on the 0-255 scale and may be empty.
// Every displacement is radial, so the ring stays star-shaped around the center.
func RingPoints(dst []Point, anchor Anchor, idx int, ring RingDescriptor, spatial []float64, energy float64, time float64, n int) []Point {
	hw, hh := anchor.effective()
	for i := range n {
		t := float64(i) / float64(n)

		var norm float64
		if len(spatial) > 0 {
			norm = spatial[min(int(t*float64(len(spatial))), len(spatial)-1)] / 255
		}

		dx, dy := SuperellipsePoint(Angle(t), hw, hh)
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dst = append(dst, Point{anchor.CX, anchor.CY})
			continue
		}

		wave1 := math.Sin(t*math.Pi*6+time*2.5) * 6 * energy
		wave2 := math.Sin(t*math.Pi*10-time*1.8) * 3 * energy
		pulse := math.Sin(time*3+float64(idx)*0.7) * 4 * energy
		freq := norm * 18 * (0.4 + energy*0.6)

		r := max(dist+ring.Offset+wave1+wave2+pulse+freq, 0)
		dst = append(dst, Point{
			X: anchor.CX + dx/dist*r,
			Y: anchor.CY + dy/dist*r,
		})
	}
	return dst
}

// QuadSegment is a quadratic Bezier segment from the previous end point.
type QuadSegment struct {
	Ctrl Point
	To   Point
}

// Curve is a closed path of quadratic segments starting at Start.
type Curve struct {
	Start    Point
	Segments []QuadSegment
}

// SmoothClosedCurve blends points into a closed curve through the midpoints of
// consecutive points, using each point as the control. The curve ends where it
// starts with a continuous tangent. Fewer than three points give an empty curve.
func SmoothClosedCurve(dst []QuadSegment, points []Point) Curve {
	n := len(points)
	if n < 3 {
		return Curve{Segments: dst[:0]}
	}

	segs := dst[:0]
	for i, p := range points {
		segs = append(segs, QuadSegment{Ctrl: p, To: p.Mid(points[(i+1)%n])})
	}
	return Curve{Start: points[n-1].Mid(points[0]), Segments: segs}
}

// GradientStop is one color stop of a gradient, Offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  Color
}

// RoundedRect is an axis-aligned rectangle with equal corner radii.
type RoundedRect struct {
	X, Y, W, H float64
	Radius     float64
}

// Glow is a soft radial gradient clipped to a rounded rectangle around the anchor.
type Glow struct {
	Center      Point
	InnerRadius float64
	OuterRadius float64
	Stops       [3]GradientStop
	Rect        RoundedRect
}

// GlowFor returns the glow behind the rings, or false while bass and mid are quiet.
func GlowFor(anchor Anchor, energy BandEnergy) (Glow, bool) {
	g := (energy.Bass + energy.Mid) / 2
	if g <= glowThreshold {
		return Glow{}, false
	}

	inner := math.Max(anchor.HalfWidth, anchor.HalfHeight)
	return Glow{
		Center:      Point{anchor.CX, anchor.CY},
		InnerRadius: inner,
		OuterRadius: inner + glowSize,
		Stops: [3]GradientStop{
			{0, RGBA(139, 92, 246, 0)},
			{0.5, RGBA(139, 92, 246, g*0.1)},
			{1, RGBA(99, 102, 241, 0)},
		},
		Rect: RoundedRect{
			X:      anchor.CX - anchor.HalfWidth - glowSize,
			Y:      anchor.CY - anchor.HalfHeight - glowSize,
			W:      anchor.HalfWidth*2 + glowSize*2,
			H:      anchor.HalfHeight*2 + glowSize*2,
			Radius: anchor.CornerRadius + glowSize,
		},
	}, true
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
