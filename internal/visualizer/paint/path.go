package paint

import (
	"image"
	"math"

	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

const (
	curveSteps   = 4  // Line segments per quadratic segment
	cornerSteps  = 6  // Line segments per rounded corner
	minCircleSeg = 8  // Fewest sides of a circle polygon
	maxCircleSeg = 64 // Most sides of a circle polygon
)

type fpoint struct {
	x, y float64
}

// shape is a union of closed polygons. Polygons are normalized to one winding so
// overlapping parts never cancel out.
type shape struct {
	polys [][]fpoint
}

func (s *shape) add(poly []fpoint) {
	if len(poly) < 3 {
		return
	}
	if signedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	s.polys = append(s.polys, poly)
}

func (s *shape) empty() bool {
	return len(s.polys) == 0
}

// bounds returns the integer pixel rectangle covering every polygon.
func (s *shape) bounds() image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range s.polys {
		for _, p := range poly {
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}
	if minX > maxX || !finite(minX, minY, maxX, maxY) {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

func signedArea(poly []fpoint) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// circle appends a polygon approximating a circle.
func (s *shape) circle(cx, cy, r float64) {
	if r <= 0 || !finite(cx, cy, r) {
		return
	}
	n := int(math.Ceil(2 * math.Pi * r / 2))
	n = max(minCircleSeg, min(n, maxCircleSeg))

	poly := make([]fpoint, n)
	for i := range poly {
		a := float64(i) / float64(n) * 2 * math.Pi
		poly[i] = fpoint{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	s.add(poly)
}

// roundedRect appends a rectangle whose corners have the given radii, clockwise
// from the top left. Radii are limited to half the shorter side.
func (s *shape) roundedRect(x, y, w, h, tl, tr, br, bl float64) {
	if w <= 0 || h <= 0 || !finite(x, y, w, h) {
		return
	}
	limit := math.Min(w, h) / 2
	clampR := func(r float64) float64 { return math.Max(0, math.Min(r, limit)) }
	tl, tr, br, bl = clampR(tl), clampR(tr), clampR(br), clampR(bl)

	poly := make([]fpoint, 0, 4*(cornerSteps+1))
	poly = corner(poly, x+tl, y+tl, tl, math.Pi)
	poly = corner(poly, x+w-tr, y+tr, tr, 1.5*math.Pi)
	poly = corner(poly, x+w-br, y+h-br, br, 0)
	poly = corner(poly, x+bl, y+h-bl, bl, 0.5*math.Pi)
	s.add(poly)
}

// corner appends a quarter arc around (cx, cy) starting at angle from, or the
// single corner point when r is zero.
func corner(poly []fpoint, cx, cy, r, from float64) []fpoint {
	if r == 0 {
		return append(poly, fpoint{cx, cy})
	}
	for i := 0; i <= cornerSteps; i++ {
		a := from + float64(i)/cornerSteps*math.Pi/2
		poly = append(poly, fpoint{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return poly
}

// segment appends the rectangle covering a line of the given width from a to b.
func (s *shape) segment(a, b fpoint, width float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 || width <= 0 || !finite(l) {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	s.add([]fpoint{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

// stroke appends a polyline of the given width with round joins and caps.
func (s *shape) stroke(pts []fpoint, width float64, closed bool) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		s.segment(pts[i], pts[i+1], width)
	}
	if closed && len(pts) > 2 {
		s.segment(pts[len(pts)-1], pts[0], width)
	}
	for _, p := range pts {
		s.circle(p.x, p.y, width/2)
	}
}

// flatten turns a closed curve into a polygon.
func flatten(dst []fpoint, c visualizer.Curve) []fpoint {
	dst = dst[:0]
	if len(c.Segments) == 0 {
		return dst
	}
	p := c.Start
	dst = append(dst, fpoint{p.X, p.Y})
	for _, seg := range c.Segments {
		for i := 1; i <= curveSteps; i++ {
			t := float64(i) / curveSteps
			u := 1 - t
			dst = append(dst, fpoint{
				x: u*u*p.X + 2*u*t*seg.Ctrl.X + t*t*seg.To.X,
				y: u*u*p.Y + 2*u*t*seg.Ctrl.Y + t*t*seg.To.Y,
			})
		}
		p = seg.To
	}
	// the curve ends on its start point
	return dst[:len(dst)-1]
}

func toFPoints(dst []fpoint, pts []visualizer.Point) []fpoint {
	dst = dst[:0]
	for _, p := range pts {
		dst = append(dst, fpoint{p.X, p.Y})
	}
	return dst
}
