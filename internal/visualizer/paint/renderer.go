// Package paint rasterizes visualizer frames onto an RGBA image.
package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

// glowLayers is how many expanded translucent copies approximate a blurred bar shadow.
const glowLayers = 3

// Background is the opaque color a fresh surface starts with.
var Background = color.RGBA{R: 10, G: 10, B: 15, A: 255}

// Renderer draws frames onto a persistent surface. Trails build up because each
// frame only fades the previous one. Not safe for concurrent use.
type Renderer struct {
	img *image.RGBA
	z   vector.Rasterizer

	// reusable scratch
	poly []fpoint
}

// NewRenderer creates a renderer with an empty surface. The surface is sized by
// the first frame drawn.
func NewRenderer() *Renderer {
	return &Renderer{img: image.NewRGBA(image.Rectangle{})}
}

// Image returns the surface. It is replaced when the frame size changes.
func (r *Renderer) Image() *image.RGBA {
	return r.img
}

// Draw paints frame over the surface. A layer that panics is skipped and
// reported in the returned error; the other layers are still drawn.
func (r *Renderer) Draw(frame *visualizer.Frame) error {
	w := int(math.Ceil(frame.Width))
	h := int(math.Ceil(frame.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	r.ensureSize(w, h)

	var errs []error
	layer := func(name string, fn func()) {
		defer func() {
			if p := recover(); p != nil {
				errs = append(errs, fmt.Errorf("layer %s: %v", name, p))
			}
		}()
		fn()
	}

	layer("fade", func() { r.fill(frame.Fade) })
	layer("flash", func() { r.fill(frame.Flash) })
	layer("bars", func() { r.bars(frame.Bars) })
	if frame.Glow != nil {
		layer("glow", func() { r.glow(frame.Glow) })
	}
	layer("rings", func() { r.rings(frame.Rings) })
	if frame.Waveform != nil {
		layer("waveform", func() { r.waveform(frame.Waveform) })
	}
	layer("particles", func() { r.particles(frame.Particles) })

	return errors.Join(errs...)
}

func (r *Renderer) ensureSize(w, h int) {
	if r.img.Rect.Dx() == w && r.img.Rect.Dy() == h {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(r.img, r.img.Rect, image.NewUniform(Background), image.Point{}, draw.Src)
}

func (r *Renderer) fill(c visualizer.Color) {
	if !c.Visible() {
		return
	}
	draw.Draw(r.img, r.img.Rect, image.NewUniform(c.NRGBA()), image.Point{}, draw.Over)
}

// paint rasterizes s clipped to the surface and composites src through it.
func (r *Renderer) paint(s *shape, src image.Image) {
	if s.empty() {
		return
	}
	clip := s.bounds().Intersect(r.img.Rect)
	if clip.Empty() {
		return
	}

	r.z.Reset(clip.Dx(), clip.Dy())
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	for _, poly := range s.polys {
		r.z.MoveTo(float32(poly[0].x-ox), float32(poly[0].y-oy))
		for _, p := range poly[1:] {
			r.z.LineTo(float32(p.x-ox), float32(p.y-oy))
		}
		r.z.ClosePath()
	}
	r.z.Draw(r.img, clip, src, clip.Min)
}

func (r *Renderer) paintColor(s *shape, c visualizer.Color) {
	if !c.Visible() {
		return
	}
	r.paint(s, image.NewUniform(c.NRGBA()))
}

func (r *Renderer) bars(bars []visualizer.Bar) {
	for _, b := range bars {
		rect := b.Rect
		if b.GlowColor.Visible() {
			for k := glowLayers; k >= 1; k-- {
				grow := b.GlowBlur * float64(k) / glowLayers
				halo := b.GlowColor
				halo.A *= float64(glowLayers+1-k) / float64(2*glowLayers)

				var s shape
				s.roundedRect(rect.X-grow, rect.Y-grow, rect.W+2*grow, rect.H+grow,
					rect.Radius+grow, rect.Radius+grow, 0, 0)
				r.paintColor(&s, halo)
			}
		}

		var s shape
		s.roundedRect(rect.X, rect.Y, rect.W, rect.H, rect.Radius, rect.Radius, 0, 0)
		r.paint(&s, newLinearGradient(rect.X, rect.Y+rect.H, rect.X, rect.Y, b.Stops[:]))
	}
}

func (r *Renderer) glow(g *visualizer.Glow) {
	rect := g.Rect
	var s shape
	s.roundedRect(rect.X, rect.Y, rect.W, rect.H, rect.Radius, rect.Radius, rect.Radius, rect.Radius)
	r.paint(&s, newRadialGradient(g.Center.X, g.Center.Y, g.InnerRadius, g.OuterRadius, g.Stops[:]))
}

func (r *Renderer) rings(rings []visualizer.RingStroke) {
	for _, ring := range rings {
		r.poly = flatten(r.poly, ring.Curve)
		var s shape
		s.stroke(r.poly, ring.Width, true)
		r.paintColor(&s, ring.Color)
	}
}

func (r *Renderer) waveform(line *visualizer.Polyline) {
	r.poly = toFPoints(r.poly, line.Points)
	var s shape
	s.stroke(r.poly, line.Width, false)
	r.paintColor(&s, line.Color)
}

func (r *Renderer) particles(sprites []visualizer.ParticleSprite) {
	for _, p := range sprites {
		var trail shape
		trail.stroke([]fpoint{{p.TrailFrom.X, p.TrailFrom.Y}, {p.TrailTo.X, p.TrailTo.Y}}, p.TrailWidth, false)
		r.paintColor(&trail, p.TrailColor)

		var head shape
		head.circle(p.Head.X, p.Head.Y, p.HeadRadius)
		r.paintColor(&head, p.HeadColor)

		if p.HaloColor.Visible() {
			var halo shape
			halo.circle(p.Head.X, p.Head.Y, p.HaloRadius)
			r.paintColor(&halo, p.HaloColor)
		}
	}
}

var _ visualizer.Renderer = (*Renderer)(nil)
