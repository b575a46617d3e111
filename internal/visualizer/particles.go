package visualizer

import (
	"math"
	"math/rand/v2"
)

const (
	particleDriftRate  = 1.5
	particleDriftAmp   = 0.3
	particleBoost      = 2.5
	particleHaloAbove  = 0.2
	particleMaxCatchUp = 4.0 // Cap on the motion scale after a stalled frame
)

// Particle is one ambient dot of the background field.
type Particle struct {
	X, Y         float64
	PrevX, PrevY float64
	Size         float64
	SpeedX       float64
	SpeedY       float64
	Opacity      float64
	Hue          float64
}

// ParticleSprite is everything needed to draw one particle.
type ParticleSprite struct {
	TrailFrom  Point
	TrailTo    Point
	TrailWidth float64
	TrailColor Color

	Head       Point
	HeadRadius float64
	HeadColor  Color

	HaloRadius float64
	HaloColor  Color // Invisible when the field is quiet
}

// ParticleField is the fixed-size particle pool. Its size never changes after creation.
type ParticleField struct {
	particles []Particle
}

// NewParticleField creates n particles scattered over b.
func NewParticleField(n int, b Bounds, rng *rand.Rand) *ParticleField {
	f := &ParticleField{particles: make([]Particle, max(n, 0))}
	for i := range f.particles {
		f.particles[i] = newParticle(b, rng)
	}
	return f
}

func newParticle(b Bounds, rng *rand.Rand) Particle {
	return Particle{
		X:       b.MinX + rng.Float64()*b.ContentWidth(),
		Y:       rng.Float64() * b.Height,
		Size:    rng.Float64()*2 + 0.5,
		SpeedX:  (rng.Float64() - 0.5) * 0.8,
		SpeedY:  (rng.Float64() - 0.5) * 0.8,
		Opacity: rng.Float64()*0.4 + 0.1,
		Hue:     rng.Float64()*60 + 230,
	}
}

// Len returns the pool size.
func (f *ParticleField) Len() int {
	return len(f.particles)
}

// Particles returns a copy of the pool.
func (f *ParticleField) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Tick moves every particle and appends its sprite to dst. scale is the elapsed time
// in nominal frames; zero leaves every position untouched.
func (f *ParticleField) Tick(dst []ParticleSprite, intensity, time, scale float64, b Bounds) []ParticleSprite {
	scale = math.Max(0, math.Min(scale, particleMaxCatchUp))
	boost := 1 + intensity*particleBoost

	for i := range f.particles {
		p := &f.particles[i]
		p.PrevX, p.PrevY = p.X, p.Y

		phase := time*particleDriftRate + p.Hue*0.1
		waveX := math.Sin(phase) * particleDriftAmp
		waveY := math.Cos(phase) * particleDriftAmp

		p.X += (p.SpeedX + waveX) * boost * scale
		p.Y += (p.SpeedY + waveY) * boost * scale
		p.wrap(b)

		dst = append(dst, p.sprite(intensity))
	}
	return dst
}

// wrap moves a particle that left b to the opposite edge, dropping its trail.
func (p *Particle) wrap(b Bounds) {
	if p.X < b.MinX {
		p.X = b.Width
		p.PrevX = p.X
	}
	if p.X > b.Width {
		p.X = b.MinX
		p.PrevX = p.X
	}
	if p.Y < 0 {
		p.Y = b.Height
		p.PrevY = p.Y
	}
	if p.Y > b.Height {
		p.Y = 0
		p.PrevY = p.Y
	}
}

func (p *Particle) sprite(intensity float64) ParticleSprite {
	hue := p.Hue + intensity*20
	head := p.Size * (1 + intensity*0.8)

	s := ParticleSprite{
		TrailFrom:  Point{p.PrevX, p.PrevY},
		TrailTo:    Point{p.X, p.Y},
		TrailWidth: p.Size * (0.8 + intensity*0.4),
		TrailColor: HSLA(hue, 0.65, 0.6, p.Opacity*(0.4+intensity*0.5)),
		Head:       Point{p.X, p.Y},
		HeadRadius: head,
		HeadColor:  HSLA(hue, 0.75, 0.7, p.Opacity*(0.7+intensity*0.3)),
	}
	if intensity > particleHaloAbove {
		s.HaloRadius = head * 2
		s.HaloColor = HSLA(p.Hue, 0.65, 0.6, intensity*0.12)
	}
	return s
}
