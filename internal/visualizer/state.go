package visualizer

import (
	"math/rand/v2"
	"time"
)

// State is everything the visualizer carries from one tick to the next.
type State struct {
	Time      float64 // Elapsed-time counter in seconds, advanced one nominal frame per tick
	Energy    BandEnergy
	Particles *ParticleField
	Flash     FlashPulse
	Viewport  Viewport

	cfg Config
	buf frameBuffers
}

// NewState creates the state for a viewport and seeds the particle pool from rng.
func NewState(cfg Config, vp Viewport, rng *rand.Rand) *State {
	return &State{
		Particles: NewParticleField(cfg.ParticleCount, cfg.Bounds(vp), rng),
		Flash:     NewFlashPulse(cfg.FrameDuration),
		Viewport:  vp,
		cfg:       cfg,
	}
}

// Config returns the configuration the state was created with.
func (s *State) Config() Config {
	return s.cfg
}

// Input is what the outside world contributes to one tick.
type Input struct {
	Active    bool   // A track is playing
	Frequency []byte // Empty when nothing is playing or no tap exists
	Waveform  []byte
	Anchor    Anchor
	HasAnchor bool
}

// Step advances s by one tick and returns the frame to draw. dt is the real time
// since the previous tick; it scales particle motion only. The returned frame
// shares storage with s and is valid until the next Step.
func Step(s *State, in Input, dt time.Duration) Frame {
	cfg := s.cfg
	nominal := cfg.FrameDuration.Seconds()
	s.Time += nominal

	reactive := in.Active && len(in.Frequency) > 0
	var target BandEnergy
	if reactive {
		target = TargetEnergy(in.Frequency)
	}
	s.Flash.Update(target.Bass, s.Energy.Bass, s.Time)
	s.Energy = Smooth(s.Energy, target, cfg.Smoothing)

	b := cfg.Bounds(s.Viewport)
	frame := Frame{
		Width:  s.Viewport.Width,
		Height: s.Viewport.Height,
		Fade:   cfg.FadeColor,
		Flash:  s.Flash.Overlay(),
	}

	if reactive {
		s.buf.spatial = SmoothSpatial(s.buf.spatial, in.Frequency, cfg.BarSmoothingRadius)
		s.buf.bars = ComputeBars(s.buf.bars[:0], cfg, b, s.buf.spatial, s.Energy.Overall)
		frame.Bars = s.buf.bars

		if in.HasAnchor && in.Anchor.Usable() {
			s.buf.spatial = SmoothSpatial(s.buf.spatial, in.Frequency, cfg.RingSmoothingRadius)
			frame.Rings = s.rings(in.Anchor)
			if glow, ok := GlowFor(in.Anchor, s.Energy); ok {
				s.buf.glow = glow
				frame.Glow = &s.buf.glow
			}
		}

		if line, ok := ComputeWaveform(s.buf.wave, b, in.Waveform, s.Energy.Overall); ok {
			s.buf.wave = line.Points
			s.buf.waveform = line
			frame.Waveform = &s.buf.waveform
		}
	}

	scale := 0.0
	if nominal > 0 {
		scale = dt.Seconds() / nominal
	}
	s.buf.particles = s.Particles.Tick(s.buf.particles[:0], s.Energy.Overall, s.Time, scale, b)
	frame.Particles = s.buf.particles

	return frame
}

func (s *State) rings(anchor Anchor) []RingStroke {
	out := s.buf.rings[:0]
	for idx, ring := range Rings {
		energy := s.Energy.Of(ring.Band)
		s.buf.points = RingPoints(s.buf.points[:0], anchor, idx, ring, s.buf.spatial, energy, s.Time, s.cfg.RingPoints)

		curve := SmoothClosedCurve(s.buf.segments[idx], s.buf.points)
		s.buf.segments[idx] = curve.Segments
		if len(curve.Segments) == 0 {
			continue
		}
		out = append(out, RingStroke{
			Curve: curve,
			Color: HSLA(ring.Hue, 0.75, 0.6, ring.Alpha*(0.6+energy*0.6)),
			Width: ring.LineWidth * (1 + energy*0.3),
		})
	}
	s.buf.rings = out
	return out
}

// Resize applies a new viewport. Only future wrap bounds change; the pool keeps its size.
func (s *State) Resize(vp Viewport) {
	s.Viewport = vp
}
