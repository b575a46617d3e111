package visualizer

// RingStroke is one deformed ring ready to stroke.
type RingStroke struct {
	Curve Curve
	Color Color
	Width float64
}

// Frame is the complete description of one rendered tick. Drawing a Frame needs no
// other state. Layers are painted in field order: fade, flash, bars, glow, rings,
// waveform, particles.
type Frame struct {
	Width  float64
	Height float64

	Fade  Color
	Flash Color // Invisible when no flash is running

	Bars     []Bar
	Glow     *Glow
	Rings    []RingStroke
	Waveform *Polyline

	Particles []ParticleSprite
}

// Active reports whether the frame carries audio-reactive layers.
func (f *Frame) Active() bool {
	return len(f.Bars) > 0 || len(f.Rings) > 0 || f.Waveform != nil
}

// frameBuffers keeps the backing arrays of a Frame between ticks.
type frameBuffers struct {
	bars      []Bar
	rings     []RingStroke
	segments  [len(Rings)][]QuadSegment
	points    []Point
	wave      []Point
	particles []ParticleSprite
	spatial   []float64
	glow      Glow
	waveform  Polyline
}
