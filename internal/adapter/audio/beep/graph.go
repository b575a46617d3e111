package beep

import (
	"math"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"github.com/tejashwikalptaru/tunewave/internal/dsp"
)

// resampleQuality is the interpolation quality used when a file's rate differs from the output rate.
const resampleQuality = 4

// filterStreamer runs the bass/mid/treble filters over the samples of its source.
type filterStreamer struct {
	src beep.Streamer
	eq  *dsp.Equalizer
}

func (f *filterStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.src.Stream(samples)
	f.eq.Process(samples[:n])
	return n, ok
}

func (f *filterStreamer) Err() error { return f.src.Err() }

// tapStreamer copies everything that passes through it into the analysis ring.
type tapStreamer struct {
	src  beep.Streamer
	ring *dsp.SampleRing
}

func (t *tapStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	if n > 0 {
		t.ring.WriteStereo(samples[:n])
	}
	return n, ok
}

func (t *tapStreamer) Err() error { return t.src.Err() }

// chain is the per-track part of the graph:
// decoder -> resampler -> filters -> gain -> volume -> tap -> pause control.
type chain struct {
	gain   *effects.Gain
	volume *effects.Volume
	ctrl   *beep.Ctrl
}

func newChain(src beep.Streamer, from, to beep.SampleRate, eq *dsp.Equalizer, ring *dsp.SampleRing, gainPct, volume float64) *chain {
	if from != to {
		src = beep.Resample(resampleQuality, from, to, src)
	}
	c := &chain{}
	c.gain = &effects.Gain{Streamer: &filterStreamer{src: src, eq: eq}}
	c.volume = &effects.Volume{Streamer: c.gain, Base: 2}
	c.ctrl = &beep.Ctrl{Streamer: &tapStreamer{src: c.volume, ring: ring}, Paused: true}
	c.setGain(gainPct)
	c.setVolume(volume)
	return c
}

// setGain maps a 0-200 percent master gain onto effects.Gain, which scales by 1+Gain.
func (c *chain) setGain(pct float64) {
	c.gain.Gain = pct/100 - 1
}

// setVolume maps a linear 0-1 volume onto the base-2 exponent effects.Volume expects.
func (c *chain) setVolume(v float64) {
	if v <= 0 {
		c.volume.Silent = true
		c.volume.Volume = 0
		return
	}
	c.volume.Silent = false
	c.volume.Volume = math.Log2(v)
}
