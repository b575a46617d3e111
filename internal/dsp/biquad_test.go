package dsp

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiquadFlatIsPassThrough(t *testing.T) {
	for _, kind := range []FilterKind{LowShelf, Peaking, HighShelf} {
		f := NewBiquad(kind, 44100, 1000, 1)

		rng := rand.New(rand.NewPCG(1, 2))
		in := make([][2]float64, 256)
		for i := range in {
			in[i] = [2]float64{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		}
		out := make([][2]float64, len(in))
		copy(out, in)

		f.Process(out)

		for i := range in {
			assert.InDelta(t, in[i][0], out[i][0], 1e-9, "kind %d frame %d", kind, i)
			assert.InDelta(t, in[i][1], out[i][1], 1e-9, "kind %d frame %d", kind, i)
		}
	}
}

func TestBiquadPeakingGainAtCenter(t *testing.T) {
	f := NewBiquad(Peaking, 44100, 1000, 1)
	f.SetGain(12)

	assert.InDelta(t, math.Pow(10, 12.0/20), f.Response(1000), 1e-6)
	assert.InDelta(t, 1.0, f.Response(0), 1e-6)
	assert.Equal(t, 12.0, f.Gain())
}

func TestBiquadShelves(t *testing.T) {
	low := NewBiquad(LowShelf, 44100, 200, 0)
	low.SetGain(-12)
	assert.InDelta(t, math.Pow(10, -12.0/20), low.Response(0), 1e-6)
	assert.InDelta(t, 1.0, low.Response(20000), 0.02)

	high := NewBiquad(HighShelf, 44100, 3000, 0)
	high.SetGain(6)
	assert.InDelta(t, math.Pow(10, 6.0/20), high.Response(22050), 1e-6)
	assert.InDelta(t, 1.0, high.Response(0), 1e-6)
}

func TestBiquadSteadyStateDC(t *testing.T) {
	f := NewBiquad(LowShelf, 44100, 200, 0)
	f.SetGain(12)

	frames := make([][2]float64, 44100)
	for i := range frames {
		frames[i] = [2]float64{1, 1}
	}
	f.Process(frames)

	last := frames[len(frames)-1]
	assert.InDelta(t, math.Pow(10, 12.0/20), last[0], 1e-3)
	assert.InDelta(t, last[0], last[1], 1e-12)
}

func TestEqualizerReset(t *testing.T) {
	eq := NewEqualizer(44100)
	eq.Bass.SetGain(6)

	frames := [][2]float64{{1, 1}}
	eq.Process(frames)
	eq.Reset()

	for _, f := range []*Biquad{eq.Bass, eq.Mid, eq.Treble} {
		assert.Equal(t, [2][4]float64{}, f.state)
	}
}
