package dsp

import (
	"math"
	"math/cmplx"
	"sync"
)

// FilterKind selects the biquad response.
type FilterKind int

const (
	LowShelf FilterKind = iota
	Peaking
	HighShelf
)

// Biquad is a second-order IIR filter with coefficients from the RBJ audio EQ cookbook,
// processing stereo frames in direct form I. Gain changes may arrive from another goroutine.
type Biquad struct {
	mu sync.Mutex

	kind       FilterKind
	sampleRate float64
	freq       float64
	q          float64
	gainDB     float64

	b0, b1, b2, a1, a2 float64

	// per channel history: x[n-1], x[n-2], y[n-1], y[n-2]
	state [2][4]float64
}

// NewBiquad creates a filter at 0 dB, which passes the signal unchanged.
// q is ignored by the shelf filters, which use a shelf slope of 1.
func NewBiquad(kind FilterKind, sampleRate, freq, q float64) *Biquad {
	f := &Biquad{kind: kind, sampleRate: sampleRate, freq: freq, q: q}
	f.compute()
	return f
}

// SetGain sets the boost or cut in dB and recomputes the coefficients.
func (f *Biquad) SetGain(db float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gainDB = db
	f.compute()
}

// Gain returns the current gain in dB.
func (f *Biquad) Gain() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gainDB
}

func (f *Biquad) compute() {
	a := math.Pow(10, f.gainDB/40)
	w0 := 2 * math.Pi * f.freq / f.sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.kind {
	case Peaking:
		alpha := sinW / (2 * f.q)
		b0 = 1 + alpha*a
		b1 = -2 * cosW
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosW
		a2 = 1 - alpha/a
	case LowShelf:
		k := 2 * math.Sqrt(a) * sinW / math.Sqrt2
		b0 = a * ((a + 1) - (a-1)*cosW + k)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW)
		b2 = a * ((a + 1) - (a-1)*cosW - k)
		a0 = (a + 1) + (a-1)*cosW + k
		a1 = -2 * ((a - 1) + (a+1)*cosW)
		a2 = (a + 1) + (a-1)*cosW - k
	case HighShelf:
		k := 2 * math.Sqrt(a) * sinW / math.Sqrt2
		b0 = a * ((a + 1) + (a-1)*cosW + k)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW)
		b2 = a * ((a + 1) + (a-1)*cosW - k)
		a0 = (a + 1) - (a-1)*cosW + k
		a1 = 2 * ((a - 1) - (a+1)*cosW)
		a2 = (a + 1) - (a-1)*cosW - k
	}

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// Process filters frames in place.
func (f *Biquad) Process(frames [][2]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range frames {
		for ch := range 2 {
			s := &f.state[ch]
			x := frames[i][ch]
			y := f.b0*x + f.b1*s[0] + f.b2*s[1] - f.a1*s[2] - f.a2*s[3]
			s[1], s[0] = s[0], x
			s[3], s[2] = s[2], y
			frames[i][ch] = y
		}
	}
}

// Reset clears the filter history.
func (f *Biquad) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = [2][4]float64{}
}

// Response returns the magnitude of the filter's transfer function at freq Hz.
func (f *Biquad) Response(freq float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := 2 * math.Pi * freq / f.sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	num := complex(f.b0, 0) + complex(f.b1, 0)*z1 + complex(f.b2, 0)*z2
	den := 1 + complex(f.a1, 0)*z1 + complex(f.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// Equalizer is the bass / mid / treble chain used by the player.
type Equalizer struct {
	Bass   *Biquad
	Mid    *Biquad
	Treble *Biquad
}

// Equalizer corner frequencies.
const (
	BassFreq   = 200.0
	MidFreq    = 1000.0
	TrebleFreq = 3000.0
	MidQ       = 1.0
)

// NewEqualizer creates a flat three-band equalizer.
func NewEqualizer(sampleRate float64) *Equalizer {
	return &Equalizer{
		Bass:   NewBiquad(LowShelf, sampleRate, BassFreq, 0),
		Mid:    NewBiquad(Peaking, sampleRate, MidFreq, MidQ),
		Treble: NewBiquad(HighShelf, sampleRate, TrebleFreq, 0),
	}
}

// Process runs frames through the three filters in order.
func (e *Equalizer) Process(frames [][2]float64) {
	e.Bass.Process(frames)
	e.Mid.Process(frames)
	e.Treble.Process(frames)
}

// Reset clears the history of every filter.
func (e *Equalizer) Reset() {
	e.Bass.Reset()
	e.Mid.Reset()
	e.Treble.Reset()
}
