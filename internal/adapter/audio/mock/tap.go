package mock

import (
	"math"
	"slices"
	"sync"
)

// Tap is a synthetic analysis tap. While a track plays it produces a slowly moving
// spectrum and a sine waveform; otherwise it reports silence. Fixed data set through
// SetFrequencyData or SetTimeDomainData takes precedence.
type Tap struct {
	mu      sync.Mutex
	fftSize int
	playing func() bool
	frame   int
	freq    []byte
	wave    []byte
}

func newTap(fftSize int, playing func() bool) *Tap {
	return &Tap{fftSize: fftSize, playing: playing}
}

// FFTSize returns the transform size.
func (t *Tap) FFTSize() int {
	return t.fftSize
}

// FrequencyBinCount returns FFTSize()/2.
func (t *Tap) FrequencyBinCount() int {
	return t.fftSize / 2
}

// SetFrequencyData fixes the spectrum returned by ByteFrequencyData. Nil restores the synthetic one.
func (t *Tap) SetFrequencyData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.freq = slices.Clone(data)
}

// SetTimeDomainData fixes the waveform returned by ByteTimeDomainData. Nil restores the synthetic one.
func (t *Tap) SetTimeDomainData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wave = slices.Clone(data)
}

// ByteFrequencyData fills dst with up to FrequencyBinCount values.
func (t *Tap) ByteFrequencyData(dst []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	bins := t.FrequencyBinCount()
	n := min(len(dst), bins)
	if t.freq != nil {
		clear(dst[:n])
		copy(dst[:n], t.freq)
		return n
	}
	if !t.playing() {
		clear(dst[:n])
		return n
	}

	t.frame++
	phase := float64(t.frame) * 0.12
	beat := 0.7 + 0.3*math.Abs(math.Sin(float64(t.frame)*0.2))
	for i := range n {
		x := float64(i) / float64(bins)
		v := 220 * math.Pow(1-x, 1.5) * (0.6 + 0.4*math.Sin(phase+x*8))
		if x < 1.0/3 {
			v *= beat
		}
		dst[i] = byte(max(0, min(255, v)))
	}
	return n
}

// ByteTimeDomainData fills dst with up to FFTSize values centred on 128.
func (t *Tap) ByteTimeDomainData(dst []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := min(len(dst), t.fftSize)
	if t.wave != nil {
		for i := range n {
			dst[i] = 128
		}
		copy(dst[:n], t.wave)
		return n
	}

	amp := 0.0
	if t.playing() {
		amp = 60
	}
	phase := float64(t.frame) * 0.3
	for i := range n {
		dst[i] = byte(128 + amp*math.Sin(2*math.Pi*4*float64(i)/float64(t.fftSize)+phase))
	}
	return n
}
