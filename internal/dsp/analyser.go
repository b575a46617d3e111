package dsp

import (
	"fmt"
	"math"
	"math/bits"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Analyser defaults: 512-point transform, 0.8 time smoothing, -100..-30 dB byte range.
const (
	DefaultFFTSize        = 512
	DefaultSmoothing      = 0.8
	DefaultMinDecibels    = -100.0
	DefaultMaxDecibels    = -30.0
	MinFFTSize            = 32
	MaxFFTSize            = 32768
	silenceFloorMagnitude = 1e-12
)

// Analyser turns the newest samples of a SampleRing into byte spectra and waveforms.
// The spectrum is computed on demand with a Blackman window and smoothed over time
// between successive calls.
type Analyser struct {
	mu sync.Mutex

	ring    *SampleRing
	fftSize int
	fft     *fourier.FFT
	window  []float64

	smoothing float64
	minDB     float64
	maxDB     float64

	samples  []float64
	coeffs   []complex128
	smoothed []float64
}

// ValidFFTSize reports whether n is a power of two within [MinFFTSize, MaxFFTSize].
func ValidFFTSize(n int) bool {
	return n >= MinFFTSize && n <= MaxFFTSize && bits.OnesCount(uint(n)) == 1
}

// NewAnalyser creates an analyser reading from ring. The ring must hold at least fftSize samples.
func NewAnalyser(ring *SampleRing, fftSize int) (*Analyser, error) {
	if !ValidFFTSize(fftSize) {
		return nil, fmt.Errorf("fft size %d: must be a power of two in [%d, %d]", fftSize, MinFFTSize, MaxFFTSize)
	}
	if ring == nil || ring.Size() < fftSize {
		return nil, fmt.Errorf("sample ring smaller than fft size %d", fftSize)
	}

	ones := make([]float64, fftSize)
	for i := range ones {
		ones[i] = 1
	}

	return &Analyser{
		ring:      ring,
		fftSize:   fftSize,
		fft:       fourier.NewFFT(fftSize),
		window:    window.Blackman(ones),
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		samples:   make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
	}, nil
}

// SetSmoothing sets the time constant in [0, 1). Values outside are clamped.
func (a *Analyser) SetSmoothing(tau float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoothing = math.Max(0, math.Min(tau, 0.999))
}

// SetDecibelRange sets the range mapped onto 0-255. minDB must be below maxDB.
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if minDB >= maxDB {
		return fmt.Errorf("decibel range [%v, %v] is empty", minDB, maxDB)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minDB, a.maxDB = minDB, maxDB
	return nil
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int {
	return a.fftSize
}

// FrequencyBinCount returns half the transform size.
func (a *Analyser) FrequencyBinCount() int {
	return a.fftSize / 2
}

// ByteFrequencyData computes the current spectrum into dst and returns the count written.
func (a *Analyser) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring.Snapshot(a.samples)
	for i := range a.samples {
		a.samples[i] *= a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.samples)

	n := min(len(dst), len(a.smoothed))
	scale := 1 / float64(a.fftSize)
	rangeDB := a.maxDB - a.minDB
	for k := range a.smoothed {
		mag := cmplxAbs(a.coeffs[k]) * scale
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k >= n {
			continue
		}
		db := 20 * math.Log10(math.Max(a.smoothed[k], silenceFloorMagnitude))
		dst[k] = clampByte(255 * (db - a.minDB) / rangeDB)
	}
	return n
}

// ByteTimeDomainData copies the newest waveform into dst, 128 being silence.
func (a *Analyser) ByteTimeDomainData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring.Snapshot(a.samples)
	n := min(len(dst), a.fftSize)
	// newest n samples
	off := a.fftSize - n
	for i := range n {
		dst[i] = clampByte(128 * (1 + a.samples[off+i]))
	}
	return n
}

// Reset forgets the smoothed spectrum.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.smoothed)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func clampByte(v float64) byte {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
