// Package dsp holds the signal processing used between the decoder and the visualizer:
// a mono sample ring, a byte spectrum and waveform analyser,
// and biquad filters for the three-band equalizer.
package dsp

import "sync"

// SampleRing keeps the most recent mono samples written by the audio thread.
// Writers and readers may run on different goroutines.
type SampleRing struct {
	mu  sync.Mutex
	buf []float64
	pos int
}

// NewSampleRing creates a ring holding size samples. size must be positive.
func NewSampleRing(size int) *SampleRing {
	if size <= 0 {
		size = 1
	}
	return &SampleRing{buf: make([]float64, size)}
}

// Size returns the ring capacity.
func (r *SampleRing) Size() int {
	return len(r.buf)
}

// WriteStereo mixes stereo frames down to mono and appends them.
func (r *SampleRing) WriteStereo(frames [][2]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range frames {
		r.put((f[0] + f[1]) / 2)
	}
}

// Write appends mono samples.
func (r *SampleRing) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		r.put(s)
	}
}

func (r *SampleRing) put(s float64) {
	r.buf[r.pos] = s
	r.pos++
	if r.pos == len(r.buf) {
		r.pos = 0
	}
}

// Snapshot copies the ring into dst, oldest sample first, and returns the count copied.
// Slots never written read as zero. dst shorter than the ring receives the newest samples.
func (r *SampleRing) Snapshot(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(dst), len(r.buf))
	// start index of the newest n samples
	start := r.pos - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := range n {
		dst[i] = r.buf[(start+i)%len(r.buf)]
	}
	return n
}

// Reset clears all samples to silence.
func (r *SampleRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.buf)
	r.pos = 0
}
