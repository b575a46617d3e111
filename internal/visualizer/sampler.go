package visualizer

import (
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// Sampler reads frequency and waveform snapshots from the analysis tap.
// The returned slices are reused and only valid until the next Sample call.
type Sampler struct {
	tap  ports.AnalysisTap
	freq []byte
	wave []byte
}

// NewSampler creates a sampler. tap may be nil until the audio graph exists.
func NewSampler(tap ports.AnalysisTap) *Sampler {
	return &Sampler{tap: tap}
}

// SetTap swaps the analysis tap, nil disconnects it.
func (s *Sampler) SetTap(tap ports.AnalysisTap) {
	s.tap = tap
}

// Sample returns the current spectrum and waveform. Both are empty when no tap is
// connected or nothing is playing.
func (s *Sampler) Sample(active bool) (freq, wave []byte) {
	if s.tap == nil || !active {
		return nil, nil
	}

	bins := s.tap.FrequencyBinCount()
	size := s.tap.FFTSize()
	if bins <= 0 || size <= 0 {
		return nil, nil
	}
	if cap(s.freq) < bins {
		s.freq = make([]byte, bins)
	}
	if cap(s.wave) < size {
		s.wave = make([]byte, size)
	}

	n := s.tap.ByteFrequencyData(s.freq[:bins])
	m := s.tap.ByteTimeDomainData(s.wave[:size])
	return s.freq[:n], s.wave[:m]
}
