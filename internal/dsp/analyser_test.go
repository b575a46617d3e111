package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFFTSize(t *testing.T) {
	tests := []struct {
		size int
		want bool
	}{
		{16, false},
		{32, true},
		{512, true},
		{500, false},
		{32768, true},
		{65536, false},
		{0, false},
		{-512, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidFFTSize(tt.size), "size %d", tt.size)
	}
}

func TestNewAnalyserRejectsBadInput(t *testing.T) {
	_, err := NewAnalyser(NewSampleRing(512), 300)
	assert.Error(t, err)

	_, err = NewAnalyser(NewSampleRing(128), 512)
	assert.Error(t, err)

	_, err = NewAnalyser(nil, 512)
	assert.Error(t, err)
}

func TestAnalyserSizes(t *testing.T) {
	a, err := NewAnalyser(NewSampleRing(DefaultFFTSize), DefaultFFTSize)
	require.NoError(t, err)

	assert.Equal(t, 512, a.FFTSize())
	assert.Equal(t, 256, a.FrequencyBinCount())
}

func TestAnalyserSilence(t *testing.T) {
	a, err := NewAnalyser(NewSampleRing(DefaultFFTSize), DefaultFFTSize)
	require.NoError(t, err)

	freq := make([]byte, a.FrequencyBinCount())
	n := a.ByteFrequencyData(freq)
	assert.Equal(t, 256, n)
	for i, v := range freq {
		assert.Zero(t, v, "bin %d", i)
	}

	wave := make([]byte, a.FFTSize())
	n = a.ByteTimeDomainData(wave)
	assert.Equal(t, 512, n)
	for i, v := range wave {
		assert.Equal(t, byte(128), v, "sample %d", i)
	}
}

func TestAnalyserSinePeak(t *testing.T) {
	const size = 512
	const bin = 32

	ring := NewSampleRing(size)
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * bin * float64(i) / size)
	}
	ring.Write(samples)

	a, err := NewAnalyser(ring, size)
	require.NoError(t, err)

	freq := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(freq)

	assert.Equal(t, byte(255), freq[bin])
	assert.Less(t, freq[200], byte(128))
}

func TestAnalyserTimeDomainScaling(t *testing.T) {
	ring := NewSampleRing(32)
	a, err := NewAnalyser(ring, 32)
	require.NoError(t, err)

	ring.Write([]float64{0.5, -1, 2})

	wave := make([]byte, 3)
	n := a.ByteTimeDomainData(wave)

	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{192, 0, 255}, wave)
}

func TestAnalyserShortDestination(t *testing.T) {
	a, err := NewAnalyser(NewSampleRing(64), 64)
	require.NoError(t, err)

	assert.Equal(t, 10, a.ByteFrequencyData(make([]byte, 10)))
	assert.Equal(t, 0, a.ByteFrequencyData(nil))
}

func TestAnalyserSettings(t *testing.T) {
	a, err := NewAnalyser(NewSampleRing(64), 64)
	require.NoError(t, err)

	assert.Error(t, a.SetDecibelRange(-30, -100))
	assert.NoError(t, a.SetDecibelRange(-90, -10))

	a.SetSmoothing(2)
	assert.Less(t, a.smoothing, 1.0)
	a.SetSmoothing(-1)
	assert.Zero(t, a.smoothing)
}
