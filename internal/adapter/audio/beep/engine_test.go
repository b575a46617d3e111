package beep

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/logger"
)

// fakeOutput mixes its streamers only when pulled.
type fakeOutput struct {
	mu        sync.Mutex
	rate      beep.SampleRate
	streamers []beep.Streamer
	closed    bool
	initErr   error
}

func (o *fakeOutput) Init(rate beep.SampleRate, _ int) error {
	o.rate = rate
	return o.initErr
}

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
}

func (o *fakeOutput) Clear()  { o.streamers = nil }
func (o *fakeOutput) Lock()   { o.mu.Lock() }
func (o *fakeOutput) Unlock() { o.mu.Unlock() }
func (o *fakeOutput) Close()  { o.closed = true }

// pull renders n frames the way the speaker would.
func (o *fakeOutput) pull(n int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	mix := make([][2]float64, n)
	buf := make([][2]float64, n)
	live := o.streamers[:0]
	for _, s := range o.streamers {
		got, ok := s.Stream(buf)
		for i := range got {
			mix[i][0] += buf[i][0]
			mix[i][1] += buf[i][1]
		}
		if ok {
			live = append(live, s)
		}
	}
	o.streamers = live
	return mix
}

// writeSine writes a stereo 16-bit wav of a 1 kHz sine at half scale.
func writeSine(t *testing.T, rate beep.SampleRate, length time.Duration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sine.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	total := rate.N(length)
	i := 0
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= total {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && i < total; n++ {
			v := 0.5 * math.Sin(2*math.Pi*1000*float64(i)/float64(rate))
			samples[n] = [2]float64{v, v}
			i++
		}
		return n, true
	})

	require.NoError(t, wav.Encode(f, src, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}))
	return path
}

func newTestEngine(t *testing.T) (*Engine, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	engine := NewEngineWithOutput(out)
	require.NoError(t, engine.Initialize(44100, 512))
	t.Cleanup(func() {
		if engine.IsInitialized() {
			assert.NoError(t, engine.Shutdown())
		}
	})
	return engine, out
}

func peak(frames [][2]float64) float64 {
	var p float64
	for _, f := range frames {
		p = max(p, math.Abs(f[0]), math.Abs(f[1]))
	}
	return p
}

func TestInitialize(t *testing.T) {
	engine, out := newTestEngine(t)

	assert.True(t, engine.IsInitialized())
	assert.Equal(t, beep.SampleRate(44100), out.rate)
	require.NotNil(t, engine.Analysis())
	assert.Equal(t, 256, engine.Analysis().FrequencyBinCount())
	assert.ErrorIs(t, engine.Initialize(44100, 512), domain.ErrAlreadyInitialized)

	var vErr *domain.ValidationError
	assert.ErrorAs(t, NewEngineWithOutput(&fakeOutput{}).Initialize(44100, 100), &vErr)
	assert.ErrorAs(t, NewEngineWithOutput(&fakeOutput{}).Initialize(0, 512), &vErr)

	failing := NewEngineWithOutput(&fakeOutput{initErr: errors.New("no device")})
	var aErr *domain.AudioEngineError
	assert.ErrorAs(t, failing.Initialize(44100, 512), &aErr)
	assert.False(t, failing.IsInitialized())
	assert.Nil(t, failing.Analysis())
}

func TestSetLoggerKeepsCallerAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: slog.LevelDebug, Output: &buf, Format: "text"}).
		With(slog.String("engine", "beep"))

	engine := NewEngineWithOutput(&fakeOutput{})
	engine.SetLogger(log)
	require.NoError(t, engine.Initialize(44100, 512))
	defer engine.Shutdown()

	line := buf.String()
	require.Contains(t, line, "audio engine initialized")
	assert.Equal(t, 1, strings.Count(line, "engine=beep"))
	assert.NotContains(t, line, "component=")
}

func TestShutdown(t *testing.T) {
	engine, out := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 44100, time.Second))
	require.NoError(t, err)
	require.NoError(t, engine.Play(handle))

	require.NoError(t, engine.Shutdown())
	assert.True(t, out.closed)
	assert.Empty(t, out.streamers)
	assert.ErrorIs(t, engine.Shutdown(), domain.ErrNotInitialized)

	_, err = engine.Status(handle)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestLoadErrors(t *testing.T) {
	engine, _ := newTestEngine(t)
	dir := t.TempDir()

	_, err := engine.Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	_, err = engine.Load(filepath.Join(dir, "missing.mp3"))
	assert.ErrorIs(t, err, domain.ErrFileNotFound)

	_, err = engine.Load(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a riff header"), 0o600))
	_, err = engine.Load(garbage)
	var aErr *domain.AudioEngineError
	assert.ErrorAs(t, err, &aErr)

	_, err = NewEngineWithOutput(&fakeOutput{}).Load(garbage)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestPlaybackLifecycle(t *testing.T) {
	engine, out := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 44100, time.Second))
	require.NoError(t, err)

	duration, err := engine.Duration(handle)
	require.NoError(t, err)
	assert.Equal(t, time.Second, duration)

	status, _ := engine.Status(handle)
	assert.Equal(t, domain.StatusStopped, status)

	require.NoError(t, engine.Play(handle))
	status, _ = engine.Status(handle)
	assert.Equal(t, domain.StatusPlaying, status)

	frames := out.pull(4410)
	assert.InDelta(t, 0.5, peak(frames), 0.01)
	pos, _ := engine.Position(handle)
	assert.Equal(t, 100*time.Millisecond, pos)

	require.NoError(t, engine.Pause(handle))
	status, _ = engine.Status(handle)
	assert.Equal(t, domain.StatusPaused, status)
	assert.Zero(t, peak(out.pull(4410)))
	pos, _ = engine.Position(handle)
	assert.Equal(t, 100*time.Millisecond, pos)

	require.NoError(t, engine.Play(handle))
	out.pull(44100)
	out.pull(1)
	status, _ = engine.Status(handle)
	assert.Equal(t, domain.StatusStopped, status, "a finished track reports stopped")

	require.NoError(t, engine.Play(handle))
	pos, _ = engine.Position(handle)
	assert.Zero(t, pos, "replaying a finished track starts over")
	assert.Len(t, out.streamers, 1)

	require.NoError(t, engine.Stop(handle))
	assert.Empty(t, out.streamers)
	_, err = engine.Status(handle)
	assert.ErrorIs(t, err, domain.ErrInvalidTrackHandle)
}

func TestPlayReplacesRoutedTrack(t *testing.T) {
	engine, out := newTestEngine(t)
	path := writeSine(t, 44100, time.Second)
	first, err := engine.Load(path)
	require.NoError(t, err)
	second, err := engine.Load(path)
	require.NoError(t, err)

	require.NoError(t, engine.Play(first))
	require.NoError(t, engine.Play(second))

	assert.Len(t, out.streamers, 1)
	status, _ := engine.Status(first)
	assert.Equal(t, domain.StatusStopped, status)
	status, _ = engine.Status(second)
	assert.Equal(t, domain.StatusPlaying, status)
}

func TestSeek(t *testing.T) {
	engine, _ := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 44100, time.Second))
	require.NoError(t, err)

	require.NoError(t, engine.Seek(handle, 500*time.Millisecond))
	pos, _ := engine.Position(handle)
	assert.Equal(t, 500*time.Millisecond, pos)

	assert.ErrorIs(t, engine.Seek(handle, -time.Millisecond), domain.ErrInvalidPosition)
	assert.ErrorIs(t, engine.Seek(handle, 2*time.Second), domain.ErrInvalidPosition)
	assert.ErrorIs(t, engine.Seek(domain.TrackHandle(99), 0), domain.ErrInvalidTrackHandle)
}

func TestResamplesToOutputRate(t *testing.T) {
	engine, out := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 22050, time.Second))
	require.NoError(t, err)

	duration, _ := engine.Duration(handle)
	assert.Equal(t, time.Second, duration)

	require.NoError(t, engine.Play(handle))
	out.pull(4410)

	// the resampler reads its source ahead in blocks
	pos, _ := engine.Position(handle)
	assert.GreaterOrEqual(t, pos, 90*time.Millisecond)
	assert.Less(t, pos, 200*time.Millisecond)
}

func TestVolumeAndGain(t *testing.T) {
	engine, out := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 44100, time.Second))
	require.NoError(t, err)
	require.NoError(t, engine.Play(handle))

	require.NoError(t, engine.SetVolume(handle, 0.5))
	vol, _ := engine.GetVolume(handle)
	assert.Equal(t, 0.5, vol)
	assert.InDelta(t, 0.25, peak(out.pull(441)), 0.01)

	require.NoError(t, engine.SetGain(200))
	assert.InDelta(t, 0.5, peak(out.pull(441)), 0.01)

	require.NoError(t, engine.SetVolume(handle, 0))
	assert.Zero(t, peak(out.pull(441)))

	assert.ErrorIs(t, engine.SetVolume(handle, 1.5), domain.ErrInvalidVolume)
	assert.ErrorIs(t, engine.SetGain(-1), domain.ErrInvalidGain)
	assert.ErrorIs(t, engine.SetEQ(domain.EQMid, 13), domain.ErrInvalidGain)
	require.NoError(t, engine.SetEQ(domain.EQBass, -12))
	assert.Equal(t, -12.0, engine.eq.Bass.Gain())
}

func TestAnalysisFollowsOutput(t *testing.T) {
	engine, out := newTestEngine(t)
	handle, err := engine.Load(writeSine(t, 44100, time.Second))
	require.NoError(t, err)

	tap := engine.Analysis()
	freq := make([]byte, tap.FrequencyBinCount())
	tap.ByteFrequencyData(freq)
	assert.Equal(t, make([]byte, len(freq)), freq, "nothing played yet")

	require.NoError(t, engine.Play(handle))
	out.pull(2048)

	tap.ByteFrequencyData(freq)
	loudest := 0
	for i, v := range freq {
		if v > freq[loudest] {
			loudest = i
		}
	}
	// 1 kHz falls between bins 11 and 12 at 44.1 kHz / 512
	assert.InDelta(t, 11.6, float64(loudest), 1)
	assert.Greater(t, freq[loudest], byte(100))

	wave := make([]byte, tap.FFTSize())
	assert.Equal(t, 512, tap.ByteTimeDomainData(wave))
	lo, hi := slices.Min(wave), slices.Max(wave)
	assert.Less(t, lo, byte(80))
	assert.Greater(t, hi, byte(176))
}
