package paint

import (
	"image/color"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunewave/internal/visualizer"
)

func baseFrame(w, h float64) visualizer.Frame {
	return visualizer.Frame{
		Width:  w,
		Height: h,
		Fade:   visualizer.DefaultConfig().FadeColor,
	}
}

func TestDrawEmptyFrame(t *testing.T) {
	r := NewRenderer()

	require.NoError(t, r.Draw(&visualizer.Frame{}))
	assert.True(t, r.Image().Rect.Empty())
}

func TestDrawSizesSurfaceAndKeepsBackground(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(64.5, 32)

	require.NoError(t, r.Draw(&frame))

	img := r.Image()
	assert.Equal(t, 65, img.Rect.Dx())
	assert.Equal(t, 32, img.Rect.Dy())
	assert.Equal(t, Background, img.RGBAAt(10, 10))
}

func TestDrawResizeReplacesSurface(t *testing.T) {
	r := NewRenderer()
	small := baseFrame(10, 10)
	require.NoError(t, r.Draw(&small))
	first := r.Image()

	big := baseFrame(20, 15)
	require.NoError(t, r.Draw(&big))

	assert.NotSame(t, first, r.Image())
	assert.Equal(t, 20, r.Image().Rect.Dx())
}

func TestDrawParticleHead(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(40, 40)
	frame.Particles = []visualizer.ParticleSprite{{
		TrailFrom:  visualizer.Point{X: 20, Y: 20},
		TrailTo:    visualizer.Point{X: 20, Y: 20},
		TrailWidth: 1,
		TrailColor: visualizer.HSLA(250, 0.65, 0.6, 0.5),
		Head:       visualizer.Point{X: 20, Y: 20},
		HeadRadius: 4,
		HeadColor:  visualizer.HSLA(250, 0.75, 0.7, 1),
	}}

	require.NoError(t, r.Draw(&frame))

	img := r.Image()
	assert.NotEqual(t, Background, img.RGBAAt(20, 20))
	assert.Equal(t, Background, img.RGBAAt(2, 2))
}

func TestDrawBarGradient(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(100, 100)
	frame.Bars = visualizer.ComputeBars(nil, visualizer.DefaultConfig(),
		visualizer.Bounds{Width: 100, Height: 100}, []float64{100}, 0)
	require.NotEmpty(t, frame.Bars)

	require.NoError(t, r.Draw(&frame))

	img := r.Image()
	bar := frame.Bars[0].Rect
	x := int(bar.X + bar.W/2)
	bottom := img.RGBAAt(x, 98)
	top := img.RGBAAt(x, int(bar.Y)+6)

	assert.NotEqual(t, Background, bottom)
	assert.NotEqual(t, Background, top)
	assert.NotEqual(t, bottom, top)
	assert.Equal(t, Background, img.RGBAAt(x, int(bar.Y)-20))
}

func TestDrawRingsLeaveCenterUntouched(t *testing.T) {
	state := visualizer.NewState(visualizer.DefaultConfig(), visualizer.Viewport{Width: 400, Height: 400},
		rand.New(rand.NewPCG(1, 2)))
	freq := make([]byte, 128)
	for i := range freq {
		freq[i] = 180
	}
	frame := visualizer.Step(state, visualizer.Input{
		Active:    true,
		Frequency: freq,
		Anchor:    visualizer.AnchorFromRect(150, 150, 100, 100, 20),
		HasAnchor: true,
	}, 0)
	frame.Particles = nil
	frame.Bars = nil
	frame.Flash = visualizer.Color{}
	require.Len(t, frame.Rings, 3)

	r := NewRenderer()
	require.NoError(t, r.Draw(&frame))

	img := r.Image()
	// the innermost ring sits at least offset pixels outside the top edge
	ring := frame.Rings[0].Curve.Start
	assert.NotEqual(t, Background, img.RGBAAt(int(math.Round(ring.X)), int(math.Round(ring.Y))))
	assert.Equal(t, Background, img.RGBAAt(200, 200))
}

func TestDrawFlashTintsWholeSurface(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(8, 8)
	frame.Flash = visualizer.RGBA(139, 92, 246, 0.5)

	require.NoError(t, r.Draw(&frame))

	for _, p := range [][2]int{{0, 0}, {7, 7}, {3, 5}} {
		assert.NotEqual(t, Background, r.Image().RGBAAt(p[0], p[1]))
	}
}

func TestDrawFadeConvergesToBackground(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(4, 4)
	frame.Flash = visualizer.RGBA(255, 255, 255, 1)
	require.NoError(t, r.Draw(&frame))

	frame.Flash = visualizer.Color{}
	for range 200 {
		require.NoError(t, r.Draw(&frame))
	}

	got := r.Image().RGBAAt(1, 1)
	want := Background
	assert.InDelta(t, want.R, got.R, 8)
	assert.InDelta(t, want.G, got.G, 8)
	assert.InDelta(t, want.B, got.B, 8)
}

func TestDrawIgnoresNonFiniteGeometry(t *testing.T) {
	r := NewRenderer()
	frame := baseFrame(20, 20)
	frame.Particles = []visualizer.ParticleSprite{{
		TrailFrom:  visualizer.Point{X: math.NaN(), Y: 1},
		TrailTo:    visualizer.Point{X: 5, Y: math.Inf(1)},
		TrailWidth: 2,
		TrailColor: visualizer.RGBA(255, 0, 0, 1),
		Head:       visualizer.Point{X: math.NaN(), Y: math.NaN()},
		HeadRadius: 3,
		HeadColor:  visualizer.RGBA(255, 0, 0, 1),
	}}

	assert.NotPanics(t, func() { assert.NoError(t, r.Draw(&frame)) })
}

func TestDrawFullLoopFrames(t *testing.T) {
	cfg := visualizer.DefaultConfig()
	state := visualizer.NewState(cfg, visualizer.Viewport{Width: 900, Height: 500}, rand.New(rand.NewPCG(3, 4)))
	freq := make([]byte, 256)
	wave := make([]byte, 512)
	for i := range freq {
		freq[i] = byte(255 - i)
	}
	for i := range wave {
		wave[i] = byte(128 + 60*math.Sin(float64(i)/10))
	}

	r := NewRenderer()
	for range 5 {
		frame := visualizer.Step(state, visualizer.Input{
			Active:    true,
			Frequency: freq,
			Waveform:  wave,
			Anchor:    visualizer.AnchorFromRect(500, 150, 200, 200, 20),
			HasAnchor: true,
		}, 16*time.Millisecond)
		require.NoError(t, r.Draw(&frame))
	}
	assert.Equal(t, 900, r.Image().Rect.Dx())
}

func TestColorNRGBAFeedsRasterizer(t *testing.T) {
	c := visualizer.RGBA(255, 0, 0, 1).NRGBA()
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, c)
}
