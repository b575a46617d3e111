package visualizer

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSLA(t *testing.T) {
	red := HSLA(0, 1, 0.5, 1)
	assert.InDelta(t, 1, red.R, 1e-9)
	assert.InDelta(t, 0, red.G, 1e-9)
	assert.InDelta(t, 0, red.B, 1e-9)

	assert.Equal(t, HSLA(10, 0.5, 0.5, 0.5), HSLA(370, 0.5, 0.5, 0.5))
	assert.Equal(t, HSLA(350, 0.5, 0.5, 0.5), HSLA(-10, 0.5, 0.5, 0.5))
	assert.Zero(t, HSLA(250, 0.7, 0.5, math.NaN()).A)
	assert.Equal(t, 1.0, HSLA(250, 0.7, 0.5, 3).A)
}

func TestRGBA(t *testing.T) {
	c := RGBA(10, 10, 15, 0.15)

	assert.Equal(t, color.NRGBA{R: 10, G: 10, B: 15, A: 38}, c.NRGBA())
	assert.True(t, c.Visible())
	assert.False(t, Color{}.Visible())
}
