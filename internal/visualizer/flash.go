package visualizer

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	flashOnsetRise    = 0.12 // Minimum jump of the raw bass over the smoothed bass
	flashOnsetFloor   = 0.3  // Minimum raw bass for an onset
	flashCooldown     = 0.25 // Seconds between two flashes
	flashFrequency    = 10.0 // Spring angular frequency
	flashDamping      = 1.0  // Critically damped, never overshoots
	flashAlphaScale   = 0.08
	flashVisibleAbove = 0.01
)

// FlashColor is the tint of the full-surface flash overlay.
var FlashColor = RGBA(139, 92, 246, 1)

// FlashPulse is a short overlay fired on bass onsets that relaxes back to zero
// on a critically damped spring.
type FlashPulse struct {
	spring   harmonica.Spring
	level    float64
	velocity float64
	lastAt   float64
	fired    bool
}

// NewFlashPulse creates a pulse whose spring is stepped once per nominal frame.
func NewFlashPulse(frame time.Duration) FlashPulse {
	fps := max(int(math.Round(float64(time.Second)/float64(frame))), 1)
	return FlashPulse{
		spring: harmonica.NewSpring(harmonica.FPS(fps), flashFrequency, flashDamping),
	}
}

// Level returns the current envelope in [0, 1].
func (f *FlashPulse) Level() float64 {
	return f.level
}

// Update advances the envelope by one frame. targetBass is the raw bass of this
// frame, smoothedBass the smoothed value before this frame's update, now the
// elapsed-time counter in seconds.
func (f *FlashPulse) Update(targetBass, smoothedBass, now float64) {
	onset := targetBass-smoothedBass > flashOnsetRise && targetBass > flashOnsetFloor
	if onset && (!f.fired || now-f.lastAt >= flashCooldown) {
		f.level, f.velocity = 1, 0
		f.lastAt, f.fired = now, true
		return
	}

	f.level, f.velocity = f.spring.Update(f.level, f.velocity, 0)
	f.level = clamp01(f.level)
}

// Overlay returns the flash color for the current envelope, invisible when faint.
func (f *FlashPulse) Overlay() Color {
	if f.level < flashVisibleAbove {
		return Color{}
	}
	c := FlashColor
	c.A = f.level * flashAlphaScale
	return c
}
