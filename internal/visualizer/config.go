package visualizer

import (
	"time"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// SmoothingFactors are the per-channel exponential smoothing factors in (0, 1).
type SmoothingFactors struct {
	Overall float64
	Bass    float64
	Mid     float64
	Treble  float64
}

// Config holds every tunable of the visualizer.
type Config struct {
	// Particle field
	ParticleCount    int
	SidebarWidth     float64 // Horizontal band kept free of particles and bars on wide viewports
	NarrowBreakpoint float64 // Viewports at or below this width drop the sidebar band

	// Bars
	BarWidth           float64
	BarGap             float64
	BarMaxHeight       float64
	BarMinHeight       float64
	BarSmoothingRadius int

	// Rings around the anchor
	RingSmoothingRadius int
	RingPoints          int
	CornerRadius        float64

	// Loop
	FrameDuration time.Duration // Nominal frame; advances the elapsed-time counter each tick
	FadeColor     Color         // Translucent fill applied over the previous frame
	Smoothing     SmoothingFactors
}

// DefaultConfig returns the stock look of the player.
func DefaultConfig() Config {
	return Config{
		ParticleCount:    45,
		SidebarWidth:     320,
		NarrowBreakpoint: 768,

		BarWidth:           6,
		BarGap:             3,
		BarMaxHeight:       180,
		BarMinHeight:       4,
		BarSmoothingRadius: 2,

		RingSmoothingRadius: 3,
		RingPoints:          100,
		CornerRadius:        20,

		FrameDuration: 16 * time.Millisecond,
		FadeColor:     RGBA(10, 10, 15, 0.15),
		Smoothing: SmoothingFactors{
			Overall: 0.15,
			Bass:    0.12,
			Mid:     0.14,
			Treble:  0.16,
		},
	}
}

// Validate reports the first out-of-range field as a *domain.ValidationError.
func (c Config) Validate() error {
	switch {
	case c.ParticleCount < 0:
		return domain.NewValidationError("ParticleCount", c.ParticleCount, "must not be negative")
	case c.SidebarWidth < 0:
		return domain.NewValidationError("SidebarWidth", c.SidebarWidth, "must not be negative")
	case c.NarrowBreakpoint < 0:
		return domain.NewValidationError("NarrowBreakpoint", c.NarrowBreakpoint, "must not be negative")
	case c.BarWidth <= 0:
		return domain.NewValidationError("BarWidth", c.BarWidth, "must be positive")
	case c.BarGap < 0:
		return domain.NewValidationError("BarGap", c.BarGap, "must not be negative")
	case c.BarMinHeight < 0 || c.BarMaxHeight < c.BarMinHeight:
		return domain.NewValidationError("BarMaxHeight", c.BarMaxHeight, "must be at least BarMinHeight")
	case c.BarSmoothingRadius < 0:
		return domain.NewValidationError("BarSmoothingRadius", c.BarSmoothingRadius, "must not be negative")
	case c.RingSmoothingRadius < 0:
		return domain.NewValidationError("RingSmoothingRadius", c.RingSmoothingRadius, "must not be negative")
	case c.RingPoints < 3:
		return domain.NewValidationError("RingPoints", c.RingPoints, "must be at least 3")
	case c.CornerRadius < 0:
		return domain.NewValidationError("CornerRadius", c.CornerRadius, "must not be negative")
	case c.FrameDuration <= 0:
		return domain.NewValidationError("FrameDuration", c.FrameDuration, "must be positive")
	}

	factors := []struct {
		name  string
		value float64
	}{
		{"Smoothing.Overall", c.Smoothing.Overall},
		{"Smoothing.Bass", c.Smoothing.Bass},
		{"Smoothing.Mid", c.Smoothing.Mid},
		{"Smoothing.Treble", c.Smoothing.Treble},
	}
	for _, f := range factors {
		if f.value <= 0 || f.value >= 1 {
			return domain.NewValidationError(f.name, f.value, "must be in (0, 1)")
		}
	}
	return nil
}

// Bounds is the region particles and bars live in for a given viewport.
type Bounds struct {
	MinX   float64
	Width  float64
	Height float64
}

// ContentWidth returns the drawable width right of the sidebar band.
func (b Bounds) ContentWidth() float64 {
	return b.Width - b.MinX
}

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Narrow reports whether the viewport is at or below the breakpoint.
func (c Config) Narrow(vp Viewport) bool {
	return vp.Width <= c.NarrowBreakpoint
}

// Bounds returns the content bounds for vp. The sidebar band is dropped on narrow
// viewports and whenever it would not leave any width.
func (c Config) Bounds(vp Viewport) Bounds {
	minX := c.SidebarWidth
	if c.Narrow(vp) || minX >= vp.Width {
		minX = 0
	}
	return Bounds{MinX: minX, Width: max(vp.Width, 0), Height: max(vp.Height, 0)}
}
