// Package visualizer computes the audio-reactive background of the player: smoothed
// band energy, a particle field, spectrum bars and deformed rings around the album art.
// Everything here is pure computation on a State; drawing lives in the paint package.
package visualizer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const warnInterval = 5 * time.Second

// Renderer draws a computed frame onto its surface. A layer that fails is skipped
// and reported through the returned error.
type Renderer interface {
	Draw(frame *Frame) error
}

// ActivitySource tells whether a track is currently playing.
type ActivitySource interface {
	IsPlaying() bool
}

// AnchorSource reports where the album art is, or false when it is not laid out.
type AnchorSource interface {
	Anchor() (Anchor, bool)
}

// Loop runs one tick at a time: apply a pending resize, sample, step, draw.
// Tick must be called from a single goroutine; Resize may be called from any.
type Loop struct {
	state    *State
	sampler  *Sampler
	activity ActivitySource
	anchor   AnchorSource
	renderer Renderer
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Viewport

	lastWarn map[string]time.Time
	now      func() time.Time
}

// NewLoop wires a loop. activity, anchor and renderer may be nil.
func NewLoop(state *State, sampler *Sampler, activity ActivitySource, anchor AnchorSource, renderer Renderer, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	return &Loop{
		state:    state,
		sampler:  sampler,
		activity: activity,
		anchor:   anchor,
		renderer: renderer,
		logger:   logger,
		lastWarn: make(map[string]time.Time),
		now:      time.Now,
	}
}

// State returns the loop's state. Only read it from the ticking goroutine.
func (l *Loop) State() *State {
	return l.state
}

// SetRenderer replaces the renderer.
func (l *Loop) SetRenderer(r Renderer) {
	l.renderer = r
}

// SetAnchorSource replaces the anchor source. Call it before the loop starts ticking.
func (l *Loop) SetAnchorSource(a AnchorSource) {
	l.anchor = a
}

// Resize queues a new viewport for the next tick.
func (l *Loop) Resize(width, height float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = &Viewport{Width: width, Height: height}
}

// Tick runs one frame. It never panics: a failing stage is logged and skipped.
func (l *Loop) Tick(dt time.Duration) {
	l.applyResize()

	var in Input
	l.guard("sample", func() {
		in.Active = l.activity != nil && l.activity.IsPlaying()
		in.Frequency, in.Waveform = l.sampler.Sample(in.Active)
	})
	l.guard("anchor", func() {
		if l.anchor != nil {
			in.Anchor, in.HasAnchor = l.anchor.Anchor()
		}
	})

	var frame Frame
	stepped := l.guard("step", func() {
		frame = Step(l.state, in, dt)
	})
	if !stepped || l.renderer == nil {
		return
	}

	l.guard("draw", func() {
		if err := l.renderer.Draw(&frame); err != nil {
			l.warn("draw", err)
		}
	})
}

func (l *Loop) applyResize() {
	l.mu.Lock()
	vp := l.pending
	l.pending = nil
	l.mu.Unlock()

	if vp != nil {
		l.state.Resize(*vp)
	}
}

// guard runs fn, recovering a panic into a rate-limited warning. It reports whether fn completed.
func (l *Loop) guard(stage string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.warn(stage, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()
	fn()
	return true
}

func (l *Loop) warn(stage string, err error) {
	now := l.now()
	if last, seen := l.lastWarn[stage]; seen && now.Sub(last) < warnInterval {
		return
	}
	l.lastWarn[stage] = now
	l.logger.Warn("visualizer stage skipped",
		slog.String("stage", stage),
		slog.String("error", err.Error()))
}
