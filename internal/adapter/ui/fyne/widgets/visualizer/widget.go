// Package visualizer provides the Fyne widget that shows the audio-reactive background.
package visualizer

import (
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	core "github.com/tejashwikalptaru/tunewave/internal/visualizer"
	"github.com/tejashwikalptaru/tunewave/internal/visualizer/paint"
)

// Widget paints a render loop onto a raster. A forever-repeating animation is the
// frame driver: every animation tick runs one loop tick and refreshes the raster.
//
// The loop, its renderer and the raster generator all run on the UI goroutine.
type Widget struct {
	widget.BaseWidget

	raster   *canvas.Raster
	loop     *core.Loop
	renderer *paint.Renderer

	anim    *fyne.Animation
	last    time.Time
	now     func() time.Time
	running bool
	mu      sync.Mutex
}

// New creates a widget for loop and installs its renderer on the loop.
func New(loop *core.Loop) *Widget {
	v := &Widget{
		loop:     loop,
		renderer: paint.NewRenderer(),
		now:      time.Now,
	}
	loop.SetRenderer(v.renderer)

	v.raster = canvas.NewRaster(v.generate)
	v.anim = fyne.NewAnimation(time.Second, v.tick)
	v.anim.Curve = fyne.AnimationLinear
	v.anim.RepeatCount = fyne.AnimationRepeatForever

	v.ExtendBaseWidget(v)

	return v
}

// CreateRenderer implements fyne.Widget.
func (v *Widget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns the minimum size of the visualizer.
// Returns a minimal size so the widget expands to fill available space.
func (v *Widget) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Resize resizes the widget and queues the new viewport on the loop.
func (v *Widget) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.loop.Resize(float64(size.Width), float64(size.Height))
}

// Start begins driving the loop. Calling it again while running does nothing.
func (v *Widget) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return
	}
	v.running = true
	v.last = time.Time{}
	v.anim.Start()
}

// Stop stops driving the loop.
func (v *Widget) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return
	}
	v.running = false
	v.anim.Stop()
}

// tick is the animation callback; the progress value is ignored.
func (v *Widget) tick(float32) {
	now := v.now()
	var dt time.Duration
	if !v.last.IsZero() {
		dt = now.Sub(v.last)
	}
	v.last = now

	v.loop.Tick(dt)
	v.raster.Refresh()
}

// generate hands the painted surface to the raster, which scales it to its pixel size.
func (v *Widget) generate(_, _ int) image.Image {
	img := v.renderer.Image()
	if img.Rect.Empty() {
		blank := image.NewRGBA(image.Rect(0, 0, 1, 1))
		blank.SetRGBA(0, 0, paint.Background)
		return blank
	}
	return img
}
