package visualizer

import (
	"context"
	"time"
)

// Driver ticks a loop on a fixed interval. The desktop app drives the loop from the
// toolkit's animation callback instead; Driver serves headless runs and tests.
type Driver struct {
	loop     *Loop
	interval time.Duration
}

// NewDriver creates a driver ticking every interval, the loop's nominal frame when zero.
func NewDriver(loop *Loop, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = loop.State().Config().FrameDuration
	}
	return &Driver{loop: loop, interval: interval}
}

// Run ticks until ctx is done and returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			d.loop.Tick(now.Sub(last))
			last = now
		}
	}
}
