package visualizer

import "math"

const (
	barGlowAbove     = 0.5
	barGlowBlur      = 10.0
	barHueStart      = 250.0
	barHueSweep      = 40.0
	barCornerMaximum = 4.0
)

// Bar is one spectrum bar. Stops run from the bottom (offset 0) to the top.
type Bar struct {
	Rect      RoundedRect // Only the top corners are rounded
	Stops     [3]GradientStop
	GlowColor Color // Invisible unless the bar is loud
	GlowBlur  float64
}

// BarLayout is the horizontal placement of the bar block.
type BarLayout struct {
	Count  int
	StartX float64
	Step   float64
}

// LayoutBars fits as many fixed-width bars as possible into b and centers the block.
func LayoutBars(cfg Config, b Bounds) BarLayout {
	step := cfg.BarWidth + cfg.BarGap
	width := b.ContentWidth()
	if step <= 0 || width <= 0 {
		return BarLayout{}
	}

	count := int(math.Floor(width / step))
	if count <= 0 {
		return BarLayout{}
	}
	total := float64(count)*cfg.BarWidth + float64(count-1)*cfg.BarGap
	return BarLayout{
		Count:  count,
		StartX: b.MinX + (width-total)/2,
		Step:   step,
	}
}

// ComputeBars appends the bars for the spatially smoothed spectrum to dst.
func ComputeBars(dst []Bar, cfg Config, b Bounds, spatial []float64, intensity float64) []Bar {
	layout := LayoutBars(cfg, b)
	radius := math.Min(cfg.BarWidth/2, barCornerMaximum)

	for i := range layout.Count {
		frac := float64(i) / float64(layout.Count)

		var norm float64
		if len(spatial) > 0 {
			norm = spatial[min(int(frac*float64(len(spatial))), len(spatial)-1)] / 255
		}

		height := math.Max(cfg.BarMinHeight, norm*cfg.BarMaxHeight*(0.5+intensity*0.8))
		hue := barHueStart + frac*barHueSweep

		bar := Bar{
			Rect: RoundedRect{
				X:      layout.StartX + float64(i)*layout.Step,
				Y:      b.Height - height,
				W:      cfg.BarWidth,
				H:      height,
				Radius: radius,
			},
			Stops: [3]GradientStop{
				{0, HSLA(hue, 0.7, 0.5, 0.9)},
				{0.5, HSLA(hue+20, 0.8, 0.6, 0.7)},
				{1, HSLA(hue+40, 0.9, 0.7, 0.5)},
			},
		}
		if norm > barGlowAbove {
			bar.GlowColor = HSLA(hue, 0.8, 0.6, norm*0.5)
			bar.GlowBlur = barGlowBlur
		}
		dst = append(dst, bar)
	}
	return dst
}
