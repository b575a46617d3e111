package visualizer

const (
	waveformAmplitude = 60.0
	waveformHue       = 260.0
	waveformLineWidth = 1.5
)

// Polyline is an open stroked path.
type Polyline struct {
	Points []Point
	Color  Color
	Width  float64
}

// ComputeWaveform lays the time-domain sample across the content area at half height.
// It returns false for an empty sample.
func ComputeWaveform(dst []Point, b Bounds, wave []byte, intensity float64) (Polyline, bool) {
	if len(wave) == 0 || b.ContentWidth() <= 0 {
		return Polyline{Points: dst[:0]}, false
	}

	mid := b.Height / 2
	amp := waveformAmplitude * (0.5 + intensity)
	step := 0.0
	if len(wave) > 1 {
		step = b.ContentWidth() / float64(len(wave)-1)
	}

	pts := dst[:0]
	for i, v := range wave {
		pts = append(pts, Point{
			X: b.MinX + float64(i)*step,
			Y: mid + (float64(v)-128)/128*amp,
		})
	}
	return Polyline{
		Points: pts,
		Color:  HSLA(waveformHue, 0.7, 0.65, 0.25+intensity*0.35),
		Width:  waveformLineWidth,
	}, true
}
