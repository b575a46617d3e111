package visualizer

// BandEnergy holds the smoothed loudness of the spectrum, each value in [0, 1].
type BandEnergy struct {
	Overall float64
	Bass    float64
	Mid     float64
	Treble  float64
}

// Band selects one of the three spectrum thirds.
type Band int

const (
	BandBass Band = iota
	BandMid
	BandTreble
)

// Of returns the energy of band b.
func (e BandEnergy) Of(b Band) float64 {
	switch b {
	case BandBass:
		return e.Bass
	case BandMid:
		return e.Mid
	case BandTreble:
		return e.Treble
	default:
		return 0
	}
}

// Span is a half-open index range [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of indices in s.
func (s Span) Len() int {
	return s.End - s.Start
}

// Thirds splits n bins into three contiguous spans. The first two have n/3 bins,
// the treble span absorbs the remainder.
func Thirds(n int) (bass, mid, treble Span) {
	if n < 0 {
		n = 0
	}
	third := n / 3
	return Span{0, third}, Span{third, 2 * third}, Span{2 * third, n}
}

// TargetEnergy projects a frequency sample onto the four channels. Empty input is silence.
func TargetEnergy(freq []byte) BandEnergy {
	if len(freq) == 0 {
		return BandEnergy{}
	}
	bass, mid, treble := Thirds(len(freq))
	return BandEnergy{
		Overall: meanByte(freq) / 255,
		Bass:    meanByte(freq[bass.Start:bass.End]) / 255,
		Mid:     meanByte(freq[mid.Start:mid.End]) / 255,
		Treble:  meanByte(freq[treble.Start:treble.End]) / 255,
	}
}

// Smooth moves each channel of prev toward target by its factor.
func Smooth(prev, target BandEnergy, f SmoothingFactors) BandEnergy {
	return BandEnergy{
		Overall: Lerp(prev.Overall, target.Overall, f.Overall),
		Bass:    Lerp(prev.Bass, target.Bass, f.Bass),
		Mid:     Lerp(prev.Mid, target.Mid, f.Mid),
		Treble:  Lerp(prev.Treble, target.Treble, f.Treble),
	}
}

// Update smooths prev toward the energy of freq.
func Update(prev BandEnergy, freq []byte, f SmoothingFactors) BandEnergy {
	return Smooth(prev, TargetEnergy(freq), f)
}

// Lerp is one step of exponential smoothing.
func Lerp(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

// SmoothSpatial writes a moving average of src with the given radius into dst,
// shrinking the window at the edges. It returns dst resized to len(src).
func SmoothSpatial(dst []float64, src []byte, radius int) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	if radius < 0 {
		radius = 0
	}

	// running window sum
	var sum float64
	lo, hi := 0, -1
	for i := range src {
		for hi < min(i+radius, len(src)-1) {
			hi++
			sum += float64(src[hi])
		}
		for lo < i-radius {
			sum -= float64(src[lo])
			lo++
		}
		dst[i] = sum / float64(hi-lo+1)
	}
	return dst
}

func meanByte(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	var sum int
	for _, v := range b {
		sum += int(v)
	}
	return float64(sum) / float64(len(b))
}
