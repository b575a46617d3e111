package beep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// decode opens path and picks a decoder by extension.
// Closing the returned streamer closes the file.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := domain.FormatOf(path)
	if !domain.IsSupportedFormat(path) {
		return nil, beep.Format{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, beep.Format{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, beep.Format{}, domain.NewAudioEngineError("load", path, "open failed", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case "mp3":
		stream, format, err = mp3.Decode(f)
	case "wav":
		stream, format, err = wav.Decode(f)
	case "flac":
		stream, format, err = flac.Decode(f)
	default:
		stream, format, err = vorbis.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, domain.NewAudioEngineError("load", path, "decode failed", err)
	}
	return stream, format, nil
}
