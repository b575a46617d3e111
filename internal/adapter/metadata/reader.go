// Package metadata reads tags and embedded album art with dhowden/tag.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// UnknownArtist is used when a file carries no artist tag.
const UnknownArtist = domain.UnknownArtist

var trackNumberPrefix = regexp.MustCompile(`^\d+[\s._-]+`)

// Reader implements ports.MetadataReader. It holds no state and is safe for concurrent use.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a metadata reader. A nil logger discards debug output.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{logger: logger}
}

// Read returns the track for filePath. Unreadable or missing tags fall back to the
// file name and UnknownArtist.
func (r *Reader) Read(filePath string) (domain.MusicTrack, error) {
	if filePath == "" {
		return domain.MusicTrack{}, domain.ErrInvalidFilePath
	}

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.MusicTrack{}, domain.ErrFileNotFound
		}
		return domain.MusicTrack{}, err
	}
	defer file.Close()

	track := domain.MusicTrack{
		ID:         TrackID(filePath),
		FilePath:   filePath,
		Title:      TitleFromFileName(filePath),
		Artist:     UnknownArtist,
		FileFormat: domain.FormatOf(filePath),
	}

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			r.logger.Debug("tag read failed", slog.String("file_path", filePath), slog.Any("error", err))
		}
		return track, nil
	}

	if title := strings.TrimSpace(meta.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		track.Artist = artist
	}
	track.Album = strings.TrimSpace(meta.Album())

	if picture := meta.Picture(); picture != nil && len(picture.Data) > 0 {
		track.AlbumArt = picture.Data
		track.AlbumArtMIME = picture.MIMEType
	}

	return track, nil
}

// TitleFromFileName turns "03_my_song.mp3" into "my song": the extension and a
// leading track number are dropped and underscores become spaces.
func TitleFromFileName(filePath string) string {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	title := strings.TrimSpace(strings.ReplaceAll(trackNumberPrefix.ReplaceAllString(name, ""), "_", " "))
	if title == "" {
		return name
	}
	return title
}

// TrackID derives a stable identifier from the cleaned path.
func TrackID(filePath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(filePath)))
	return "track-" + hex.EncodeToString(sum[:8])
}

var _ ports.MetadataReader = (*Reader)(nil)
