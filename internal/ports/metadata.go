package ports

import (
	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// MetadataReader extracts the tags and embedded cover image of an audio file.
//
// Thread-safety: Implementations must be safe for concurrent use; the library
// service reads files from its import goroutine.
type MetadataReader interface {
	// Read returns a track for filePath. Missing tags fall back to the file name
	// for the title and "Unknown Artist" for the artist; unreadable tags are not an error.
	//
	// Returns domain.ErrFileNotFound if the file does not exist.
	Read(filePath string) (domain.MusicTrack, error)
}
