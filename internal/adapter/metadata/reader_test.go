package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// id3Frame encodes a version 2.3 frame.
func id3Frame(id string, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	_ = binary.Write(&b, binary.BigEndian, uint32(len(body)))
	b.Write([]byte{0, 0})
	b.Write(body)
	return b.Bytes()
}

func textFrame(id, text string) []byte {
	return id3Frame(id, append([]byte{0}, text...))
}

// id3Tag wraps frames in a version 2.3 header followed by a few fake audio bytes.
func id3Tag(frames ...[]byte) []byte {
	body := bytes.Join(frames, nil)
	size := len(body)
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}
	return append(append(header, body...), 0xff, 0xfb, 0x90, 0x00)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadTags(t *testing.T) {
	cover := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	apic := append([]byte{0}, "image/png\x00"...)
	apic = append(apic, 3, 0)
	apic = append(apic, cover...)

	path := writeFile(t, "01 - track.mp3", id3Tag(
		textFrame("TIT2", "Night Drive"),
		textFrame("TPE1", "The Synths"),
		textFrame("TALB", "Neon"),
		id3Frame("APIC", apic),
	))

	track, err := NewReader(nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, "Night Drive", track.Title)
	assert.Equal(t, "The Synths", track.Artist)
	assert.Equal(t, "Neon", track.Album)
	assert.Equal(t, "mp3", track.FileFormat)
	assert.Equal(t, path, track.FilePath)
	assert.True(t, track.HasAlbumArt())
	assert.Equal(t, cover, track.AlbumArt)
	assert.Equal(t, "image/png", track.AlbumArtMIME)
}

func TestReadFallsBackWithoutTags(t *testing.T) {
	path := writeFile(t, "Some Song.FLAC", []byte("this file carries no tag block at all"))

	track, err := NewReader(nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, "Some Song", track.Title)
	assert.Equal(t, UnknownArtist, track.Artist)
	assert.Empty(t, track.Album)
	assert.Equal(t, "flac", track.FileFormat)
	assert.False(t, track.HasAlbumArt())
}

func TestReadEmptyTagsFallBack(t *testing.T) {
	path := writeFile(t, "blank.mp3", id3Tag(textFrame("TIT2", "  "), textFrame("TALB", "Album")))

	track, err := NewReader(nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, "blank", track.Title)
	assert.Equal(t, UnknownArtist, track.Artist)
	assert.Equal(t, "Album", track.Album)
}

func TestTitleFromFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/music/03_my_song.mp3", "my song"},
		{"/music/12 - Intro.flac", "Intro"},
		{"/music/7.Outro.ogg", "Outro"},
		{"/music/Plain Name.wav", "Plain Name"},
		{"/music/1999.mp3", "1999"},
		{"/music/01 .mp3", "01 "},
		{"/music/_under_score_.mp3", "under score"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFileName(tt.path))
		})
	}
}

func TestReadErrors(t *testing.T) {
	reader := NewReader(nil)

	_, err := reader.Read("")
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	_, err = reader.Read(filepath.Join(t.TempDir(), "gone.mp3"))
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestTrackIDIsStable(t *testing.T) {
	assert.Equal(t, TrackID("/music/a.mp3"), TrackID("/music/./a.mp3"))
	assert.NotEqual(t, TrackID("/music/a.mp3"), TrackID("/music/b.mp3"))
	assert.Len(t, TrackID("/music/a.mp3"), len("track-")+16)
}
