package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `An audio-reactive music player built with Go and Fyne.

**Features:**
- Play MP3, FLAC, WAV and Ogg Vorbis files
- Spectrum bars, particles and rings that follow the music
- Shuffle, repeat all and repeat one
- Three-band equalizer with master gain

**Keys:**
- Space: play / pause
- Left / Right: seek 5 seconds
- Up / Down: volume
`
