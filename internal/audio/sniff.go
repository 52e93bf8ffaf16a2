package audio

import (
	"bytes"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
)

// Sniff identifies an audio container from its bytes and returns the file
// extension and MIME type. Unknown data yields empty strings.
func Sniff(data []byte) (ext string, contentType string) {
	if wav.NewDecoder(bytes.NewReader(data)).IsValidFile() {
		return "wav", "audio/wav"
	}

	_, fileType, err := tag.Identify(bytes.NewReader(data))
	if err != nil {
		return "", ""
	}
	switch fileType {
	case tag.MP3:
		return "mp3", "audio/mpeg"
	case tag.FLAC:
		return "flac", "audio/flac"
	case tag.OGG:
		return "ogg", "audio/ogg"
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return "m4a", "audio/mp4"
	default:
		return "", ""
	}
}
