// Package audio turns synthesized waveforms into encoded byte streams.
//
// WAV and raw PCM are produced in-process and are byte-reproducible. MP3, Opus,
// AAC and FLAC are delegated to an external Transcoder.
package audio

import (
	"fmt"
	"strings"
)

// Format is a requested output format.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"
	FormatPCM  Format = "pcm"
)

// Formats lists every supported format.
var Formats = []Format{FormatWAV, FormatMP3, FormatOpus, FormatAAC, FormatFLAC, FormatPCM}

// UnsupportedFormatError is returned for a format outside Formats.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Format)
}

// ParseFormat normalizes s and checks it against the supported set.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatWAV, FormatMP3, FormatOpus, FormatAAC, FormatFLAC, FormatPCM:
		return f, nil
	default:
		return "", &UnsupportedFormatError{Format: s}
	}
}

// MIMEType returns the Content-Type for f, or "" for unsupported formats.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatOpus:
		return "audio/ogg"
	case FormatAAC:
		return "audio/aac"
	case FormatFLAC:
		return "audio/flac"
	case FormatPCM:
		return "audio/L16"
	default:
		return ""
	}
}
