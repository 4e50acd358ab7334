package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/nadzzz/voicegate/internal/tts"
)

// ErrNoTranscoder is returned when a lossy format is requested but no
// external codec is configured.
var ErrNoTranscoder = errors.New("no transcoder configured")

// WAVSerializer produces the engine's native WAV encoding of a result.
type WAVSerializer interface {
	SerializeWAV(res *tts.Result) ([]byte, error)
}

// Transcoder re-encodes a mono float waveform into a container/codec pair.
// It may fail on malformed input or when the installed codec set lacks the
// target combination.
type Transcoder interface {
	Transcode(ctx context.Context, samples []float32, sampleRate int, container, codec string) ([]byte, error)
}

// Encoded is an encoded audio payload ready to be written to a client.
type Encoded struct {
	Data     []byte
	MIMEType string
	Format   Format
}

// Encoder maps a synthesis result and an output format to encoded bytes.
type Encoder struct {
	wav   WAVSerializer
	codec Transcoder
}

// NewEncoder returns an Encoder. codec may be nil, in which case only the
// wav and pcm formats can be produced.
func NewEncoder(wav WAVSerializer, codec Transcoder) *Encoder {
	return &Encoder{wav: wav, codec: codec}
}

// Encode converts res into format f.
func (e *Encoder) Encode(ctx context.Context, res *tts.Result, f Format) (*Encoded, error) {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatWAV:
		data, err = e.wav.SerializeWAV(res)
	case FormatPCM:
		data = EncodePCM16(res.Samples)
	case FormatMP3:
		data, err = e.transcode(ctx, res, "mp3", "libmp3lame")
	case FormatOpus:
		data, err = e.transcode(ctx, res, "ogg", "libopus")
	case FormatAAC:
		data, err = e.transcode(ctx, res, "mp4", "aac")
	case FormatFLAC:
		data, err = e.transcode(ctx, res, "flac", "flac")
	default:
		return nil, &UnsupportedFormatError{Format: string(f)}
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", f, err)
	}

	return &Encoded{Data: data, MIMEType: f.MIMEType(), Format: f}, nil
}

func (e *Encoder) transcode(ctx context.Context, res *tts.Result, container, codec string) ([]byte, error) {
	if e.codec == nil {
		return nil, ErrNoTranscoder
	}
	return e.codec.Transcode(ctx, res.Samples, res.SampleRate, container, codec)
}
