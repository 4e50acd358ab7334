// Package voice normalizes the voice-related fields of an incoming request into
// a canonical tts.Request.
//
// Fields the engine cannot use are dropped rather than rejected: a speaker id
// sent to a single-speaker model, or a language id sent to a monolingual one,
// resolves to absent. Voice cloning is engaged opportunistically, only when the
// engine supports it and the reference path exists on the server.
package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nadzzz/voicegate/internal/tts"
)

var (
	// ErrEmptyInput is returned when the text is missing or blank.
	ErrEmptyInput = errors.New("empty input text")

	// ErrInvalidVoiceSpec is returned for speaker or language fields the engine rejects up front.
	ErrInvalidVoiceSpec = errors.New("invalid voice specification")

	// ErrInvalidStyleSpec is returned for a style that is neither a wav file nor a token map.
	ErrInvalidStyleSpec = errors.New("invalid style specification")
)

// Fields are the raw voice-related values extracted by an API adapter.
type Fields struct {
	Text       string
	SpeakerID  string
	LanguageID string

	// Style is a server-side .wav path or a JSON object of style-token weights.
	Style string

	// SpeakerWav is a reference file or directory for voice cloning.
	SpeakerWav string

	// Speed is the rate multiplier; zero or negative means 1.0.
	Speed float64
}

// Defaults are applied when a request leaves speaker or language empty.
type Defaults struct {
	SpeakerID  string
	LanguageID string
}

// Resolver turns Fields into a tts.Request according to engine capabilities.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	caps     tts.Capabilities
	defaults Defaults
}

// NewResolver creates a Resolver for an engine with the given capabilities.
func NewResolver(caps tts.Capabilities, defaults Defaults) *Resolver {
	return &Resolver{caps: caps, defaults: defaults}
}

// Capabilities returns the engine capabilities the resolver was built with.
func (r *Resolver) Capabilities() tts.Capabilities { return r.caps }

// Resolve validates f and produces the canonical synthesis directive.
func (r *Resolver) Resolve(f Fields) (*tts.Request, error) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	style, err := ResolveStyle(f.Style)
	if err != nil {
		return nil, err
	}

	refs, cloned, err := r.SpeakerReference(f.SpeakerWav)
	if err != nil {
		return nil, err
	}

	req := &tts.Request{
		Text:  text,
		Style: style,
		Speed: f.Speed,
	}
	if req.Speed <= 0 {
		req.Speed = 1.0
	}

	if cloned {
		// Reference audio overrides any named speaker.
		req.SpeakerReference = refs
	} else {
		// An unused reference path is ignored; the named speaker or the
		// default drives the voice.
		if req.SpeakerID, err = r.speaker(f.SpeakerID); err != nil {
			return nil, err
		}
	}

	if req.LanguageID, err = r.language(f.LanguageID); err != nil {
		return nil, err
	}

	return req, nil
}

// speaker applies the default and gates the id on multi-speaker support.
func (r *Resolver) speaker(id string) (string, error) {
	if id == "" {
		id = r.defaults.SpeakerID
	}
	if id == "" {
		return "", nil
	}
	if !r.caps.MultiSpeaker {
		slog.Debug("dropping speaker id for single-speaker engine", "speaker_id", id)
		return "", nil
	}
	if len(r.caps.Speakers) > 0 && !r.caps.HasSpeaker(id) {
		return "", fmt.Errorf("%w: unknown speaker %q", ErrInvalidVoiceSpec, id)
	}
	return id, nil
}

// language applies the default and gates the id on multi-lingual support.
func (r *Resolver) language(id string) (string, error) {
	if id == "" {
		id = r.defaults.LanguageID
	}
	if id == "" {
		return "", nil
	}
	if !r.caps.MultiLingual {
		slog.Debug("dropping language id for monolingual engine", "language_id", id)
		return "", nil
	}
	if len(r.caps.Languages) > 0 && !r.caps.HasLanguage(id) {
		return "", fmt.Errorf("%w: unknown language %q", ErrInvalidVoiceSpec, id)
	}
	return id, nil
}

// SpeakerReference resolves path to cloning reference files. It reports
// ok=false, without error, when cloning is unsupported, path is empty, or
// nothing exists at path.
// A directory yields every waveform file directly inside it in lexical order.
func (r *Resolver) SpeakerReference(path string) (refs []string, ok bool, err error) {
	path = strings.TrimSpace(path)
	if path == "" || !r.caps.VoiceCloning {
		return nil, false, nil
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return nil, false, nil
	}
	if !info.IsDir() {
		return []string{path}, true, nil
	}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading %s: %v", ErrInvalidVoiceSpec, path, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && IsWaveformFile(e.Name()) {
			refs = append(refs, filepath.Join(path, e.Name()))
		}
	}
	if len(refs) == 0 {
		return nil, false, fmt.Errorf("%w: no waveform files in %s", ErrInvalidVoiceSpec, path)
	}
	return refs, true, nil
}

// ResolveStyle interprets a style specification. An existing .wav file is a
// StyleWavFile reference; anything else must be a JSON object mapping token
// ids to numeric weights. Empty input resolves to no style.
func ResolveStyle(spec string) (tts.Style, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return tts.Style{}, nil
	}

	if IsWaveformFile(spec) {
		if info, err := os.Stat(spec); err == nil && info.Mode().IsRegular() {
			return tts.Style{Kind: tts.StyleWavFile, WavPath: spec}, nil
		}
	}

	var tokens map[string]float64
	if err := json.Unmarshal([]byte(spec), &tokens); err != nil || tokens == nil {
		return tts.Style{}, fmt.Errorf("%w: %q is not a wav file or a token-weight object", ErrInvalidStyleSpec, spec)
	}
	return tts.Style{Kind: tts.StyleTokens, Tokens: tokens}, nil
}

// IsWaveformFile reports whether name carries a waveform file extension.
func IsWaveformFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}
