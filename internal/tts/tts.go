// Package tts defines the contract between voicegate and a speech-synthesis engine.
//
// An engine is loaded once at startup and is assumed to be stateful and not safe
// for concurrent use. Callers never invoke it directly: every synthesis goes
// through the gate package, which owns the exclusive-access permit.
package tts

import (
	"context"
	"slices"
)

// StyleKind tags the variant held by a Style.
type StyleKind int

const (
	// StyleNone means no style reference was supplied.
	StyleNone StyleKind = iota

	// StyleWavFile references a waveform file on the server used for style transfer.
	StyleWavFile

	// StyleTokens carries global-style-token weights ({token_id: weight}).
	StyleTokens
)

// Style is the style reference of a synthesis request. Exactly one of WavPath
// or Tokens is meaningful, selected by Kind.
type Style struct {
	Kind    StyleKind
	WavPath string
	Tokens  map[string]float64
}

// IsZero reports whether no style reference is set.
func (s Style) IsZero() bool { return s.Kind == StyleNone }

// Request is the canonical synthesis directive produced by the voice resolver.
type Request struct {
	// Text is the non-empty text to speak.
	Text string

	// SpeakerID selects a named speaker. Empty when absent.
	SpeakerID string

	// LanguageID selects the language. Empty when absent.
	LanguageID string

	// Style is the optional style reference.
	Style Style

	// SpeakerReference lists reference audio files used for voice cloning.
	// When set, SpeakerID is always empty.
	SpeakerReference []string

	// Speed is a playback-rate multiplier (1.0 = normal).
	Speed float64
}

// Result is the raw output of a synthesis call. It is owned by the caller that
// requested it and is never shared between requests.
type Result struct {
	// Samples holds mono floating-point samples nominally in [-1.0, 1.0].
	Samples []float32

	// SampleRate is the audio sample rate in Hz.
	SampleRate int
}

// Capabilities is what an engine reports about itself at startup.
type Capabilities struct {
	MultiSpeaker bool
	MultiLingual bool
	VoiceCloning bool

	// Speakers and Languages are sorted sets of known identifiers.
	Speakers  []string
	Languages []string
}

// HasSpeaker reports whether id is a known speaker.
func (c Capabilities) HasSpeaker(id string) bool {
	_, ok := slices.BinarySearch(c.Speakers, id)
	return ok
}

// HasLanguage reports whether id is a known language.
func (c Capabilities) HasLanguage(id string) bool {
	_, ok := slices.BinarySearch(c.Languages, id)
	return ok
}

// NewCapabilities returns Capabilities with deduplicated, sorted id sets.
func NewCapabilities(multiSpeaker, multiLingual, cloning bool, speakers, languages []string) Capabilities {
	return Capabilities{
		MultiSpeaker: multiSpeaker,
		MultiLingual: multiLingual,
		VoiceCloning: cloning,
		Speakers:     sortedSet(speakers),
		Languages:    sortedSet(languages),
	}
}

func sortedSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Engine converts text to a waveform.
type Engine interface {
	// Name returns the backend identifier (e.g., "wyoming", "openai").
	Name() string

	// Capabilities describes the loaded model. It is called once at startup.
	Capabilities() Capabilities

	// Synthesize runs inference for a single request.
	Synthesize(ctx context.Context, req *Request) (*Result, error)

	// SerializeWAV encodes a result in the engine's native WAV layout.
	SerializeWAV(res *Result) ([]byte, error)

	// Close releases any resources held by the engine.
	Close() error
}
