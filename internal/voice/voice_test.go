package voice

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nadzzz/voicegate/internal/tts"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := NewResolver(tts.Capabilities{}, Defaults{})
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := r.Resolve(Fields{Text: text}); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Resolve(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestResolveSingleSpeakerDropsSpeaker(t *testing.T) {
	r := NewResolver(tts.Capabilities{}, Defaults{})
	req, err := r.Resolve(Fields{Text: "hi", SpeakerID: "p225", LanguageID: "fr"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if req.SpeakerID != "" {
		t.Errorf("SpeakerID = %q, want dropped", req.SpeakerID)
	}
	if req.LanguageID != "" {
		t.Errorf("LanguageID = %q, want dropped", req.LanguageID)
	}
	if req.Speed != 1.0 {
		t.Errorf("Speed = %v, want 1.0", req.Speed)
	}
}

func TestResolveMultiSpeaker(t *testing.T) {
	caps := tts.NewCapabilities(true, true, false, []string{"b", "a"}, []string{"en", "de"})

	tests := []struct {
		name     string
		defaults Defaults
		fields   Fields
		speaker  string
		language string
		wantErr  error
	}{
		{
			name:     "explicit values",
			fields:   Fields{Text: "hi", SpeakerID: "a", LanguageID: "de"},
			speaker:  "a",
			language: "de",
		},
		{
			name:     "defaults fill empty fields",
			defaults: Defaults{SpeakerID: "b", LanguageID: "en"},
			fields:   Fields{Text: "hi"},
			speaker:  "b",
			language: "en",
		},
		{
			name:    "unknown speaker",
			fields:  Fields{Text: "hi", SpeakerID: "zz"},
			wantErr: ErrInvalidVoiceSpec,
		},
		{
			name:    "unknown language",
			fields:  Fields{Text: "hi", SpeakerID: "a", LanguageID: "xx"},
			wantErr: ErrInvalidVoiceSpec,
		},
		{
			name:     "speaker_wav ignored without cloning support",
			defaults: Defaults{SpeakerID: "b"},
			fields:   Fields{Text: "hi", SpeakerWav: "/srv/refs/alice.wav"},
			speaker:  "b",
		},
		{
			name:    "speaker_wav ignored alongside a named speaker",
			fields:  Fields{Text: "hi", SpeakerID: "a", SpeakerWav: "/srv/refs/alice.wav"},
			speaker: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(caps, tt.defaults)
			req, err := r.Resolve(tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if req.SpeakerID != tt.speaker {
				t.Errorf("SpeakerID = %q, want %q", req.SpeakerID, tt.speaker)
			}
			if req.LanguageID != tt.language {
				t.Errorf("LanguageID = %q, want %q", req.LanguageID, tt.language)
			}
		})
	}
}

func TestResolveCloningDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.wav", "a.wav", "b.WAV", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755); err != nil {
		t.Fatal(err)
	}

	caps := tts.NewCapabilities(true, false, true, []string{"a"}, nil)
	r := NewResolver(caps, Defaults{SpeakerID: "a"})

	want := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "b.WAV"),
		filepath.Join(dir, "c.wav"),
	}
	for i := 0; i < 3; i++ {
		req, err := r.Resolve(Fields{Text: "hi", SpeakerID: "a", SpeakerWav: dir})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(req.SpeakerReference, want) {
			t.Fatalf("SpeakerReference = %v, want %v", req.SpeakerReference, want)
		}
		if req.SpeakerID != "" {
			t.Errorf("SpeakerID = %q, want cleared when cloning", req.SpeakerID)
		}
	}
}

func TestResolveCloningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.wav")
	writeFile(t, path)

	r := NewResolver(tts.NewCapabilities(false, false, true, nil, nil), Defaults{})
	req, err := r.Resolve(Fields{Text: "hi", SpeakerWav: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(req.SpeakerReference, []string{path}) {
		t.Errorf("SpeakerReference = %v, want [%s]", req.SpeakerReference, path)
	}
}

func TestResolveCloningMissingPathFallsBack(t *testing.T) {
	caps := tts.NewCapabilities(true, false, true, []string{"a", "b"}, nil)
	r := NewResolver(caps, Defaults{SpeakerID: "a"})

	req, err := r.Resolve(Fields{Text: "hi", SpeakerWav: "/nope/ref.wav"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if req.SpeakerReference != nil {
		t.Errorf("SpeakerReference = %v, want none", req.SpeakerReference)
	}
	if req.SpeakerID != "a" {
		t.Errorf("SpeakerID = %q, want default a", req.SpeakerID)
	}
}

func TestSpeakerReference(t *testing.T) {
	empty := t.TempDir()
	file := filepath.Join(t.TempDir(), "ref.wav")
	writeFile(t, file)

	cloning := NewResolver(tts.NewCapabilities(false, false, true, nil, nil), Defaults{})
	noCloning := NewResolver(tts.Capabilities{}, Defaults{})

	if _, ok, err := noCloning.SpeakerReference(file); ok || err != nil {
		t.Errorf("without cloning support: ok=%v err=%v, want false nil", ok, err)
	}
	if _, ok, err := cloning.SpeakerReference("/does/not/exist"); ok || err != nil {
		t.Errorf("missing path: ok=%v err=%v, want false nil", ok, err)
	}
	if _, ok, err := cloning.SpeakerReference(""); ok || err != nil {
		t.Errorf("empty path: ok=%v err=%v, want false nil", ok, err)
	}
	if _, _, err := cloning.SpeakerReference(empty); !errors.Is(err, ErrInvalidVoiceSpec) {
		t.Errorf("empty directory: err=%v, want ErrInvalidVoiceSpec", err)
	}
	refs, ok, err := cloning.SpeakerReference(file)
	if !ok || err != nil || len(refs) != 1 {
		t.Errorf("file: refs=%v ok=%v err=%v", refs, ok, err)
	}
}

func TestResolveStyle(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "style.wav")
	writeFile(t, wav)

	t.Run("empty", func(t *testing.T) {
		s, err := ResolveStyle("")
		if err != nil || !s.IsZero() {
			t.Errorf("ResolveStyle(\"\") = %+v, %v", s, err)
		}
	})

	t.Run("wav file", func(t *testing.T) {
		s, err := ResolveStyle(wav)
		if err != nil {
			t.Fatalf("ResolveStyle: %v", err)
		}
		if s.Kind != tts.StyleWavFile || s.WavPath != wav {
			t.Errorf("style = %+v, want wav file %s", s, wav)
		}
	})

	t.Run("tokens", func(t *testing.T) {
		s, err := ResolveStyle(`{"0": 0.1, "3": -0.25}`)
		if err != nil {
			t.Fatalf("ResolveStyle: %v", err)
		}
		want := map[string]float64{"0": 0.1, "3": -0.25}
		if s.Kind != tts.StyleTokens || !reflect.DeepEqual(s.Tokens, want) {
			t.Errorf("style = %+v, want tokens %v", s, want)
		}
	})

	for _, spec := range []string{"not json", `{"0": "high"}`, `[1, 2]`, "null", "/missing/style.wav"} {
		t.Run("invalid "+spec, func(t *testing.T) {
			if _, err := ResolveStyle(spec); !errors.Is(err, ErrInvalidStyleSpec) {
				t.Errorf("ResolveStyle(%q) error = %v, want ErrInvalidStyleSpec", spec, err)
			}
		})
	}
}

func TestResolveSpeed(t *testing.T) {
	r := NewResolver(tts.Capabilities{}, Defaults{})
	req, err := r.Resolve(Fields{Text: "hi", Speed: 1.5})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if req.Speed != 1.5 {
		t.Errorf("Speed = %v, want 1.5", req.Speed)
	}
}
