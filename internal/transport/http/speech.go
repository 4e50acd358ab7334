package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/voice"
)

// maxSpeechBodyBytes bounds a /v1/audio/speech JSON body.
const maxSpeechBodyBytes = 1 << 20

// defaultSpeechFormat is the format used when response_format is omitted.
const defaultSpeechFormat = audio.FormatMP3

// SpeechRequest is the JSON body of POST /v1/audio/speech.
type SpeechRequest struct {
	// Model is accepted for compatibility and ignored.
	Model string `json:"model" example:"tts-1"`

	// Input is the text to synthesize.
	Input string `json:"input" example:"Hello world"`

	// Voice is a speaker id, or a server-side path for voice cloning.
	Voice string `json:"voice,omitempty" example:"p225"`

	// ResponseFormat is one of wav, mp3, opus, aac, flac, pcm. Defaults to mp3
	// when absent; an explicit empty value is unsupported.
	ResponseFormat *string `json:"response_format,omitempty" example:"mp3"`

	// Speed is the playback rate multiplier. Defaults to 1.0.
	Speed *float64 `json:"speed,omitempty" example:"1.0"`
}

// handleSpeech synthesizes speech with the OpenAI-compatible request shape.
//
// @Summary     OpenAI-compatible speech
// @Description Synthesizes the input and returns audio in response_format. The model field is ignored.
// @Description voice is a speaker id, or a server-side file or directory used as cloning reference
// @Description when the engine supports voice cloning.
// @Tags        speech
// @Accept      json
// @Produce     audio/mpeg
// @Produce     audio/wav
// @Produce     audio/ogg
// @Produce     audio/aac
// @Produce     audio/flac
// @Produce     audio/L16
// @Param       request  body      SpeechRequest  true  "Speech request"
// @Success     200      {file}    binary         "Encoded audio"
// @Failure     400      {string}  string         "Invalid JSON, empty input, or unsupported format"
// @Failure     500      {string}  string         "Synthesis or encoding failed"
// @Router      /v1/audio/speech [post]
func (t *Transport) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSpeechBodyBytes))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := defaultSpeechFormat
	if req.ResponseFormat != nil {
		// Rejected before any synthesis is attempted.
		f, err := audio.ParseFormat(*req.ResponseFormat)
		if err != nil {
			writeError(w, r, err)
			return
		}
		format = f
	}

	fields := voice.Fields{Text: req.Input}
	if req.Speed != nil {
		fields.Speed = *req.Speed
	}

	// An existing path on a cloning engine is reference audio; anything else
	// names a speaker.
	_, cloned, err := t.dispatcher.Resolver().SpeakerReference(req.Voice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cloned {
		fields.SpeakerWav = req.Voice
	} else {
		fields.SpeakerID = req.Voice
	}

	if req.Model != "" {
		slog.Debug("ignoring requested model", "model", req.Model)
	}

	encoded, err := t.dispatcher.Speak(r.Context(), fields, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAudio(w, encoded.MIMEType, encoded.Data)
}
