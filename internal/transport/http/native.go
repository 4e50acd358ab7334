package http

import (
	"net/http"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/voice"
)

// nativeFields reads the native API fields. A non-empty header wins over the
// form or query parameter of the same meaning.
func nativeFields(r *http.Request) voice.Fields {
	pick := func(header, param string) string {
		if v := r.Header.Get(header); v != "" {
			return v
		}
		return r.FormValue(param)
	}

	return voice.Fields{
		Text:       pick("text", "text"),
		SpeakerID:  pick("speaker-id", "speaker_id"),
		LanguageID: pick("language-id", "language_id"),
		Style:      pick("style-wav", "style_wav"),
		SpeakerWav: pick("speaker-wav", "speaker_wav"),
	}
}

// handleTTS synthesizes text with the native API.
//
// @Summary     Synthesize speech
// @Description Synthesizes the text and returns a WAV file. Every field may be sent as a
// @Description header (text, speaker-id, language-id, style-wav, speaker-wav) or as a query or
// @Description form parameter (text, speaker_id, language_id, style_wav, speaker_wav).
// @Description Headers take precedence.
// @Tags        native
// @Produce     audio/wav
// @Param       text         query  string  true   "Text to synthesize"
// @Param       speaker_id   query  string  false  "Speaker id for multi-speaker models"
// @Param       language_id  query  string  false  "Language id for multi-lingual models"
// @Param       style_wav    query  string  false  "Server-side .wav path or JSON style-token weights"
// @Param       speaker_wav  query  string  false  "Server-side reference file or directory for voice cloning"
// @Success     200  {file}    binary  "WAV audio"
// @Failure     400  {string}  string  "Empty text or invalid voice fields"
// @Failure     500  {string}  string  "Synthesis failed"
// @Router      /api/tts [get]
// @Router      /api/tts [post]
func (t *Transport) handleTTS(w http.ResponseWriter, r *http.Request) {
	fields := nativeFields(r)

	encoded, err := t.dispatcher.Speak(r.Context(), fields, audio.FormatWAV)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAudio(w, encoded.MIMEType, encoded.Data)
}
