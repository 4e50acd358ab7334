package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/voice"
)

// maxFormBytes bounds a /process request body.
const maxFormBytes = 1 << 20

// modelLocale returns the locale and voice name encoded in a model name of the
// form <type>/<language>/<dataset>/<model>. Missing segments fall back to
// "en" and "default".
func modelLocale(modelName string) (locale, name string) {
	locale, name = "en", "default"
	parts := strings.Split(modelName, "/")
	if len(parts) > 1 && parts[1] != "" {
		locale = parts[1]
	}
	if last := parts[len(parts)-1]; len(parts) > 1 && last != "" {
		name = last
	}
	return locale, name
}

// handleLocales lists the locale of the active model.
//
// @Summary     MaryTTS locales
// @Tags        marytts
// @Produce     plain
// @Success     200  {string}  string  "One locale per line"
// @Router      /locales [get]
func (t *Transport) handleLocales(w http.ResponseWriter, r *http.Request) {
	locale, _ := modelLocale(t.opts.ModelName)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, locale)
}

// handleVoices lists "<voice> <locale> u" lines, one per speaker for
// multi-speaker engines, otherwise a single line for the model.
//
// @Summary     MaryTTS voices
// @Tags        marytts
// @Produce     plain
// @Success     200  {string}  string  "Lines of the form: <voice> <locale> u"
// @Router      /voices [get]
func (t *Transport) handleVoices(w http.ResponseWriter, r *http.Request) {
	locale, name := modelLocale(t.opts.ModelName)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if t.caps.MultiSpeaker && len(t.caps.Speakers) > 0 {
		for _, speaker := range t.caps.Speakers {
			_, _ = fmt.Fprintf(w, "%s %s u\n", speaker, locale)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s u\n", name, locale)
}

// handleProcess synthesizes INPUT_TEXT with the MaryTTS request shape. GET
// reads the query string; POST reads an url-encoded body.
//
// @Summary     MaryTTS synthesis
// @Description LOCALE is accepted and ignored; the language comes from the server defaults.
// @Tags        marytts
// @Accept      x-www-form-urlencoded
// @Produce     audio/wav
// @Param       INPUT_TEXT  query  string  true   "Text to synthesize"
// @Param       VOICE       query  string  false  "Voice name as listed by /voices"
// @Param       LOCALE      query  string  false  "Ignored"
// @Success     200  {file}    binary  "WAV audio"
// @Failure     400  {string}  string  "Empty text or unknown voice"
// @Failure     500  {string}  string  "Synthesis failed"
// @Router      /process [get]
// @Router      /process [post]
func (t *Transport) handleProcess(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
		if err != nil {
			http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if values, err = url.ParseQuery(string(body)); err != nil {
			http.Error(w, "invalid form body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	if locale := values.Get("LOCALE"); locale != "" {
		slog.Debug("ignoring MaryTTS locale", "locale", locale)
	}

	fields := voice.Fields{
		Text:      values.Get("INPUT_TEXT"),
		SpeakerID: values.Get("VOICE"),
	}

	encoded, err := t.dispatcher.Speak(r.Context(), fields, audio.FormatWAV)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAudio(w, encoded.MIMEType, encoded.Data)
}
