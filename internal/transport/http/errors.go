package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/gate"
	"github.com/nadzzz/voicegate/internal/voice"
)

// writeError maps a pipeline error to a plain-text response. Client mistakes
// are 400s; engine and internal failures are 5xx with the detail logged only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unsupported *audio.UnsupportedFormatError
		engineErr   *gate.EngineError
	)

	switch {
	case errors.Is(err, voice.ErrEmptyInput),
		errors.Is(err, voice.ErrInvalidVoiceSpec),
		errors.Is(err, voice.ErrInvalidStyleSpec):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.As(err, &unsupported):
		http.Error(w, "Unsupported format: "+unsupported.Format, http.StatusBadRequest)

	case errors.Is(err, gate.ErrEngineTimeout):
		slog.Warn("synthesis timed out", "path", r.URL.Path, "error", err)
		http.Error(w, "synthesis timed out", http.StatusGatewayTimeout)

	case errors.As(err, &engineErr):
		slog.Error("engine failure", "path", r.URL.Path, "error", err)
		http.Error(w, "synthesis failed", http.StatusInternalServerError)

	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
