// Package http implements the HTTP transport for voicegate.
//
// Three API surfaces share one router and one synthesis pipeline:
//
//   - the native API at /api/tts,
//   - a MaryTTS-compatible layer at /locales, /voices and /process,
//   - an OpenAI-compatible speech API at /v1/audio/speech.
//
// Handlers only translate requests into voice.Fields and an audio.Format;
// resolution, serialized synthesis and encoding happen in the dispatcher.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/voicegate/docs" // registers the OpenAPI spec
	"github.com/nadzzz/voicegate/internal/dispatch"
	"github.com/nadzzz/voicegate/internal/tts"
)

// Options configures the HTTP transport.
type Options struct {
	Port int

	// ModelName is the active model, <type>/<language>/<dataset>/<model>.
	ModelName string

	// Backend names the engine backend, shown on the info pages.
	Backend string

	// ShowDetails enables the configuration table on /details.
	ShowDetails bool

	// Details is the settings table rendered on /details when ShowDetails
	// is set. It must not contain secrets.
	Details map[string]string

	// Compress gzips responses for clients that accept it.
	Compress bool
}

// Transport serves the speech APIs over HTTP.
type Transport struct {
	opts       Options
	dispatcher *dispatch.Dispatcher
	caps       tts.Capabilities
	server     *http.Server
}

// New creates a new HTTP transport.
func New(opts Options, dispatcher *dispatch.Dispatcher) *Transport {
	return &Transport{
		opts:       opts,
		dispatcher: dispatcher,
		caps:       dispatcher.Resolver().Capabilities(),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the router for every API surface.
func (t *Transport) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	// Info pages.
	r.Get("/", t.handleIndex)
	r.Get("/details", t.handleDetails)

	// Native API.
	r.Get("/api/tts", t.handleTTS)
	r.Post("/api/tts", t.handleTTS)

	// MaryTTS compatibility layer.
	r.Get("/locales", t.handleLocales)
	r.Get("/voices", t.handleVoices)
	r.Get("/process", t.handleProcess)
	r.Post("/process", t.handleProcess)

	// OpenAI-compatible speech API.
	r.Post("/v1/audio/speech", t.handleSpeech)

	// Swagger UI for the registered OpenAPI docs.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if t.opts.Compress {
		return gzhttp.GzipHandler(r)
	}
	return r
}

// Listen starts the HTTP server.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		_ = t.Close()
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server. Syntheses already running are
// given time to finish.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// writeAudio writes an encoded payload with its MIME type.
func writeAudio(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
