// Package dispatch runs a speech request through the pipeline shared by every
// API surface: resolve voice fields, synthesize behind the gate, encode.
//
// Adapters only translate HTTP into Fields and a Format and write back the
// encoded audio; none of them touches the engine or a codec directly.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/tts"
	"github.com/nadzzz/voicegate/internal/voice"
)

// Synthesizer is the exclusive-access entry point to the engine.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error)
}

// Dispatcher is the central request pipeline.
type Dispatcher struct {
	resolver    *voice.Resolver
	synthesizer Synthesizer
	encoder     *audio.Encoder
}

// New creates a Dispatcher.
func New(resolver *voice.Resolver, synthesizer Synthesizer, encoder *audio.Encoder) *Dispatcher {
	return &Dispatcher{
		resolver:    resolver,
		synthesizer: synthesizer,
		encoder:     encoder,
	}
}

// Resolver returns the voice resolver shared with the adapters.
func (d *Dispatcher) Resolver() *voice.Resolver { return d.resolver }

// Speak processes a single request through the full pipeline. Errors keep
// the type of the stage that produced them for errors.Is/As.
func (d *Dispatcher) Speak(ctx context.Context, fields voice.Fields, format audio.Format) (*audio.Encoded, error) {
	start := time.Now()

	// Step 1: Normalize voice fields.
	req, err := d.resolver.Resolve(fields)
	if err != nil {
		return nil, err
	}

	// Step 2: Synthesize (serialized).
	res, err := d.synthesizer.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	// Step 3: Encode into the requested format.
	encoded, err := d.encoder.Encode(ctx, res, format)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	slog.Info("speech ready",
		"format", encoded.Format,
		"size", humanize.Bytes(uint64(len(encoded.Data))),
		"duration", time.Since(start))
	return encoded, nil
}
