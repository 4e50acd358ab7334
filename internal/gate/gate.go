// Package gate serializes access to the speech-synthesis engine.
//
// The engine keeps internal inference state and must never run two syntheses
// at once. A Gate owns the single permit for its engine: at most one call is
// in flight process-wide, regardless of which API adapter issued it. Waiters
// block on the permit in acquisition order with no queue limit.
//
// TODO: unbounded blocking on a single permit caps throughput at one request
// per synthesis time; revisit with a bounded queue once more than one engine
// instance can be loaded.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nadzzz/voicegate/internal/tts"
)

// ErrEngineTimeout is returned when a configured deadline expires before the
// engine could be entered. It is never returned when no timeout is set.
var ErrEngineTimeout = errors.New("engine timeout")

// EngineError wraps a failure reported by the engine during synthesis.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return "engine error: " + e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

// Stats is a point-in-time view of gate activity.
type Stats struct {
	Busy      bool   `json:"busy"`
	Waiting   int64  `json:"waiting"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
}

// Option configures a Gate.
type Option func(*Gate)

// WithTimeout bounds how long a caller may wait for the permit. The deadline
// is checked between the wait and the engine call; a running synthesis is
// never interrupted. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) { g.timeout = d }
}

// Gate is the exclusive-access wrapper around a tts.Engine.
type Gate struct {
	engine  tts.Engine
	permit  *semaphore.Weighted
	timeout time.Duration

	busy      atomic.Bool
	waiting   atomic.Int64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// New creates a Gate that owns engine.
func New(engine tts.Engine, opts ...Option) *Gate {
	g := &Gate{
		engine: engine,
		permit: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Synthesize runs req on the engine once the permit is available.
//
// Client cancellation does not abort the wait or the engine call: a caller
// whose connection drops still completes and its response write fails.
func (g *Gate) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	jobID := uuid.NewString()
	engineCtx := context.WithoutCancel(ctx)

	waitCtx := engineCtx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(engineCtx, g.timeout)
		defer cancel()
	}

	waitStart := time.Now()
	g.waiting.Add(1)
	err := g.permit.Acquire(waitCtx, 1)
	g.waiting.Add(-1)
	if err != nil {
		g.failed.Add(1)
		return nil, fmt.Errorf("%w: waited %s for the engine", ErrEngineTimeout, time.Since(waitStart).Round(time.Millisecond))
	}
	defer g.permit.Release(1)

	// Acquire may succeed on an expired context.
	if waitCtx.Err() != nil {
		g.failed.Add(1)
		return nil, fmt.Errorf("%w: deadline passed before synthesis", ErrEngineTimeout)
	}

	g.busy.Store(true)
	defer g.busy.Store(false)

	slog.Info("synthesis started",
		"job_id", jobID,
		"engine", g.engine.Name(),
		"text", req.Text,
		"speaker_id", req.SpeakerID,
		"speaker_wav", req.SpeakerReference,
		"language_id", req.LanguageID,
		"waited", time.Since(waitStart))

	start := time.Now()
	res, err := g.engine.Synthesize(engineCtx, req)
	if err == nil && (res == nil || res.SampleRate <= 0) {
		err = errors.New("engine returned no audio")
	}
	if err != nil {
		g.failed.Add(1)
		slog.Error("synthesis failed", "job_id", jobID, "error", err)
		return nil, &EngineError{Err: err}
	}

	g.completed.Add(1)
	slog.Info("synthesis complete",
		"job_id", jobID,
		"samples", len(res.Samples),
		"sample_rate", res.SampleRate,
		"duration", time.Since(start))
	return res, nil
}

// SerializeWAV returns the engine's native WAV encoding of res. It holds the
// permit for the call, so it never overlaps a running synthesis. The wait is
// not bounded by the gate timeout.
func (g *Gate) SerializeWAV(res *tts.Result) ([]byte, error) {
	if err := g.permit.Acquire(context.Background(), 1); err != nil {
		return nil, err
	}
	defer g.permit.Release(1)
	return g.engine.SerializeWAV(res)
}

// Stats returns current gate activity counters.
func (g *Gate) Stats() Stats {
	return Stats{
		Busy:      g.busy.Load(),
		Waiting:   g.waiting.Load(),
		Completed: g.completed.Load(),
		Failed:    g.failed.Load(),
	}
}
