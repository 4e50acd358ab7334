// Package ttstest provides an instrumented tts.Engine for tests.
package ttstest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/tts"
)

// Engine is a mock engine that records calls and tracks how many engine
// methods are running at once.
type Engine struct {
	Caps       tts.Capabilities
	Samples    []float32
	SampleRate int

	// Delay is slept inside Synthesize to simulate inference time.
	Delay time.Duration

	// Err, when set, is returned by Synthesize.
	Err error

	// SerializeDelay is slept inside SerializeWAV.
	SerializeDelay time.Duration

	active    atomic.Int32
	maxActive atomic.Int32

	mu    sync.Mutex
	calls []tts.Request
}

// New returns a single-speaker engine producing a short fixed waveform.
func New() *Engine {
	return &Engine{
		Samples:    []float32{0, 0.25, 0.5, -0.5, -1},
		SampleRate: 22050,
	}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "mock" }

// Capabilities returns Caps.
func (e *Engine) Capabilities() tts.Capabilities { return e.Caps }

// Synthesize records req, sleeps for Delay and returns a copy of Samples.
func (e *Engine) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	defer e.enter()()

	e.mu.Lock()
	e.calls = append(e.calls, *req)
	e.mu.Unlock()

	if e.Delay > 0 {
		time.Sleep(e.Delay)
	}
	if e.Err != nil {
		return nil, e.Err
	}

	samples := make([]float32, len(e.Samples))
	copy(samples, e.Samples)
	return &tts.Result{Samples: samples, SampleRate: e.SampleRate}, nil
}

// SerializeWAV sleeps for SerializeDelay and encodes res as 16-bit PCM WAV.
func (e *Engine) SerializeWAV(res *tts.Result) ([]byte, error) {
	defer e.enter()()
	if e.SerializeDelay > 0 {
		time.Sleep(e.SerializeDelay)
	}
	return audio.EncodeWAV(res.Samples, res.SampleRate), nil
}

// enter marks an engine method as running and returns the matching exit.
func (e *Engine) enter() func() {
	n := e.active.Add(1)
	for {
		peak := e.maxActive.Load()
		if n <= peak || e.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}
	return func() { e.active.Add(-1) }
}

// Close is a no-op.
func (e *Engine) Close() error { return nil }

// MaxConcurrent returns the highest number of overlapping engine calls seen.
func (e *Engine) MaxConcurrent() int { return int(e.maxActive.Load()) }

// Calls returns a copy of every request received so far.
func (e *Engine) Calls() []tts.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]tts.Request, len(e.calls))
	copy(out, e.calls)
	return out
}
