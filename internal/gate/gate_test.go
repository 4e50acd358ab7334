package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nadzzz/voicegate/internal/tts"
	"github.com/nadzzz/voicegate/internal/tts/ttstest"
)

func TestSynthesizeMutualExclusion(t *testing.T) {
	engine := ttstest.New()
	engine.Delay = 20 * time.Millisecond
	g := New(engine)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Synthesize(context.Background(), &tts.Request{Text: "hi", Speed: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Synthesize: %v", err)
		}
	}
	if got := engine.MaxConcurrent(); got != 1 {
		t.Errorf("max concurrent syntheses = %d, want 1", got)
	}
	if got := len(engine.Calls()); got != callers {
		t.Errorf("engine calls = %d, want %d", got, callers)
	}
	if st := g.Stats(); st.Completed != callers || st.Busy || st.Waiting != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestSynthesizeEngineError(t *testing.T) {
	boom := errors.New("cuda out of memory")
	engine := ttstest.New()
	engine.Err = boom
	g := New(engine)

	_, err := g.Synthesize(context.Background(), &tts.Request{Text: "hi"})
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want EngineError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("EngineError does not wrap the engine failure: %v", err)
	}
	if g.Stats().Failed != 1 {
		t.Errorf("failed = %d, want 1", g.Stats().Failed)
	}

	// A failure releases the permit.
	engine.Err = nil
	if _, err := g.Synthesize(context.Background(), &tts.Request{Text: "hi"}); err != nil {
		t.Errorf("Synthesize after failure: %v", err)
	}
}

func TestSynthesizeEmptyResult(t *testing.T) {
	engine := ttstest.New()
	engine.SampleRate = 0
	g := New(engine)

	_, err := g.Synthesize(context.Background(), &tts.Request{Text: "hi"})
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Errorf("error = %v, want EngineError for invalid sample rate", err)
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	engine := ttstest.New()
	engine.Delay = 200 * time.Millisecond
	g := New(engine, WithTimeout(50*time.Millisecond))

	first := make(chan error, 1)
	go func() {
		_, err := g.Synthesize(context.Background(), &tts.Request{Text: "first"})
		first <- err
	}()

	// Let the first call take the permit.
	deadline := time.Now().Add(time.Second)
	for !g.Stats().Busy && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, err := g.Synthesize(context.Background(), &tts.Request{Text: "second"})
	if !errors.Is(err, ErrEngineTimeout) {
		t.Errorf("second call error = %v, want ErrEngineTimeout", err)
	}

	// The running synthesis is not interrupted by the deadline.
	if err := <-first; err != nil {
		t.Errorf("first call: %v", err)
	}
	if got := len(engine.Calls()); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
}

func TestSynthesizeIgnoresCancellation(t *testing.T) {
	engine := ttstest.New()
	engine.Delay = 10 * time.Millisecond
	g := New(engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Synthesize(ctx, &tts.Request{Text: "hi"}); err != nil {
		t.Errorf("Synthesize with cancelled context: %v", err)
	}
}

func TestSerializeWAVHoldsPermit(t *testing.T) {
	engine := ttstest.New()
	engine.Delay = 100 * time.Millisecond
	engine.SerializeDelay = 10 * time.Millisecond
	g := New(engine)

	synthDone := make(chan struct{})
	go func() {
		defer close(synthDone)
		_, _ = g.Synthesize(context.Background(), &tts.Request{Text: "hi"})
	}()
	deadline := time.Now().Add(time.Second)
	for !g.Stats().Busy && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.SerializeWAV(&tts.Result{Samples: []float32{0}, SampleRate: 8000}); err != nil {
				t.Errorf("SerializeWAV: %v", err)
			}
		}()
	}
	wg.Wait()
	<-synthDone

	if got := engine.MaxConcurrent(); got != 1 {
		t.Errorf("max concurrent engine calls = %d, want 1", got)
	}
}
