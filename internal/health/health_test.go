package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadzzz/voicegate/internal/gate"
)

type fixedStats gate.Stats

func (f fixedStats) Stats() gate.Stats { return gate.Stats(f) }

func get(t *testing.T, h http.Handler, path string) (int, status) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var st status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("%s: decoding body: %v", path, err)
	}
	return rec.Code, st
}

func TestReadiness(t *testing.T) {
	s := New(0, fixedStats{Busy: true, Waiting: 2, Completed: 5})
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		code, st := get(t, h, path)
		if code != http.StatusServiceUnavailable || st.Status != "not_ready" {
			t.Errorf("%s before ready = %d %q", path, code, st.Status)
		}
	}

	s.SetReady(true)

	code, st := get(t, h, "/healthz")
	if code != http.StatusOK || st.Status != "ok" || st.Gate != nil {
		t.Errorf("/healthz = %d %+v", code, st)
	}

	code, st = get(t, h, "/readyz")
	if code != http.StatusOK || st.Gate == nil {
		t.Fatalf("/readyz = %d %+v", code, st)
	}
	if !st.Gate.Busy || st.Gate.Waiting != 2 || st.Gate.Completed != 5 {
		t.Errorf("gate stats = %+v", *st.Gate)
	}
}

func TestReadyzWithoutStats(t *testing.T) {
	s := New(0, nil)
	s.SetReady(true)
	code, st := get(t, s.Handler(), "/readyz")
	if code != http.StatusOK || st.Gate != nil {
		t.Errorf("/readyz = %d %+v", code, st)
	}
}
