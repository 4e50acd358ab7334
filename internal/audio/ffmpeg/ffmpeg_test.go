package ffmpeg

import (
	"context"
	"encoding/binary"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestArgs(t *testing.T) {
	got := Args(22050, "ogg", "libopus", "/tmp/out.ogg")
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "f32le", "-ar", "22050", "-ac", "1", "-i", "pipe:0",
		"-c:a", "libopus",
		"-f", "ogg",
		"-y", "/tmp/out.ogg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() =\n%v\nwant\n%v", got, want)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"mp4":  "m4a",
		"ogg":  "ogg",
		"mp3":  "mp3",
		"flac": "flac",
		"":     "bin",
	}
	for container, want := range tests {
		if got := extension(container); got != want {
			t.Errorf("extension(%q) = %q, want %q", container, got, want)
		}
	}
}

func TestFloat32LE(t *testing.T) {
	samples := []float32{0, 0.5, -1}
	b := float32LE(samples)
	if len(b) != 12 {
		t.Fatalf("len = %d, want 12", len(b))
	}
	for i, s := range samples {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])); got != s {
			t.Errorf("sample %d = %v, want %v", i, got, s)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	tr := New(Config{})
	if tr.path != "ffmpeg" {
		t.Errorf("path = %q, want ffmpeg", tr.path)
	}
	if tr.timeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s", tr.timeout)
	}
	if tr.tempDir == "" {
		t.Error("tempDir should default to the system temp dir")
	}
}

func TestTranscodeRejectsBadInput(t *testing.T) {
	tr := New(Config{Path: "ffmpeg-does-not-exist"})

	if _, err := tr.Transcode(context.Background(), []float32{0}, 0, "mp3", "libmp3lame"); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := tr.Transcode(context.Background(), nil, 22050, "mp3", "libmp3lame"); err == nil {
		t.Error("expected error for empty waveform")
	}
}

func TestTranscodeMissingBinary(t *testing.T) {
	tr := New(Config{Path: "ffmpeg-does-not-exist", TempDir: t.TempDir()})
	if tr.Available() {
		t.Skip("unexpected binary on PATH")
	}
	_, err := tr.Transcode(context.Background(), []float32{0, 0.1}, 22050, "mp3", "libmp3lame")
	if err == nil || !strings.Contains(err.Error(), "ffmpeg failed") {
		t.Errorf("error = %v, want ffmpeg failed", err)
	}
}

func TestTranscodeFLAC(t *testing.T) {
	tr := New(Config{TempDir: t.TempDir()})
	if !tr.Available() {
		t.Skip("ffmpeg not installed")
	}

	samples := make([]float32, 2205)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) * 2 * math.Pi * 440 / 22050))
	}

	data, err := tr.Transcode(context.Background(), samples, 22050, "flac", "flac")
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Errorf("output does not start with the FLAC marker: % X", data[:min(4, len(data))])
	}
}
