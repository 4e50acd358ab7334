// Package ffmpeg implements audio.Transcoder by running the ffmpeg binary.
//
// Raw float32 samples are piped to ffmpeg on stdin. Output goes to a temp file
// rather than stdout because the MP4 muxer needs a seekable target.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"time"
)

// Config holds ffmpeg settings.
type Config struct {
	// Path is the ffmpeg binary. Defaults to "ffmpeg" on $PATH.
	Path string

	// TempDir holds intermediate output files. Defaults to os.TempDir().
	TempDir string

	// Timeout bounds a single transcode. Zero means 30s.
	Timeout time.Duration
}

// Transcoder runs one ffmpeg process per call.
type Transcoder struct {
	path    string
	tempDir string
	timeout time.Duration
}

// New creates a Transcoder with defaults applied.
func New(cfg Config) *Transcoder {
	if cfg.Path == "" {
		cfg.Path = "ffmpeg"
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Transcoder{path: cfg.Path, tempDir: cfg.TempDir, timeout: cfg.Timeout}
}

// Available reports whether the ffmpeg binary can be found.
func (t *Transcoder) Available() bool {
	_, err := exec.LookPath(t.path)
	return err == nil
}

// Transcode encodes mono float samples into the given container and codec.
func (t *Transcoder) Transcode(ctx context.Context, samples []float32, sampleRate int, container, codec string) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty waveform")
	}

	out, err := os.CreateTemp(t.tempDir, "voicegate-*."+extension(container))
	if err != nil {
		return nil, fmt.Errorf("creating temp output: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.path, Args(sampleRate, container, codec, outPath)...)
	cmd.Stdin = bytes.NewReader(float32LE(samples))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, lastLine(stderr.Bytes()))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading ffmpeg output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output, stderr: %s", lastLine(stderr.Bytes()))
	}

	slog.Debug("ffmpeg transcode complete",
		"container", container, "codec", codec,
		"samples", len(samples), "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// Args builds the ffmpeg command line for a transcode into outPath.
func Args(sampleRate int, container, codec, outPath string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "f32le", "-ar", fmt.Sprint(sampleRate), "-ac", "1", "-i", "pipe:0",
		"-c:a", codec,
		"-f", container,
		"-y", outPath,
	}
}

func extension(container string) string {
	switch container {
	case "mp4":
		return "m4a"
	case "":
		return "bin"
	default:
		return container
	}
}

func float32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func lastLine(b []byte) string {
	b = bytes.TrimSpace(b)
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	return string(b)
}
