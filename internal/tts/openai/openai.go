// Package openai implements tts.Engine on top of a hosted speech API that
// speaks the OpenAI /v1/audio/speech protocol.
//
// Audio is requested as raw PCM (24 kHz, signed 16-bit little-endian, mono)
// so the gateway can re-encode it like any locally synthesized waveform.
package openai

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/config"
	"github.com/nadzzz/voicegate/internal/tts"
)

// pcmSampleRate is the fixed rate of the "pcm" response format.
const pcmSampleRate = 24000

// maxResponseBytes caps a single speech response (~10 minutes of PCM).
const maxResponseBytes = 32 << 20

var defaultVoices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"onyx", "nova", "sage", "shimmer", "verse",
}

// Engine synthesizes speech through the hosted speech API.
type Engine struct {
	client       *goopenai.Client
	model        goopenai.SpeechModel
	defaultVoice string
	caps         tts.Capabilities
}

// New creates an Engine from config.
func New(cfg config.OpenAIConfig) *Engine {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = string(goopenai.TTSModel1)
	}

	caps := tts.NewCapabilities(true, false, false, cfg.Voices, nil)
	if len(caps.Speakers) == 0 {
		caps = tts.NewCapabilities(true, false, false, defaultVoices, nil)
	}

	defaultVoice := string(goopenai.VoiceAlloy)
	if !caps.HasSpeaker(defaultVoice) {
		defaultVoice = caps.Speakers[0]
	}

	return &Engine{
		client:       goopenai.NewClientWithConfig(clientCfg),
		model:        goopenai.SpeechModel(model),
		defaultVoice: defaultVoice,
		caps:         caps,
	}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "openai" }

// Capabilities reports the configured voices as named speakers.
func (e *Engine) Capabilities() tts.Capabilities { return e.caps }

// Synthesize requests PCM audio for req and converts it to float samples.
func (e *Engine) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	voice := req.SpeakerID
	if voice == "" {
		voice = e.defaultVoice
	}

	speechReq := goopenai.CreateSpeechRequest{
		Model:          e.model,
		Input:          req.Text,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
		Speed:          req.Speed,
	}

	slog.Debug("openai speech request", "model", e.model, "voice", voice, "speed", req.Speed, "text_length", len(req.Text))

	resp, err := e.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(io.LimitReader(resp, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}
	if len(pcm) < 2 {
		return nil, fmt.Errorf("speech response contained no audio")
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = float32(v) / math.MaxInt16
	}
	return &tts.Result{Samples: samples, SampleRate: pcmSampleRate}, nil
}

// SerializeWAV encodes res as 16-bit PCM WAV.
func (e *Engine) SerializeWAV(res *tts.Result) ([]byte, error) {
	return audio.EncodeWAV(res.Samples, res.SampleRate), nil
}

// Close is a no-op.
func (e *Engine) Close() error { return nil }
