// Package wyoming implements tts.Engine against a Piper server speaking the
// Wyoming protocol.
//
// The linuxserver/piper container exposes the protocol on TCP port 10200. A
// connection is opened per synthesis; the gate guarantees only one is open at
// a time.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package wyoming

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/voicegate/internal/audio"
	"github.com/nadzzz/voicegate/internal/config"
	"github.com/nadzzz/voicegate/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"fr": "fr_FR-siwis-medium",
	"es": "es_ES-mls_10246-low",
	"de": "de_DE-thorsten-medium",
	"it": "it_IT-riccardo-x_low",
	"pt": "pt_BR-faber-medium",
	"nl": "nl_NL-mls-medium",
	"pl": "pl_PL-darkman-medium",
	"ru": "ru_RU-ruslan-medium",
	"ja": "ja_JP-amitaro-medium",
	"ko": "ko_KR-kss-x_low",
	"zh": "zh_CN-huayan-medium",
}

const fallbackLanguage = "en"

// Upper bounds on a single event's JSON header and binary payload.
const (
	maxEventJSONBytes    = 1 << 20
	maxEventPayloadBytes = 32 << 20
)

// Engine implements tts.Engine using the Wyoming protocol.
type Engine struct {
	endpoint  string            // default host:port of the Piper Wyoming server
	endpoints map[string]string // language -> host:port for per-language Piper instances
	voices    map[string]string // language -> voice name
	caps      tts.Capabilities
}

// New creates a Wyoming engine from config.
//
// When cfg.Voices is empty every built-in language voice is offered;
// otherwise only the configured languages are. The engine is multi-lingual
// when more than one language is offered and multi-speaker when cfg.Speakers
// is non-empty.
func New(cfg config.WyomingConfig) *Engine {
	voices := maps.Clone(defaultVoices)
	if len(cfg.Voices) > 0 {
		voices = maps.Clone(cfg.Voices)
	}

	cleanEndpoint := func(ep string) string {
		ep = strings.TrimPrefix(ep, "tcp://")
		ep = strings.TrimPrefix(ep, "http://")
		return ep
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[lang] = cleanEndpoint(ep)
	}

	languages := slices.Collect(maps.Keys(voices))

	return &Engine{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
		caps: tts.NewCapabilities(
			len(cfg.Speakers) > 0,
			len(languages) > 1,
			false,
			cfg.Speakers,
			languages,
		),
	}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "wyoming" }

// Capabilities reports the configured voices and speakers.
func (e *Engine) Capabilities() tts.Capabilities { return e.caps }

// Synthesize sends text to the Piper server and collects the PCM response.
func (e *Engine) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	lang := req.LanguageID
	if lang == "" {
		lang = fallbackLanguage
	}
	voice := e.voices[lang]
	if voice == "" {
		voice = e.voices[fallbackLanguage]
	}

	endpoint := e.endpoints[lang]
	if endpoint == "" {
		endpoint = e.endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", lang)
	}

	if req.Speed != 1.0 || !req.Style.IsZero() {
		slog.Debug("wyoming ignores speed and style", "speed", req.Speed, "style_kind", req.Style.Kind)
	}
	slog.Debug("wyoming synthesize", "text_length", len(req.Text), "voice", voice, "language", lang, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(2 * time.Minute))
	}

	voiceData := map[string]any{"name": voice}
	if req.SpeakerID != "" {
		voiceData["speaker"] = req.SpeakerID
	}
	synthEvent := event{
		Type: "synthesize",
		Data: map[string]any{
			"text":  req.Text,
			"voice": voiceData,
		},
	}
	if err := writeEvent(conn, synthEvent, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	return readAudio(conn)
}

// readAudio consumes audio-start, audio-chunk events and audio-stop.
func readAudio(r io.Reader) (*tts.Result, error) {
	var (
		pcm        []byte
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}
			slog.Debug("piper audio-start", "rate", sampleRate, "channels", channels, "width", width)

		case "audio-chunk":
			pcm = append(pcm, payload...)

		case "audio-stop":
			if width != 2 || channels < 1 {
				return nil, fmt.Errorf("unsupported piper audio layout: width %d, channels %d", width, channels)
			}
			return &tts.Result{
				Samples:    pcm16ToMono(pcm, channels),
				SampleRate: sampleRate,
			}, nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// SerializeWAV encodes res as 16-bit PCM WAV.
func (e *Engine) SerializeWAV(res *tts.Result) ([]byte, error) {
	return audio.EncodeWAV(res.Samples, res.SampleRate), nil
}

// Close is a no-op; connections are per request.
func (e *Engine) Close() error { return nil }

// pcm16ToMono converts interleaved s16le frames to float samples, averaging channels.
func pcm16ToMono(pcm []byte, channels int) []float32 {
	frame := 2 * channels
	out := make([]float32, len(pcm)/frame)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(pcm[i*frame+c*2:]))
			sum += float32(v) / math.MaxInt16
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// --- Wyoming protocol helpers ---

type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// writeEvent sends a Wyoming event over the connection.
func writeEvent(w io.Writer, evt event, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	// Header: <json_length> <payload_length>\n
	header := fmt.Sprintf("%d %d\n", len(jsonBytes), len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if _, err := w.Write(jsonBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// readEvent reads a Wyoming event from the connection.
func readEvent(r io.Reader) (*event, []byte, error) {
	headerBuf := make([]byte, 0, 64)
	oneByte := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, oneByte); err != nil {
			return nil, nil, fmt.Errorf("reading header: %w", err)
		}
		if oneByte[0] == '\n' {
			break
		}
		headerBuf = append(headerBuf, oneByte[0])
	}

	parts := strings.SplitN(string(headerBuf), " ", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", string(headerBuf))
	}

	jsonLen, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	if jsonLen < 0 || jsonLen > maxEventJSONBytes {
		return nil, nil, fmt.Errorf("json_length %d out of range", jsonLen)
	}
	if payloadLen < 0 || payloadLen > maxEventPayloadBytes {
		return nil, nil, fmt.Errorf("payload_length %d out of range", payloadLen)
	}

	jsonBuf := make([]byte, jsonLen+1) // +1 for the \n
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt event
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}

	return &evt, payload, nil
}
