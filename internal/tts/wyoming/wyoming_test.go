package wyoming

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nadzzz/voicegate/internal/config"
	"github.com/nadzzz/voicegate/internal/tts"
)

// fakePiper accepts one connection, records the synthesize event and replies
// with the given events.
func fakePiper(t *testing.T, reply func(conn net.Conn)) (addr string, got <-chan *event) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { lis.Close() })

	ch := make(chan *event, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		evt, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			close(ch)
			return
		}
		ch <- evt
		reply(conn)
	}()

	return lis.Addr().String(), ch
}

func pcm16(values ...int16) []byte {
	b := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func TestSynthesize(t *testing.T) {
	addr, got := fakePiper(t, func(conn net.Conn) {
		_ = writeEvent(conn, event{Type: "audio-start", Data: map[string]any{"rate": 16000, "width": 2, "channels": 1}}, nil)
		_ = writeEvent(conn, event{Type: "audio-chunk"}, pcm16(0, 16383))
		_ = writeEvent(conn, event{Type: "audio-chunk"}, pcm16(-32767))
		_ = writeEvent(conn, event{Type: "audio-stop"}, nil)
	})

	e := New(config.WyomingConfig{
		Endpoint: "tcp://" + addr,
		Voices:   map[string]string{"en": "en_US-libritts-high"},
		Speakers: []string{"p1", "p2"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := e.Synthesize(ctx, &tts.Request{Text: "Hello", SpeakerID: "p2", Speed: 1})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if res.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", res.SampleRate)
	}
	if len(res.Samples) != 3 || res.Samples[0] != 0 || res.Samples[2] != -1 {
		t.Errorf("samples = %v", res.Samples)
	}

	evt := <-got
	if evt == nil || evt.Type != "synthesize" {
		t.Fatalf("server received %+v, want synthesize event", evt)
	}
	if evt.Data["text"] != "Hello" {
		t.Errorf("text = %v, want Hello", evt.Data["text"])
	}
	voice, _ := evt.Data["voice"].(map[string]any)
	if voice["name"] != "en_US-libritts-high" || voice["speaker"] != "p2" {
		t.Errorf("voice = %v", voice)
	}
}

func TestSynthesizePiperError(t *testing.T) {
	addr, _ := fakePiper(t, func(conn net.Conn) {
		_ = writeEvent(conn, event{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	e := New(config.WyomingConfig{Endpoint: addr})
	_, err := e.Synthesize(context.Background(), &tts.Request{Text: "Hello", Speed: 1})
	if err == nil || !strings.Contains(err.Error(), "voice not found") {
		t.Errorf("error = %v, want piper error", err)
	}
}

func TestSynthesizeNoEndpoint(t *testing.T) {
	e := New(config.WyomingConfig{})
	if _, err := e.Synthesize(context.Background(), &tts.Request{Text: "Hello"}); err == nil {
		t.Error("expected error without endpoint")
	}
}

func TestCapabilities(t *testing.T) {
	single := New(config.WyomingConfig{Voices: map[string]string{"en": "en_US-lessac-medium"}}).Capabilities()
	if single.MultiSpeaker || single.MultiLingual || single.VoiceCloning {
		t.Errorf("single-voice caps = %+v, want all false", single)
	}

	multi := New(config.WyomingConfig{Speakers: []string{"b", "a"}}).Capabilities()
	if !multi.MultiSpeaker || !multi.MultiLingual {
		t.Errorf("default caps = %+v, want multi-speaker and multi-lingual", multi)
	}
	if !multi.HasSpeaker("a") || !multi.HasLanguage("de") {
		t.Errorf("caps missing speaker a or language de: %+v", multi)
	}
}

func TestReadAudioStereo(t *testing.T) {
	var buf bytes.Buffer
	_ = writeEvent(&buf, event{Type: "audio-start", Data: map[string]any{"rate": 8000, "width": 2, "channels": 2}}, nil)
	_ = writeEvent(&buf, event{Type: "audio-chunk"}, pcm16(32767, -32767, 32767, 32767))
	_ = writeEvent(&buf, event{Type: "audio-stop"}, nil)

	res, err := readAudio(&buf)
	if err != nil {
		t.Fatalf("readAudio: %v", err)
	}
	if len(res.Samples) != 2 || res.Samples[0] != 0 || res.Samples[1] != 1 {
		t.Errorf("samples = %v, want [0 1]", res.Samples)
	}
}

func TestReadAudioRejectsWidth(t *testing.T) {
	var buf bytes.Buffer
	_ = writeEvent(&buf, event{Type: "audio-start", Data: map[string]any{"width": 4}}, nil)
	_ = writeEvent(&buf, event{Type: "audio-stop"}, nil)

	if _, err := readAudio(&buf); err == nil {
		t.Error("expected error for 32-bit samples")
	}
}

func TestReadEventRejectsBadLengths(t *testing.T) {
	headers := []string{
		"-1 0\n",
		"2 -5\n{}\n",
		"2 99999999999\n{}\n",
		"99999999999 0\n",
	}
	for _, h := range headers {
		if _, _, err := readEvent(strings.NewReader(h)); err == nil {
			t.Errorf("readEvent(%q): expected error", h)
		}
	}
}
