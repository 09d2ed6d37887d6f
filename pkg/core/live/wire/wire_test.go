package wire

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/monumento/studio/pkg/core/audio"
)

func TestEncodeClientMessageSetup(t *testing.T) {
	msg := &ClientMessage{
		Setup: &Setup{
			Model:             "models/demo-live",
			SystemInstruction: TextContent("You are the host."),
			GenerationConfig: &GenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig:       NewSpeechConfig("Kore"),
			},
			InputAudioTranscription:  &struct{}{},
			OutputAudioTranscription: &struct{}{},
		},
	}
	data, err := EncodeClientMessage(msg)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"setup"`, `"models/demo-live"`, `"voice_name":"Kore"`, `"input_audio_transcription"`, `"output_audio_transcription"`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded setup missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, "realtime_input") {
		t.Error("setup frame should not carry realtime_input")
	}
}

func TestEncodeClientMessageRealtimeInput(t *testing.T) {
	blob := audio.Encode(make([]float32, 8))
	data, err := EncodeClientMessage(&ClientMessage{
		RealtimeInput: &RealtimeInput{MediaChunks: []audio.Blob{blob}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"mime_type":"audio/pcm;rate=16000"`) {
		t.Errorf("media chunk missing mime type: %s", data)
	}
}

func TestEncodeClientMessageEmpty(t *testing.T) {
	if _, err := EncodeClientMessage(&ClientMessage{}); err == nil {
		t.Error("expected error for empty client message")
	}
}

func TestDecodeServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr bool
		check   func(t *testing.T, m *ServerMessage)
	}{
		{
			name:  "setup complete",
			frame: `{"setup_complete":{}}`,
			check: func(t *testing.T, m *ServerMessage) {
				if m.SetupComplete == nil {
					t.Error("SetupComplete not set")
				}
			},
		},
		{
			name:  "output transcription",
			frame: `{"server_content":{"output_transcription":{"text":"Hello there"}}}`,
			check: func(t *testing.T, m *ServerMessage) {
				if got := m.ServerContent.OutputTranscription.Text; got != "Hello there" {
					t.Errorf("text = %q", got)
				}
			},
		},
		{
			name:  "inline audio",
			frame: `{"server_content":{"model_turn":{"parts":[{"inline_data":{"data":"AAAA","mime_type":"audio/pcm;rate=24000"}}]}}}`,
			check: func(t *testing.T, m *ServerMessage) {
				parts := m.ServerContent.ModelTurn.AudioParts()
				if len(parts) != 1 || parts[0].MimeType != "audio/pcm;rate=24000" {
					t.Errorf("AudioParts = %v", parts)
				}
			},
		},
		{
			name:  "interrupted flag",
			frame: `{"server_content":{"interrupted":true}}`,
			check: func(t *testing.T, m *ServerMessage) {
				if !m.ServerContent.Interrupted {
					t.Error("Interrupted not set")
				}
			},
		},
		{name: "empty frame", frame: ``, wantErr: true},
		{name: "malformed json", frame: `{"server_content"`, wantErr: true},
		{name: "unknown shape", frame: `{"something_else":1}`, wantErr: true},
		{
			name:    "mixed transcriptions",
			frame:   `{"server_content":{"input_transcription":{"text":"a"},"output_transcription":{"text":"b"}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeServerMessage([]byte(tt.frame))
			if tt.wantErr {
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Errorf("err = %v, want DecodeError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, m)
		})
	}
}

func TestContentText(t *testing.T) {
	c := &Content{Parts: []Part{{Text: "Hello "}, {Text: "world"}}}
	if got := c.Text(); got != "Hello world" {
		t.Errorf("Text = %q", got)
	}
}

func TestRealtimeInputRoundTrip(t *testing.T) {
	in := &ClientMessage{RealtimeInput: &RealtimeInput{
		MediaChunks: []audio.Blob{{Data: "AAAA", MimeType: "image/jpeg"}},
	}}
	data, err := EncodeClientMessage(in)
	if err != nil {
		t.Fatal(err)
	}
	var out ClientMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.RealtimeInput == nil || out.RealtimeInput.MediaChunks[0].MimeType != "image/jpeg" {
		t.Errorf("round trip lost media chunk: %+v", out)
	}
}
