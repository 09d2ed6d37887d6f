// Package wire defines the JSON frames exchanged with the streaming
// conversation endpoint over the websocket channel.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/monumento/studio/pkg/core/audio"
)

// ClientMessage is the envelope for every frame sent upstream.
// Exactly one field is set per frame.
type ClientMessage struct {
	Setup         *Setup         `json:"setup,omitempty"`
	RealtimeInput *RealtimeInput `json:"realtime_input,omitempty"`
}

// Setup opens a conversation and pins its model, persona, and audio
// transcription behavior. It must be the first frame on the channel.
type Setup struct {
	Model            string            `json:"model"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`
	SystemInstruction *Content         `json:"system_instruction,omitempty"`
	// Requesting both transcriptions makes the endpoint narrate the
	// guest's speech and its own replies as text frames.
	InputAudioTranscription  *struct{} `json:"input_audio_transcription,omitempty"`
	OutputAudioTranscription *struct{} `json:"output_audio_transcription,omitempty"`
}

// GenerationConfig selects output modalities and the synthesized voice.
type GenerationConfig struct {
	ResponseModalities []string      `json:"response_modalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speech_config,omitempty"`
}

// SpeechConfig names the prebuilt voice used for synthesis.
type SpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voice_name"`
		} `json:"prebuilt_voice_config"`
	} `json:"voice_config"`
}

// NewSpeechConfig builds a SpeechConfig for the named voice.
func NewSpeechConfig(voice string) *SpeechConfig {
	sc := &SpeechConfig{}
	sc.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voice
	return sc
}

// RealtimeInput carries media captured from the guest: PCM audio
// windows and periodic camera frames.
type RealtimeInput struct {
	MediaChunks []audio.Blob `json:"media_chunks,omitempty"`
}

// Content is a sequence of text and inline-media parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one unit of content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *audio.Blob `json:"inline_data,omitempty"`
}

// TextContent wraps plain text in a single-part Content.
func TextContent(text string) *Content {
	return &Content{Parts: []Part{{Text: text}}}
}

// ServerMessage is the envelope for every frame received downstream.
type ServerMessage struct {
	SetupComplete *struct{}      `json:"setup_complete,omitempty"`
	ServerContent *ServerContent `json:"server_content,omitempty"`
}

// ServerContent carries one turn fragment: synthesized audio parts,
// incremental transcriptions, and turn control flags. The input and
// output transcriptions are mutually exclusive within one frame.
type ServerContent struct {
	ModelTurn           *Content       `json:"model_turn,omitempty"`
	InputTranscription  *Transcription `json:"input_transcription,omitempty"`
	OutputTranscription *Transcription `json:"output_transcription,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	TurnComplete        bool           `json:"turn_complete,omitempty"`
}

// Transcription is an incremental text fragment.
type Transcription struct {
	Text string `json:"text"`
}

// DecodeError reports an unintelligible server frame.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: %s: %v", e.Reason, e.Err)
	}
	return "wire: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeClientMessage marshals a frame for the channel.
func EncodeClientMessage(m *ClientMessage) ([]byte, error) {
	if m.Setup == nil && m.RealtimeInput == nil {
		return nil, fmt.Errorf("wire: empty client message")
	}
	return json.Marshal(m)
}

// DecodeServerMessage parses one downstream frame. Frames that are not
// valid JSON or carry none of the known fields fail with a DecodeError;
// the caller should skip the frame and keep the session alive.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty frame"}
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &DecodeError{Reason: "malformed frame", Err: err}
	}
	if msg.SetupComplete == nil && msg.ServerContent == nil {
		return nil, &DecodeError{Reason: "frame carries no known fields"}
	}
	if sc := msg.ServerContent; sc != nil {
		if sc.InputTranscription != nil && sc.OutputTranscription != nil {
			return nil, &DecodeError{Reason: "frame mixes input and output transcription"}
		}
	}
	return &msg, nil
}

// AudioParts extracts the inline audio payloads from a content turn,
// in order.
func (c *Content) AudioParts() []audio.Blob {
	var blobs []audio.Blob
	for _, p := range c.Parts {
		if p.InlineData != nil {
			blobs = append(blobs, *p.InlineData)
		}
	}
	return blobs
}

// Text concatenates the text parts of a content turn.
func (c *Content) Text() string {
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}
