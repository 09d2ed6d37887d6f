// Package audio converts between the float sample domain used for
// capture and playback and the 16-bit little-endian PCM frames carried
// on the wire, and provides the small measurement and buffering
// helpers the rest of the studio builds on.
package audio

import (
	"encoding/base64"
	"fmt"
	"math"
)

// InputSampleRate is the rate of microphone audio sent upstream.
const InputSampleRate = 16000

// OutputSampleRate is the rate of synthesized audio received downstream.
const OutputSampleRate = 24000

// InputMimeType tags outbound PCM frames.
const InputMimeType = "audio/pcm;rate=16000"

// Blob is a transport envelope for one PCM frame.
type Blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// DecodeError reports a malformed or undersized audio payload. Callers
// should drop the offending chunk and continue, not tear down the
// session.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("audio: decode: %s: %v", e.Reason, e.Err)
	}
	return "audio: decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode quantizes float samples in [-1, 1] to 16-bit little-endian
// PCM, clamping out-of-range values, and wraps the result in a
// base64 transport envelope at the input sample rate.
func Encode(samples []float32) Blob {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := quantize(s)
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}
	return Blob{
		Data:     base64.StdEncoding.EncodeToString(pcm),
		MimeType: InputMimeType,
	}
}

// quantize rounds a float sample to the nearest 16-bit level, clamping
// out-of-range input. Rounding keeps the decode error within one
// quantization step even at full scale.
func quantize(s float32) int16 {
	v := math.Round(float64(s) * 32768)
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// Decode unwraps a transport envelope back to raw PCM bytes. No
// resampling is performed.
func Decode(b Blob) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid base64 payload", Err: err}
	}
	return raw, nil
}

// DecodeToBuffer reinterprets raw bytes as interleaved 16-bit
// little-endian samples and rescales them to float [-1, 1], producing
// a buffer playable by the output graph.
func DecodeToBuffer(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid format %d Hz / %d ch", sampleRate, channels)}
	}
	if len(raw) < 2 {
		return nil, &DecodeError{Reason: fmt.Sprintf("payload too short (%d bytes)", len(raw))}
	}
	if len(raw)%(2*channels) != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("payload length %d not aligned to %d-channel frames", len(raw), channels)}
	}
	data := make([]float32, len(raw)/2)
	for i := range data {
		s := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		data[i] = float32(s) / 32768.0
	}
	return &Buffer{Data: data, SampleRate: sampleRate, Channels: channels}, nil
}
