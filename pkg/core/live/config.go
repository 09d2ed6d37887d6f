package live

import "github.com/monumento/studio/pkg/core/audio"

// SessionState represents the current state of the live session.
type SessionState int

const (
	// StateIdle is the initial state before the session is started.
	StateIdle SessionState = iota
	// StateConnecting is while the channel handshake is in flight.
	StateConnecting
	// StateActive is when media is flowing in both directions.
	StateActive
	// StateClosing is while teardown is in progress.
	StateClosing
	// StateErrored is when the channel failed mid-session.
	StateErrored
	// StateClosed is when the session has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateErrored:
		return "ERRORED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// SessionConfig holds all configuration for a live session.
type SessionConfig struct {
	// Model is the streaming conversation model to connect to.
	Model string `json:"model"`

	// SystemInstruction is the persona prompt for the host.
	SystemInstruction string `json:"system_instruction,omitempty"`

	// Voice is the prebuilt synthesis voice name.
	Voice string `json:"voice,omitempty"`

	// Input is the microphone format sent upstream. Default: 16 kHz mono.
	Input audio.Config `json:"input"`

	// Output is the synthesized format received downstream. Default: 24 kHz mono.
	Output audio.Config `json:"output"`

	// WindowSize is the number of samples per outbound audio frame.
	// Default: 2048.
	WindowSize int `json:"window_size"`

	// QueueDepth bounds the outbound media queue. Frames beyond it are
	// dropped rather than blocking the capture callback. Default: 100.
	QueueDepth int `json:"queue_depth"`
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:      "models/demo-live",
		Voice:      "Kore",
		Input:      audio.InputConfig(),
		Output:     audio.OutputConfig(),
		WindowSize: audio.ProcessingWindow,
		QueueDepth: 100,
	}
}

func (c *SessionConfig) applyDefaults() {
	d := DefaultSessionConfig()
	if c.Input.SampleRate == 0 {
		c.Input = d.Input
	}
	if c.Output.SampleRate == 0 {
		c.Output = d.Output
	}
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = d.QueueDepth
	}
}
