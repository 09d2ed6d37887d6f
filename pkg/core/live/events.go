package live

// Event is the interface for all live session events.
type Event interface {
	// EventType returns the event type string for serialization.
	EventType() string
}

// SessionOpenedEvent is emitted once the channel handshake completes.
type SessionOpenedEvent struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

func (e *SessionOpenedEvent) EventType() string { return "session.opened" }

// SessionClosedEvent is emitted when the session ends.
type SessionClosedEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (e *SessionClosedEvent) EventType() string { return "session.closed" }

// StateChangedEvent is emitted when the session state changes.
type StateChangedEvent struct {
	From SessionState `json:"from"`
	To   SessionState `json:"to"`
}

func (e *StateChangedEvent) EventType() string { return "state.changed" }

// TranscriptEvent is emitted as transcription fragments arrive.
// IsGuest is true for the guest's recognized speech and false for the
// host's narrated output.
type TranscriptEvent struct {
	Text    string `json:"text"`
	IsGuest bool   `json:"is_guest"`
}

func (e *TranscriptEvent) EventType() string { return "transcript.delta" }

// HostAudioEvent is emitted when a synthesized audio chunk has been
// decoded and scheduled. Data is raw 16-bit PCM at the output rate.
type HostAudioEvent struct {
	Data       []byte `json:"-"`
	DurationMs int    `json:"duration_ms"`
}

func (e *HostAudioEvent) EventType() string { return "audio.scheduled" }

// InterruptedEvent is emitted when the endpoint cancels its own reply
// mid-stream. All scheduled playback has already been flushed.
type InterruptedEvent struct{}

func (e *InterruptedEvent) EventType() string { return "response.interrupted" }

// TurnCompleteEvent is emitted when the host finishes a reply.
type TurnCompleteEvent struct{}

func (e *TurnCompleteEvent) EventType() string { return "turn.complete" }

// ErrorEvent is emitted when an error occurs.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorEvent) EventType() string { return "error" }

// DebugEvent is emitted for debugging information.
type DebugEvent struct {
	Category string `json:"category"` // AUDIO, CHANNEL, PLAYBACK, SESSION
	Message  string `json:"message"`
}

func (e *DebugEvent) EventType() string { return "debug" }
