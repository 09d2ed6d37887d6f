package types

import "time"

// SpeakerEvent records one camera switch decision.
type SpeakerEvent struct {
	Timestamp time.Time `json:"timestamp"`
	// RelativeOffsetMs is measured from the start of the recording.
	RelativeOffsetMs int64   `json:"relativeOffsetMs"`
	Speaker          Speaker `json:"speaker"`
	Confidence       float64 `json:"confidence"`
	VolumeLevel      float64 `json:"volumeLevel"`
}

// LayoutChangeEvent records one layout transition.
type LayoutChangeEvent struct {
	Timestamp        time.Time  `json:"timestamp"`
	RelativeOffsetMs int64      `json:"relativeOffsetMs"`
	FromLayout       LayoutMode `json:"fromLayout"`
	ToLayout         LayoutMode `json:"toLayout"`
	// Reason is a short tag such as "manual", "content_shared_image",
	// or "content_closed".
	Reason string `json:"reason"`
}

// SessionMetadata is the replay sidecar persisted next to the video.
// Both event lists are ordered by RelativeOffsetMs.
type SessionMetadata struct {
	CameraEvents []SpeakerEvent      `json:"cameraEvents,omitempty"`
	LayoutEvents []LayoutChangeEvent `json:"layoutEvents,omitempty"`
	DurationMs   int64               `json:"durationMs,omitempty"`
}

// Merge folds other into m, preferring other's scalar fields when set.
func (m *SessionMetadata) Merge(other SessionMetadata) {
	if len(other.CameraEvents) > 0 {
		m.CameraEvents = other.CameraEvents
	}
	if len(other.LayoutEvents) > 0 {
		m.LayoutEvents = other.LayoutEvents
	}
	if other.DurationMs > 0 {
		m.DurationMs = other.DurationMs
	}
}
