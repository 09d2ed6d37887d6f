package types

import (
	"strings"
	"time"
)

// Message is one merged transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// RelativeOffsetMs is measured from the start of the recording.
	// Messages are ordered by it, non-decreasing.
	RelativeOffsetMs int64 `json:"relativeOffsetMs"`
	DurationMs       int64 `json:"durationMs,omitempty"`
	// AudioRef points at stored narration audio for host messages, if any.
	AudioRef string `json:"audioRef,omitempty"`
}

// Session is one recorded episode.
type Session struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Vibe      Vibe            `json:"vibe"`
	Mode      InterviewMode   `json:"mode"`
	Duration  SessionDuration `json:"duration"`
	CreatedAt time.Time       `json:"createdAt"`
	EndedAt   time.Time       `json:"endedAt,omitzero"`
	VideoRef  string          `json:"videoRef,omitempty"`
	Messages  []Message       `json:"messages,omitempty"`
	Metadata  SessionMetadata `json:"metadata"`
}

// SummaryTitle derives a short list title from the first guest message:
// its first ten words, with an ellipsis when truncated.
func (s *Session) SummaryTitle() string {
	for _, m := range s.Messages {
		if m.Role != RoleGuest || strings.TrimSpace(m.Text) == "" {
			continue
		}
		words := strings.Fields(m.Text)
		if len(words) <= 10 {
			return m.Text
		}
		return strings.Join(words[:10], " ") + "..."
	}
	if s.Title != "" {
		return s.Title
	}
	return "Untitled Session"
}
