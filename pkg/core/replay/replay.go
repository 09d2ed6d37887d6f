// Package replay reconstructs the visual state of a finished session
// at an arbitrary playback time. Everything is a pure function of the
// finalized message timeline and the queried time; the Player wrapper
// only caches the last rendered values so hosts can skip redundant
// repaints.
package replay

import (
	"math"
	"regexp"
	"strings"

	"github.com/monumento/studio/pkg/core/types"
)

// defaultSegmentTailMs pads the last segment when the recording's
// duration is unknown.
const defaultSegmentTailMs = 5000

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Sentences splits text on terminal punctuation, keeping the
// punctuation with its sentence. Text without any terminal
// punctuation is one sentence.
func Sentences(text string) []string {
	found := sentencePattern.FindAllString(text, -1)
	if len(found) == 0 {
		return []string{text}
	}
	return found
}

// ActiveMessageIndex returns the index of the last message whose
// offset is at or before t, or -1 when messages is empty. A time
// before the first message still maps to the first message.
func ActiveMessageIndex(messages []types.Message, t int64) int {
	if len(messages) == 0 {
		return -1
	}
	idx := 0
	for i, m := range messages {
		if m.RelativeOffsetMs <= t {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// Caption is the karaoke-style caption state at one playback instant.
type Caption struct {
	MessageIndex  int
	Role          types.Role
	Sentence      string
	SentenceIndex int
	Words         []string
	WordIndex     int
}

// CaptionAt computes the caption for playback time t. The active
// message's display window runs to the next message's offset, or to
// durationMs for the last message; the window is divided evenly
// across sentences and each sentence's slot evenly across its words.
// No per-word timing exists, so the highlight is approximate.
func CaptionAt(messages []types.Message, t, durationMs int64) (Caption, bool) {
	idx := ActiveMessageIndex(messages, t)
	if idx < 0 {
		return Caption{}, false
	}
	msg := messages[idx]

	start := msg.RelativeOffsetMs
	end := durationMs
	if idx+1 < len(messages) {
		end = messages[idx+1].RelativeOffsetMs
	}
	window := float64(end - start)
	if window < 1 {
		window = 1
	}
	timeInMsg := float64(t - start)
	if timeInMsg < 0 {
		timeInMsg = 0
	}

	sentences := Sentences(msg.Text)
	sentenceIdx := clampIndex(int(timeInMsg/window*float64(len(sentences))), len(sentences))
	sentence := sentences[sentenceIdx]

	words := strings.Fields(sentence)
	slot := window / float64(len(sentences))
	timeInSentence := math.Mod(timeInMsg, slot)
	wordIdx := 0
	if len(words) > 0 {
		wordIdx = clampIndex(int(timeInSentence/slot*float64(len(words))), len(words))
	}

	return Caption{
		MessageIndex:  idx,
		Role:          msg.Role,
		Sentence:      sentence,
		SentenceIndex: sentenceIdx,
		Words:         words,
		WordIndex:     wordIdx,
	}, true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Segment is one scrubbable timeline unit: a host utterance paired
// with the guest reply that follows it, if any.
type Segment struct {
	Index      int
	HostIndex  int
	GuestIndex int // -1 when the host utterance went unanswered
	StartMs    int64
	EndMs      int64
	Summary    string
}

// BuildSegments pairs messages into segments. A segment ends where
// the next message after the pair begins; the last segment ends at
// durationMs, or a fixed tail past its start when the duration is
// unknown.
func BuildSegments(messages []types.Message, durationMs int64) []Segment {
	var segments []Segment
	for i := 0; i < len(messages); i++ {
		if messages[i].Role != types.RoleHost {
			continue
		}

		guestIdx := -1
		next := i + 1
		if next < len(messages) && messages[next].Role == types.RoleGuest {
			guestIdx = next
			next++
		}

		end := durationMs
		if next < len(messages) {
			end = messages[next].RelativeOffsetMs
		} else if end <= 0 {
			end = messages[i].RelativeOffsetMs + defaultSegmentTailMs
		}

		text := messages[i].Text
		if guestIdx >= 0 {
			text = strings.TrimSpace(text + " " + messages[guestIdx].Text)
		}

		segments = append(segments, Segment{
			Index:      len(segments),
			HostIndex:  i,
			GuestIndex: guestIdx,
			StartMs:    messages[i].RelativeOffsetMs,
			EndMs:      end,
			Summary:    summarize(text),
		})
		if guestIdx >= 0 {
			i = guestIdx
		}
	}
	return segments
}

func summarize(text string) string {
	words := strings.Fields(text)
	if len(words) <= 10 {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:10], " ") + "..."
}

// CurrentSegmentIndex returns the segment whose [start, end) window
// contains t. Times past the last window map to the last segment;
// an empty timeline yields -1.
func CurrentSegmentIndex(segments []Segment, t int64) int {
	for _, s := range segments {
		if t >= s.StartMs && t < s.EndMs {
			return s.Index
		}
	}
	return len(segments) - 1
}

// Player tracks playback position over a finalized timeline. It adds
// no state beyond position and the last rendered values; Sync is safe
// to call from a per-frame repaint loop.
type Player struct {
	messages   []types.Message
	segments   []Segment
	durationMs int64

	positionMs  int64
	paused      bool
	lastRole    types.Role
	lastSegment int
}

// View is what Sync reports for one frame.
type View struct {
	Caption      Caption
	HasCaption   bool
	RoleChanged  bool
	SegmentIndex int
}

// NewPlayer builds a player over a finalized message timeline.
func NewPlayer(messages []types.Message, durationMs int64) *Player {
	return &Player{
		messages:    messages,
		segments:    BuildSegments(messages, durationMs),
		durationMs:  durationMs,
		paused:      true,
		lastSegment: -1,
	}
}

// Segments returns the scrubbable timeline.
func (p *Player) Segments() []Segment { return p.segments }

// Paused reports whether playback is paused.
func (p *Player) Paused() bool { return p.paused }

// PositionMs returns the current playback position.
func (p *Player) PositionMs() int64 { return p.positionMs }

// Play resumes playback.
func (p *Player) Play() { p.paused = false }

// Pause halts playback.
func (p *Player) Pause() { p.paused = true }

// Sync advances the player to playback time t and reports the frame's
// view. RoleChanged is true only on the frame where the active pane
// flips between host and guest.
func (p *Player) Sync(t int64) View {
	p.positionMs = t

	view := View{SegmentIndex: CurrentSegmentIndex(p.segments, t)}
	p.lastSegment = view.SegmentIndex

	caption, ok := CaptionAt(p.messages, t, p.durationMs)
	if !ok {
		return view
	}
	view.Caption = caption
	view.HasCaption = true
	if caption.Role != p.lastRole {
		view.RoleChanged = true
		p.lastRole = caption.Role
	}
	return view
}

// SeekToSegment jumps to the segment's start and resumes playback.
// Out-of-range indices are ignored.
func (p *Player) SeekToSegment(idx int) {
	if idx < 0 || idx >= len(p.segments) {
		return
	}
	p.positionMs = p.segments[idx].StartMs
	p.paused = false
	p.Sync(p.positionMs)
}
