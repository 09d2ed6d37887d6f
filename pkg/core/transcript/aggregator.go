// Package transcript reconciles incremental transcription fragments
// into an ordered timeline of merged messages.
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/monumento/studio/pkg/core/types"
)

// MergeWindow is how close together two fragments of the same role
// must arrive to be folded into one message. The window is anchored on
// the open message's own timestamp and is not refreshed by appends, so
// a long monologue still breaks into readable entries.
const MergeWindow = 3000 * time.Millisecond

// Aggregator builds the session's message timeline. The remote
// endpoint emits transcripts at word or phrase granularity; appending
// each fragment as its own message would shred the timeline, so
// fragments of the same role arriving within the merge window extend
// the open message instead.
type Aggregator struct {
	mu       sync.Mutex
	clock    func() time.Time
	start    time.Time
	window   time.Duration
	messages []types.Message
	frozen   bool
	// standalone marks the newest message as closed to merging.
	standalone bool
}

// NewAggregator creates an aggregator for a recording that started at
// the given wall-clock time.
func NewAggregator(start time.Time) *Aggregator {
	return &Aggregator{
		clock:  time.Now,
		start:  start,
		window: MergeWindow,
	}
}

// SetClock replaces the time source. Test hook.
func (a *Aggregator) SetClock(clock func() time.Time) {
	a.mu.Lock()
	a.clock = clock
	a.mu.Unlock()
}

// Add folds one transcript fragment into the timeline and returns the
// index of the message it landed in. Fragments arriving after Freeze
// are dropped and Add returns -1.
func (a *Aggregator) Add(role types.Role, text string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen || text == "" {
		return -1
	}

	now := a.clock()
	if n := len(a.messages); n > 0 && !a.standalone {
		last := &a.messages[n-1]
		if last.Role == role && now.Sub(last.Timestamp) < a.window {
			last.Text += " " + text
			return n - 1
		}
	}
	a.standalone = false

	a.messages = append(a.messages, types.Message{
		ID:               uuid.NewString(),
		Role:             role,
		Text:             text,
		Timestamp:        now,
		RelativeOffsetMs: now.Sub(a.start).Milliseconds(),
	})
	return len(a.messages) - 1
}

// AddStandalone appends a message that never merges with the open
// one, such as a shared-content marker, and closes the open message
// against future merges. Returns the new index, or -1 after Freeze.
func (a *Aggregator) AddStandalone(role types.Role, text string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen || text == "" {
		return -1
	}

	now := a.clock()
	a.standalone = true
	a.messages = append(a.messages, types.Message{
		ID:               uuid.NewString(),
		Role:             role,
		Text:             text,
		Timestamp:        now,
		RelativeOffsetMs: now.Sub(a.start).Milliseconds(),
	})
	return len(a.messages) - 1
}

// CurrentHostIndex returns the index of the open host message, or -1
// when the most recent message is not the host's. The recorder uses it
// to attribute synthesized narration audio.
func (a *Aggregator) CurrentHostIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.messages)
	if n == 0 || a.messages[n-1].Role != types.RoleHost {
		return -1
	}
	return n - 1
}

// SetAudioRef attaches a narration audio reference to the message at
// the given index.
func (a *Aggregator) SetAudioRef(index int, ref string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.messages) {
		return
	}
	a.messages[index].AudioRef = ref
}

// Messages returns a copy of the timeline.
func (a *Aggregator) Messages() []types.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Len returns the number of messages on the timeline.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

// Freeze seals the timeline. Further fragments are ignored.
func (a *Aggregator) Freeze() {
	a.mu.Lock()
	a.frozen = true
	a.mu.Unlock()
}
