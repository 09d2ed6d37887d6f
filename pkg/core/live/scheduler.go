package live

import (
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/audio"
)

// Sink plays raw 16-bit PCM. Play is called at each buffer's scheduled
// start time and must not block for the duration of the audio.
type Sink interface {
	Play(pcm []byte) error
}

// Flusher is implemented by sinks that buffer audio of their own and
// need clearing when playback is cancelled.
type Flusher interface {
	Flush()
}

// Scheduler plays decoded reply buffers back to back. Each buffer is
// scheduled at the later of the running clock and the end of the
// previous buffer, so consecutive chunks are gapless and a chunk
// arriving after a silence starts immediately.
type Scheduler struct {
	mu        sync.Mutex
	sink      Sink
	tap       func(pcm []byte)
	clock     func() time.Duration
	nextStart time.Duration
	sources   map[int64]*time.Timer
	nextID    int64
}

// NewScheduler creates a scheduler over the given sink. A nil sink is
// allowed; scheduling accounting still runs, which is what the
// recorder's mixer consumes through the tap.
func NewScheduler(sink Sink) *Scheduler {
	epoch := time.Now()
	return newScheduler(sink, func() time.Duration { return time.Since(epoch) })
}

func newScheduler(sink Sink, clock func() time.Duration) *Scheduler {
	return &Scheduler{
		sink:    sink,
		clock:   clock,
		sources: make(map[int64]*time.Timer),
	}
}

// SetTap registers a callback receiving every scheduled PCM chunk, in
// schedule order. The recorder taps host audio here.
func (s *Scheduler) SetTap(tap func(pcm []byte)) {
	s.mu.Lock()
	s.tap = tap
	s.mu.Unlock()
}

// Schedule queues one decoded buffer for playback.
func (s *Scheduler) Schedule(buf *audio.Buffer) {
	pcm := buf.PCM16()

	s.mu.Lock()
	now := s.clock()
	start := s.nextStart
	if now > start {
		start = now
	}
	s.nextStart = start + buf.Duration()
	tap := s.tap

	id := s.nextID
	s.nextID++
	sink := s.sink
	delay := start - now
	if sink != nil {
		s.sources[id] = time.AfterFunc(delay, func() {
			sink.Play(pcm)
			s.mu.Lock()
			delete(s.sources, id)
			s.mu.Unlock()
		})
	}
	s.mu.Unlock()

	if tap != nil {
		tap(pcm)
	}
}

// Flush cancels every pending source, clears the active set, and
// resets the clock so the next buffer plays immediately. Safe to call
// when nothing is playing, and safe to call repeatedly.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	for id, timer := range s.sources {
		timer.Stop()
		delete(s.sources, id)
	}
	s.nextStart = 0
	sink := s.sink
	s.mu.Unlock()

	if f, ok := sink.(Flusher); ok {
		f.Flush()
	}
}

// NextStart reports where the next buffer would be placed on the
// playback clock.
func (s *Scheduler) NextStart() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Active reports how many sources are scheduled but not yet played.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}
