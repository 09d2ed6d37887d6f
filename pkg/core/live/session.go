package live

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/monumento/studio/pkg/core/audio"
	"github.com/monumento/studio/pkg/core/live/wire"
)

// Session is the streaming AI session: it owns the channel to the
// conversation endpoint, the outbound media queue, and the playback
// scheduler for synthesized replies.
type Session struct {
	config    SessionConfig
	ch        Channel
	scheduler *Scheduler

	// State
	mu        sync.RWMutex
	state     SessionState
	sessionID string

	// Outbound
	window *audio.WindowBuffer
	media  chan *wire.ClientMessage

	// Channels
	events   chan Event
	evMu     sync.RWMutex
	evClosed bool
	done     chan struct{}
	closed   atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	debugEnabled bool
}

// NewSession creates a live session over an open channel. The sink
// receives synthesized audio at its scheduled playback time; pass nil
// when playback is consumed through the scheduler tap instead.
func NewSession(config SessionConfig, ch Channel, sink Sink) *Session {
	config.applyDefaults()
	return &Session{
		config:    config,
		ch:        ch,
		scheduler: NewScheduler(sink),
		sessionID: uuid.NewString(),
		window:    audio.NewWindowBuffer(config.WindowSize),
		media:     make(chan *wire.ClientMessage, config.QueueDepth),
		events:    make(chan Event, 100),
		done:      make(chan struct{}),
	}
}

// EnableDebug enables debug event emission.
func (s *Session) EnableDebug() {
	s.debugEnabled = true
}

// SessionID returns the session identifier.
func (s *Session) SessionID() string {
	return s.sessionID
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Events returns the channel for receiving session events.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Scheduler exposes the playback scheduler so the recorder can tap
// host audio.
func (s *Session) Scheduler() *Scheduler {
	return s.scheduler
}

// Start performs the channel handshake and starts the media loops.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.state = StateConnecting
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.emit(&StateChangedEvent{From: StateIdle, To: StateConnecting})

	setup := &wire.ClientMessage{Setup: &wire.Setup{
		Model: s.config.Model,
		GenerationConfig: &wire.GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       wire.NewSpeechConfig(s.config.Voice),
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}
	if s.config.SystemInstruction != "" {
		setup.Setup.SystemInstruction = wire.TextContent(s.config.SystemInstruction)
	}
	frame, err := wire.EncodeClientMessage(setup)
	if err != nil {
		return err
	}
	if err := s.ch.Send(s.ctx, frame); err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("setup: %w", err)
	}

	go s.sendLoop()
	go s.receiveLoop()

	s.setState(StateActive)
	s.emit(&SessionOpenedEvent{SessionID: s.sessionID, Model: s.config.Model})
	return nil
}

// SendAudio feeds captured microphone samples into the outbound path.
// Samples accumulate until a full processing window is available, then
// each window is encoded and queued fire-and-forget. Never blocks.
func (s *Session) SendAudio(samples []float32) error {
	if s.closed.Load() {
		return fmt.Errorf("session closed")
	}
	if s.State() != StateActive {
		return nil
	}

	s.window.Write(samples)
	for {
		win, ok := s.window.Next()
		if !ok {
			return nil
		}
		s.enqueue(&wire.ClientMessage{RealtimeInput: &wire.RealtimeInput{
			MediaChunks: []audio.Blob{audio.Encode(win)},
		}})
	}
}

// SendImageFrame forwards one encoded camera frame. It is a no-op when
// the session is not active, so frame tickers need no extra guard.
func (s *Session) SendImageFrame(data []byte, mimeType string) error {
	if s.closed.Load() || s.State() != StateActive {
		return nil
	}
	s.enqueue(&wire.ClientMessage{RealtimeInput: &wire.RealtimeInput{
		MediaChunks: []audio.Blob{{
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: mimeType,
		}},
	}})
	return nil
}

// enqueue queues an outbound frame, dropping it when the queue is full.
func (s *Session) enqueue(msg *wire.ClientMessage) {
	select {
	case s.media <- msg:
	case <-s.done:
	default:
		s.debug("AUDIO", "outbound queue full, dropping frame")
	}
}

func (s *Session) sendLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ctx.Done():
			return
		case msg := <-s.media:
			frame, err := wire.EncodeClientMessage(msg)
			if err != nil {
				s.debug("CHANNEL", fmt.Sprintf("encode: %v", err))
				continue
			}
			if err := s.ch.Send(s.ctx, frame); err != nil {
				// A lagging or failed send must not take the session
				// down with it.
				s.debug("CHANNEL", fmt.Sprintf("send: %v", err))
			}
		}
	}
}

func (s *Session) receiveLoop() {
	for {
		data, err := s.ch.Receive(s.ctx)
		if err != nil {
			if s.closed.Load() {
				return
			}
			select {
			case <-s.done:
			case <-s.ctx.Done():
			default:
				s.setState(StateErrored)
				s.emit(&ErrorEvent{Code: "channel_receive", Message: err.Error()})
			}
			return
		}

		msg, err := wire.DecodeServerMessage(data)
		if err != nil {
			s.debug("CHANNEL", fmt.Sprintf("skipping frame: %v", err))
			continue
		}
		s.handleServerMessage(msg)
	}
}

func (s *Session) handleServerMessage(msg *wire.ServerMessage) {
	if msg.SetupComplete != nil {
		s.debug("SESSION", "setup complete")
		return
	}
	sc := msg.ServerContent
	if sc == nil {
		return
	}

	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		s.emit(&TranscriptEvent{Text: sc.OutputTranscription.Text, IsGuest: false})
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		s.emit(&TranscriptEvent{Text: sc.InputTranscription.Text, IsGuest: true})
	}

	if sc.ModelTurn != nil {
		for _, blob := range sc.ModelTurn.AudioParts() {
			s.scheduleAudio(blob)
		}
	}

	if sc.Interrupted {
		s.scheduler.Flush()
		s.emit(&InterruptedEvent{})
	}
	if sc.TurnComplete {
		s.emit(&TurnCompleteEvent{})
	}
}

// scheduleAudio decodes one synthesized chunk and queues it for
// playback. Decode failures are fatal to the chunk only.
func (s *Session) scheduleAudio(blob audio.Blob) {
	raw, err := audio.Decode(blob)
	if err != nil {
		s.debug("PLAYBACK", fmt.Sprintf("dropping chunk: %v", err))
		return
	}
	buf, err := audio.DecodeToBuffer(raw, s.config.Output.SampleRate, s.config.Output.Channels)
	if err != nil {
		s.debug("PLAYBACK", fmt.Sprintf("dropping chunk: %v", err))
		return
	}
	s.scheduler.Schedule(buf)
	s.emit(&HostAudioEvent{Data: raw, DurationMs: s.config.Output.DurationMs(len(raw))})
}

// Close shuts down the session. Idempotent.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.debug("SESSION", "closing session")
	s.setState(StateClosing)

	if s.cancel != nil {
		s.cancel()
	}
	if err := s.ch.Close(); err != nil {
		s.debug("CHANNEL", fmt.Sprintf("close: %v", err))
	}
	s.scheduler.Flush()

	close(s.done)
	s.setState(StateClosed)
	s.emit(&SessionClosedEvent{Reason: "closed"})

	s.evMu.Lock()
	s.evClosed = true
	s.evMu.Unlock()
	close(s.events)
	return nil
}

// setState transitions the session state and emits a change event.
func (s *Session) setState(to SessionState) {
	s.mu.Lock()
	from := s.state
	if from == to {
		s.mu.Unlock()
		return
	}
	s.state = to
	s.mu.Unlock()
	s.emit(&StateChangedEvent{From: from, To: to})
}

// emit sends an event without blocking; events are dropped if the
// consumer lags or the session is already torn down.
func (s *Session) emit(event Event) {
	s.evMu.RLock()
	defer s.evMu.RUnlock()
	if s.evClosed {
		return
	}
	select {
	case s.events <- event:
	default:
	}
}

// debug emits a debug event when debug mode is enabled.
func (s *Session) debug(category, message string) {
	if !s.debugEnabled {
		return
	}
	s.emit(&DebugEvent{Category: category, Message: message})
}
