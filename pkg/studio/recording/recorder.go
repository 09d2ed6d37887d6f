// Package recording orchestrates a live studio session: it feeds the
// microphone to the host, routes the host's replies into the playback
// scheduler and the archival mixer, drives the camera switcher from
// sampled volume levels, and finalizes everything into a session
// record, an archive bundle, and the local history.
package recording

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/audio"
	"github.com/monumento/studio/pkg/core/compositor"
	"github.com/monumento/studio/pkg/core/layout"
	"github.com/monumento/studio/pkg/core/live"
	"github.com/monumento/studio/pkg/core/switcher"
	"github.com/monumento/studio/pkg/core/transcript"
	"github.com/monumento/studio/pkg/core/types"
	"github.com/monumento/studio/pkg/studio/backend"
	"github.com/monumento/studio/pkg/studio/history"
)

// LiveSession is the slice of the live session the recorder drives.
type LiveSession interface {
	Start(ctx context.Context) error
	Events() <-chan live.Event
	SendAudio(samples []float32) error
	SendImageFrame(data []byte, mimeType string) error
	Close() error
}

// FrameGrabber supplies webcam snapshots for the periodic image feed
// to the host. ok is false when no frame is available yet.
type FrameGrabber interface {
	GrabFrame() (data []byte, mimeType string, ok bool)
}

// Config tunes the recorder's sampling loops and finalization.
type Config struct {
	Vibe          types.Vibe            `json:"vibe"`
	Mode          types.InterviewMode   `json:"mode"`
	Duration      types.SessionDuration `json:"duration"`
	Topics        []string              `json:"topics,omitempty"`
	AnimateAvatar bool                  `json:"animate_avatar"`
	// VolumeInterval is the cadence of the level-sampling tick.
	VolumeInterval time.Duration `json:"volume_interval"`
	// FrameInterval is how often a webcam snapshot goes to the host.
	FrameInterval time.Duration `json:"frame_interval"`
	// ArchiveDir receives the session bundle; empty disables archiving.
	ArchiveDir string `json:"archive_dir"`
}

// DefaultConfig matches the studio's recording cadence.
func DefaultConfig() Config {
	return Config{
		Vibe:           types.VibeHistorian,
		Mode:           types.ModeAutoPilot,
		Duration:       types.DurationMedium,
		VolumeInterval: 100 * time.Millisecond,
		FrameInterval:  2 * time.Second,
	}
}

// Recorder runs one session end to end.
type Recorder struct {
	config   Config
	logger   *slog.Logger
	session  LiveSession
	frames   FrameGrabber
	detector *switcher.Detector
	layouts  *layout.Machine
	agg      *transcript.Aggregator
	mixer    *compositor.Mixer
	comp     *compositor.Compositor
	backend  *backend.Client
	history  *history.Store

	mu        sync.Mutex
	started   bool
	stopped   bool
	start     time.Time
	sharing   bool
	micLevel  float64
	micSeen   time.Time
	hostMeter hostMeter
	hostAudio map[int]*audio.ByteBuffer

	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithCompositor attaches a live preview compositor; switch cues and
// host talking state are forwarded to it.
func WithCompositor(c *compositor.Compositor) Option {
	return func(r *Recorder) { r.comp = c }
}

// WithBackend enables cloud persistence at finalize.
func WithBackend(c *backend.Client) Option {
	return func(r *Recorder) { r.backend = c }
}

// WithHistory enables the local history append at finalize.
func WithHistory(s *history.Store) Option {
	return func(r *Recorder) { r.history = s }
}

// WithFrameGrabber enables the periodic webcam snapshot feed.
func WithFrameGrabber(g FrameGrabber) Option {
	return func(r *Recorder) { r.frames = g }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// New builds a recorder around a live session. The mixer, detector,
// layout machine, and aggregator are owned by the recorder.
func New(config Config, session LiveSession, opts ...Option) *Recorder {
	if config.VolumeInterval <= 0 {
		config.VolumeInterval = 100 * time.Millisecond
	}
	if config.FrameInterval <= 0 {
		config.FrameInterval = 2 * time.Second
	}
	r := &Recorder{
		config:    config,
		logger:    slog.Default(),
		session:   session,
		detector:  switcher.NewDetector(switcher.DefaultConfig()),
		layouts:   layout.NewMachine(nil),
		hostAudio: map[int]*audio.ByteBuffer{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Detector exposes the camera switcher, for replay export.
func (r *Recorder) Detector() *switcher.Detector { return r.detector }

// Layouts exposes the layout machine.
func (r *Recorder) Layouts() *layout.Machine { return r.layouts }

// Messages returns the transcript built so far.
func (r *Recorder) Messages() []types.Message {
	r.mu.Lock()
	agg := r.agg
	r.mu.Unlock()
	if agg == nil {
		return nil
	}
	return agg.Messages()
}

// Start connects the live session and spawns the event, volume, and
// frame loops.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("recording: already started")
	}
	r.started = true
	r.start = time.Now()
	r.agg = transcript.NewAggregator(r.start)
	r.mixer = compositor.NewMixer(audio.InputConfig(), audio.OutputConfig(), func(c compositor.Chunk) {
		r.logger.Debug("archive chunk sealed", "index", c.Index, "bytes", len(c.PCM))
	})
	r.mixer.Start(r.start)
	r.mu.Unlock()

	if err := r.session.Start(ctx); err != nil {
		return fmt.Errorf("recording: start session: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.loops.Add(2)
	go r.eventLoop(loopCtx)
	go r.volumeLoop(loopCtx)
	if r.frames != nil {
		r.loops.Add(1)
		go r.frameLoop(loopCtx)
	}

	r.logger.Info("recording started",
		"vibe", string(r.config.Vibe),
		"mode", string(r.config.Mode),
		"duration_minutes", int(r.config.Duration))
	return nil
}

// WriteMic forwards one microphone window: to the host, to the
// archival mixer, and into the guest level meter.
func (r *Recorder) WriteMic(samples []float32) error {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return fmt.Errorf("recording: not running")
	}
	now := time.Now()
	r.micLevel = audio.LevelFromSamples(samples)
	r.micSeen = now
	mixer := r.mixer
	r.mu.Unlock()

	buf := &audio.Buffer{Data: samples, SampleRate: audio.InputSampleRate, Channels: 1}
	mixer.WriteMic(buf.PCM16(), now)
	return r.session.SendAudio(samples)
}

// ShareContent records shared content: the layout auto-switches and a
// marker message lands on the timeline carrying the layout event.
func (r *Recorder) ShareContent(name string, content layout.ContentType) types.LayoutChangeEvent {
	r.mu.Lock()
	r.sharing = true
	agg := r.agg
	offset := time.Since(r.start).Milliseconds()
	r.mu.Unlock()

	event := r.layouts.AutoSwitchForContent(content, offset)
	if agg != nil {
		agg.AddStandalone(types.RoleGuest, fmt.Sprintf("[Shared %s: %s]", content, name))
	}
	r.logger.Info("content shared", "type", string(content), "name", name)
	return event
}

// CloseContent ends content sharing and returns to the default layout.
func (r *Recorder) CloseContent() types.LayoutChangeEvent {
	r.mu.Lock()
	r.sharing = false
	offset := time.Since(r.start).Milliseconds()
	r.mu.Unlock()
	return r.layouts.ReturnToDefault(offset)
}

// eventLoop consumes the live session's events until the channel
// closes or the recorder stops.
func (r *Recorder) eventLoop(ctx context.Context) {
	defer r.loops.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.session.Events():
			if !ok {
				return
			}
			r.handleEvent(ev)
		}
	}
}

func (r *Recorder) handleEvent(ev live.Event) {
	switch e := ev.(type) {
	case *live.TranscriptEvent:
		role := types.RoleHost
		if e.IsGuest {
			role = types.RoleGuest
		}
		r.agg.Add(role, e.Text)

	case *live.HostAudioEvent:
		now := time.Now()
		r.mixer.WriteHost(e.Data, now)
		r.mu.Lock()
		r.hostMeter.observe(e.Data, time.Duration(e.DurationMs)*time.Millisecond, now)
		if r.config.AnimateAvatar {
			if idx := r.agg.CurrentHostIndex(); idx >= 0 {
				buf, ok := r.hostAudio[idx]
				if !ok {
					buf = audio.NewByteBuffer()
					r.hostAudio[idx] = buf
				}
				buf.Write(e.Data)
			}
		}
		r.mu.Unlock()

	case *live.InterruptedEvent:
		now := time.Now()
		r.mixer.FlushHost(now)
		r.mu.Lock()
		r.hostMeter.flush(now)
		r.mu.Unlock()
		r.logger.Debug("host interrupted")

	case *live.ErrorEvent:
		r.logger.Error("live session error", "code", e.Code, "message", e.Message)
	}
}

// volumeLoop samples both levels on a fixed cadence, drives the
// camera switcher, and advances the archival mixer's chunk clock.
func (r *Recorder) volumeLoop(ctx context.Context) {
	defer r.loops.Done()
	ticker := time.NewTicker(r.config.VolumeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

func (r *Recorder) tick(now time.Time) {
	r.mu.Lock()
	guest := r.micLevel
	// A stale meter reads as silence.
	if now.Sub(r.micSeen) > 2*r.config.VolumeInterval {
		guest = 0
	}
	host := r.hostMeter.currentLevel(now)
	offset := now.Sub(r.start).Milliseconds()
	r.mu.Unlock()

	result := r.detector.ProcessVolumes(guest, host, offset)
	if r.comp != nil {
		r.comp.SetHostTalking(host > switcher.DefaultConfig().VolumeThreshold)
		if result.Switched {
			r.comp.SetActiveSpeaker(result.ActiveSpeaker, now)
		}
	}
	r.mixer.Advance(now)
}

// frameLoop feeds webcam snapshots to the host so it can see the
// guest. Sharing pauses the feed.
func (r *Recorder) frameLoop(ctx context.Context) {
	defer r.loops.Done()
	ticker := time.NewTicker(r.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			sharing := r.sharing
			r.mu.Unlock()
			if sharing {
				continue
			}
			data, mime, ok := r.frames.GrabFrame()
			if !ok {
				continue
			}
			if err := r.session.SendImageFrame(data, mime); err != nil {
				r.logger.Debug("frame send failed", "error", err)
			}
		}
	}
}

// Stop tears the session down in order and finalizes. Each teardown
// step is best effort; a failed step is logged and the rest still
// run. Stop is one-shot; calling it again returns an error.
func (r *Recorder) Stop(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return nil, fmt.Errorf("recording: not running")
	}
	r.stopped = true
	r.mu.Unlock()

	if err := r.session.Close(); err != nil {
		r.logger.Warn("session close failed", "error", err)
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.loops.Wait()

	now := time.Now()
	r.mixer.Advance(now)
	r.agg.Freeze()

	return r.finalize(ctx, now)
}
