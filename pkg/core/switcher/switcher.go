// Package switcher decides which participant the camera should favor,
// from nothing but the two volume signals.
package switcher

import (
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

// Config tunes the switching behavior.
type Config struct {
	// VolumeThreshold is the minimum 0-100 level to count as talking.
	VolumeThreshold float64 `json:"volume_threshold"`

	// HysteresisMs is how long a candidate must hold before a switch
	// commits.
	HysteresisMs int64 `json:"hysteresis_ms"`

	// ConfidenceThreshold gates contested switches when both sides are
	// talking over each other.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// SilenceTimeoutMs clears the active speaker after sustained
	// silence.
	SilenceTimeoutMs int64 `json:"silence_timeout_ms"`

	// MaxHistory bounds the retained switch history. Oldest events are
	// dropped first. Zero means unbounded.
	MaxHistory int `json:"max_history"`
}

// DefaultConfig returns the standard switching parameters.
func DefaultConfig() Config {
	return Config{
		VolumeThreshold:     15,
		HysteresisMs:        500,
		ConfidenceThreshold: 0.7,
		SilenceTimeoutMs:    2000,
		MaxHistory:          1024,
	}
}

// Result is the outcome of one volume tick.
type Result struct {
	ActiveSpeaker types.Speaker
	Switched      bool
	Event         *types.SpeakerEvent
}

// Detector tracks who is talking with hysteresis. It favors stability
// over latency: fewer, more confident switches.
type Detector struct {
	mu     sync.Mutex
	config Config
	clock  func() time.Time

	active         types.Speaker
	pending        types.Speaker
	pendingSinceMs int64
	lastActivityMs int64
	seenActivity   bool
	history        []types.SpeakerEvent

	lastGuestVolume float64
	lastHostVolume  float64
}

// NewDetector creates a detector with the given config. Zero-valued
// fields fall back to defaults.
func NewDetector(config Config) *Detector {
	d := DefaultConfig()
	if config.VolumeThreshold == 0 {
		config.VolumeThreshold = d.VolumeThreshold
	}
	if config.HysteresisMs == 0 {
		config.HysteresisMs = d.HysteresisMs
	}
	if config.ConfidenceThreshold == 0 {
		config.ConfidenceThreshold = d.ConfidenceThreshold
	}
	if config.SilenceTimeoutMs == 0 {
		config.SilenceTimeoutMs = d.SilenceTimeoutMs
	}
	return &Detector{config: config, clock: time.Now}
}

// SetClock replaces the wall-clock source used for event timestamps.
// Test hook.
func (d *Detector) SetClock(clock func() time.Time) {
	d.mu.Lock()
	d.clock = clock
	d.mu.Unlock()
}

// ProcessVolumes folds one tick of the two volume signals, both on the
// 0-100 scale, at the given offset from recording start. All hysteresis
// and timeout arithmetic runs on offsetMs, so ticks are replayable.
func (d *Detector) ProcessVolumes(guestVolume, hostVolume float64, offsetMs int64) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastGuestVolume = guestVolume
	d.lastHostVolume = hostVolume

	guestTalking := guestVolume > d.config.VolumeThreshold
	hostTalking := hostVolume > d.config.VolumeThreshold

	var candidate types.Speaker
	var confidence float64
	contested := false

	switch {
	case guestTalking && !hostTalking:
		candidate = types.SpeakerGuest
		confidence = min(guestVolume/100, 1.0)
	case hostTalking && !guestTalking:
		candidate = types.SpeakerHost
		confidence = min(hostVolume/100, 1.0)
	case guestTalking && hostTalking:
		contested = true
		switch {
		case guestVolume > hostVolume*1.2:
			candidate = types.SpeakerGuest
			confidence = min((guestVolume-hostVolume)/100, 0.9)
		case hostVolume > guestVolume*1.2:
			candidate = types.SpeakerHost
			confidence = min((hostVolume-guestVolume)/100, 0.9)
		default:
			// Too close to call. Hold the current speaker.
			candidate = d.active
			confidence = 0.5
		}
	}

	if guestTalking || hostTalking {
		d.lastActivityMs = offsetMs
		d.seenActivity = true
	}

	if d.seenActivity && offsetMs-d.lastActivityMs > d.config.SilenceTimeoutMs {
		d.active = types.SpeakerNone
		d.pending = types.SpeakerNone
		return Result{ActiveSpeaker: types.SpeakerNone}
	}

	if candidate != types.SpeakerNone && candidate != d.active {
		if candidate == d.pending {
			held := offsetMs - d.pendingSinceMs
			// A lone voice above the threshold is unambiguous; the
			// confidence floor only arbitrates cross-talk.
			confident := !contested || confidence >= d.config.ConfidenceThreshold
			if held >= d.config.HysteresisMs && confident {
				event := types.SpeakerEvent{
					Speaker:          candidate,
					Timestamp:        d.clock(),
					RelativeOffsetMs: offsetMs,
					Confidence:       confidence,
					VolumeLevel:      guestVolume,
				}
				if candidate == types.SpeakerHost {
					event.VolumeLevel = hostVolume
				}
				d.active = candidate
				d.pending = types.SpeakerNone
				d.appendEvent(event)
				return Result{ActiveSpeaker: candidate, Switched: true, Event: &event}
			}
		} else {
			d.pending = candidate
			d.pendingSinceMs = offsetMs
		}
	} else if candidate == d.active {
		d.pending = types.SpeakerNone
	}

	return Result{ActiveSpeaker: d.active}
}

func (d *Detector) appendEvent(event types.SpeakerEvent) {
	d.history = append(d.history, event)
	if d.config.MaxHistory > 0 && len(d.history) > d.config.MaxHistory {
		d.history = d.history[len(d.history)-d.config.MaxHistory:]
	}
}

// ActiveSpeaker returns the current active speaker.
func (d *Detector) ActiveSpeaker() types.Speaker {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// CurrentVolumes returns the most recently processed volume pair.
func (d *Detector) CurrentVolumes() (guest, host float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastGuestVolume, d.lastHostVolume
}

// ExportEvents returns a copy of the switch history for persistence.
func (d *Detector) ExportEvents() []types.SpeakerEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.SpeakerEvent, len(d.history))
	copy(out, d.history)
	return out
}

// ImportEvents replaces the switch history, for replay of a persisted
// session.
func (d *Detector) ImportEvents(events []types.SpeakerEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = make([]types.SpeakerEvent, len(events))
	copy(d.history, events)
}

// ApplySwitchAtTime returns the speaker active at the given playback
// time: the last imported event with relativeOffset at or before t, or
// none before the first switch.
func (d *Detector) ApplySwitchAtTime(tMs int64) types.Speaker {
	d.mu.Lock()
	defer d.mu.Unlock()
	return SpeakerAtTime(d.history, tMs)
}

// SpeakerAtTime scans an ordered event history for the speaker active
// at time t. Events must be in non-decreasing relativeOffset order.
func SpeakerAtTime(events []types.SpeakerEvent, tMs int64) types.Speaker {
	active := types.SpeakerNone
	for _, event := range events {
		if event.RelativeOffsetMs > tMs {
			break
		}
		active = event.Speaker
	}
	return active
}

// Reset returns the detector to its initial state.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = types.SpeakerNone
	d.pending = types.SpeakerNone
	d.pendingSinceMs = 0
	d.lastActivityMs = 0
	d.seenActivity = false
	d.history = nil
}
