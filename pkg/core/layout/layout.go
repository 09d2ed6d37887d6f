// Package layout is the state machine for the on-canvas arrangement
// of host, guest, transcript, and shared content. Transitions are
// explicit and externally triggered; nothing here runs on a timer.
package layout

import (
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

// PiPPosition anchors a picture-in-picture pane to a canvas corner.
type PiPPosition string

const (
	PiPBottomLeft  PiPPosition = "bottom-left"
	PiPBottomRight PiPPosition = "bottom-right"
	PiPTopLeft     PiPPosition = "top-left"
	PiPTopRight    PiPPosition = "top-right"
)

// Size is a width/height pair in canvas pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Preset describes one layout mode's geometry on a twelve-column grid.
type Preset struct {
	Mode                 types.LayoutMode `json:"mode"`
	HostColumnSpan       int              `json:"hostColumnSpan"`
	TranscriptColumnSpan int              `json:"transcriptColumnSpan"`
	GuestColumnSpan      int              `json:"guestColumnSpan"`
	ContentColumnSpan    int              `json:"contentColumnSpan"`
	ShowPiP              bool             `json:"showPiP"`
	PiPSize              Size             `json:"pipSize"`
	PiPPosition          PiPPosition      `json:"pipPosition"`
}

// Presets maps each layout mode to its geometry.
var Presets = map[types.LayoutMode]Preset{
	types.LayoutDefault: {
		Mode:                 types.LayoutDefault,
		HostColumnSpan:       4,
		TranscriptColumnSpan: 4,
		GuestColumnSpan:      4,
		PiPPosition:          PiPBottomRight,
	},
	types.LayoutContentShared: {
		Mode:              types.LayoutContentShared,
		ContentColumnSpan: 9,
		ShowPiP:           true,
		PiPSize:           Size{Width: 150, Height: 150},
		PiPPosition:       PiPBottomLeft,
	},
	types.LayoutScreenShare: {
		Mode:              types.LayoutScreenShare,
		ContentColumnSpan: 12,
		ShowPiP:           true,
		PiPSize:           Size{Width: 120, Height: 120},
		PiPPosition:       PiPBottomRight,
	},
}

// ContentType classifies a shared attachment for auto-switching.
type ContentType string

const (
	ContentImage    ContentType = "image"
	ContentDocument ContentType = "document"
	ContentVideo    ContentType = "video"
	ContentAudio    ContentType = "audio"
	ContentScreen   ContentType = "screen"
)

// Observer is notified synchronously after every committed transition.
type Observer func(preset Preset, event types.LayoutChangeEvent)

// Machine tracks the current layout and its transition history.
type Machine struct {
	mu       sync.Mutex
	clock    func() time.Time
	current  types.LayoutMode
	history  []types.LayoutChangeEvent
	observer Observer
}

// NewMachine creates a machine in the DEFAULT layout.
func NewMachine(observer Observer) *Machine {
	return &Machine{
		clock:    time.Now,
		current:  types.LayoutDefault,
		observer: observer,
	}
}

// SetClock replaces the time source. Test hook.
func (m *Machine) SetClock(clock func() time.Time) {
	m.mu.Lock()
	m.clock = clock
	m.mu.Unlock()
}

// Current returns the active layout mode.
func (m *Machine) Current() types.LayoutMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentPreset returns the active layout's geometry.
func (m *Machine) CurrentPreset() Preset {
	return Presets[m.Current()]
}

// Switch transitions to the target layout. It always succeeds, records
// the change event, and notifies the observer synchronously.
func (m *Machine) Switch(target types.LayoutMode, offsetMs int64, reason string) types.LayoutChangeEvent {
	if reason == "" {
		reason = "manual"
	}

	m.mu.Lock()
	event := types.LayoutChangeEvent{
		Timestamp:        m.clock(),
		RelativeOffsetMs: offsetMs,
		FromLayout:       m.current,
		ToLayout:         target,
		Reason:           reason,
	}
	m.current = target
	m.history = append(m.history, event)
	observer := m.observer
	m.mu.Unlock()

	if observer != nil {
		observer(Presets[target], event)
	}
	return event
}

// AutoSwitchForContent maps a newly shared attachment to the matching
// layout: full-bleed for a screen share, content-dominant otherwise.
func (m *Machine) AutoSwitchForContent(content ContentType, offsetMs int64) types.LayoutChangeEvent {
	target := types.LayoutContentShared
	if content == ContentScreen {
		target = types.LayoutScreenShare
	}
	return m.Switch(target, offsetMs, "content_shared_"+string(content))
}

// ReturnToDefault goes back to the three-way split.
func (m *Machine) ReturnToDefault(offsetMs int64) types.LayoutChangeEvent {
	return m.Switch(types.LayoutDefault, offsetMs, "content_closed")
}

// History returns a copy of the transition history.
func (m *Machine) History() []types.LayoutChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.LayoutChangeEvent, len(m.history))
	copy(out, m.history)
	return out
}

// ExportEvents returns the history for metadata persistence.
func (m *Machine) ExportEvents() []types.LayoutChangeEvent {
	return m.History()
}

// ImportEvents replaces the history for replay of a persisted session.
func (m *Machine) ImportEvents(events []types.LayoutChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = make([]types.LayoutChangeEvent, len(events))
	copy(m.history, events)
}

// ApplyEventAtTime reconstructs the layout active at playback time t
// by taking the last event with relativeOffset at or before t. It
// returns nil when that layout matches the cached current one, so
// callers can skip redundant re-renders.
func (m *Machine) ApplyEventAtTime(tMs int64) *Preset {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := types.LayoutDefault
	for _, event := range m.history {
		if event.RelativeOffsetMs > tMs {
			break
		}
		active = event.ToLayout
	}

	if active == m.current {
		return nil
	}
	m.current = active
	preset := Presets[active]
	return &preset
}

// Reset returns the machine to DEFAULT and clears history.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = types.LayoutDefault
	m.history = nil
}
