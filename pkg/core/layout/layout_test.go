package layout

import (
	"testing"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

func TestAutoSwitchAndReturnHistory(t *testing.T) {
	m := NewMachine(nil)
	m.SetClock(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) })

	m.AutoSwitchForContent(ContentImage, 1000)
	m.ReturnToDefault(5000)

	history := m.History()
	if len(history) != 2 {
		t.Fatalf("history = %d events, want 2", len(history))
	}

	first, second := history[0], history[1]
	if first.FromLayout != types.LayoutDefault || first.ToLayout != types.LayoutContentShared || first.RelativeOffsetMs != 1000 {
		t.Errorf("first event = %+v", first)
	}
	if first.Reason != "content_shared_image" {
		t.Errorf("first reason = %q", first.Reason)
	}
	if second.FromLayout != types.LayoutContentShared || second.ToLayout != types.LayoutDefault || second.RelativeOffsetMs != 5000 {
		t.Errorf("second event = %+v", second)
	}
	if second.Reason != "content_closed" {
		t.Errorf("second reason = %q", second.Reason)
	}
}

func TestApplyEventAtTime(t *testing.T) {
	m := NewMachine(nil)
	m.AutoSwitchForContent(ContentImage, 1000)
	m.ReturnToDefault(5000)

	// Reconstruct from a fresh machine with imported history, the way
	// replay does it.
	replay := NewMachine(nil)
	replay.ImportEvents(m.ExportEvents())

	if preset := replay.ApplyEventAtTime(500); preset != nil {
		t.Errorf("ApplyEventAtTime(500) = %+v, want nil (already DEFAULT)", preset)
	}
	preset := replay.ApplyEventAtTime(3000)
	if preset == nil || preset.Mode != types.LayoutContentShared {
		t.Fatalf("ApplyEventAtTime(3000) = %+v, want CONTENT_SHARED", preset)
	}
	// Same layout again: cached, no re-render.
	if preset := replay.ApplyEventAtTime(4000); preset != nil {
		t.Errorf("ApplyEventAtTime(4000) = %+v, want nil", preset)
	}
	preset = replay.ApplyEventAtTime(6000)
	if preset == nil || preset.Mode != types.LayoutDefault {
		t.Fatalf("ApplyEventAtTime(6000) = %+v, want DEFAULT", preset)
	}
}

func TestScreenShareMapsToFullBleed(t *testing.T) {
	m := NewMachine(nil)
	ev := m.AutoSwitchForContent(ContentScreen, 0)
	if ev.ToLayout != types.LayoutScreenShare {
		t.Errorf("ToLayout = %q, want SCREEN_SHARE", ev.ToLayout)
	}
	if ev.Reason != "content_shared_screen" {
		t.Errorf("reason = %q", ev.Reason)
	}
	preset := m.CurrentPreset()
	if preset.ContentColumnSpan != 12 || !preset.ShowPiP {
		t.Errorf("preset = %+v", preset)
	}
}

func TestObserverNotifiedSynchronously(t *testing.T) {
	var seen []types.LayoutChangeEvent
	m := NewMachine(func(preset Preset, event types.LayoutChangeEvent) {
		if preset.Mode != event.ToLayout {
			t.Errorf("observer preset %q does not match event target %q", preset.Mode, event.ToLayout)
		}
		seen = append(seen, event)
	})

	m.Switch(types.LayoutContentShared, 100, "")
	if len(seen) != 1 {
		t.Fatalf("observer called %d times, want 1", len(seen))
	}
	if seen[0].Reason != "manual" {
		t.Errorf("default reason = %q, want manual", seen[0].Reason)
	}
}

func TestSwitchAlwaysSucceeds(t *testing.T) {
	m := NewMachine(nil)
	// Self-transition is still recorded.
	ev := m.Switch(types.LayoutDefault, 42, "manual")
	if ev.FromLayout != types.LayoutDefault || ev.ToLayout != types.LayoutDefault {
		t.Errorf("event = %+v", ev)
	}
	if len(m.History()) != 1 {
		t.Error("self-transition must be recorded")
	}
}

func TestPresetGeometry(t *testing.T) {
	def := Presets[types.LayoutDefault]
	if def.HostColumnSpan != 4 || def.TranscriptColumnSpan != 4 || def.GuestColumnSpan != 4 {
		t.Errorf("DEFAULT = %+v, want 4/4/4 split", def)
	}
	if def.ShowPiP {
		t.Error("DEFAULT must not show PiP")
	}
	shared := Presets[types.LayoutContentShared]
	if shared.ContentColumnSpan != 9 || shared.PiPSize.Width != 150 {
		t.Errorf("CONTENT_SHARED = %+v", shared)
	}
}
