package transcript

import (
	"testing"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

func newTestAggregator(start time.Time) (*Aggregator, *time.Time) {
	now := start
	a := NewAggregator(start)
	a.SetClock(func() time.Time { return now })
	return a, &now
}

func TestAggregatorMergesWithinWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a, now := newTestAggregator(start)

	if idx := a.Add(types.RoleHost, "Welcome"); idx != 0 {
		t.Fatalf("first Add index = %d, want 0", idx)
	}
	*now = start.Add(1 * time.Second)
	if idx := a.Add(types.RoleHost, "to the show"); idx != 0 {
		t.Fatalf("merged Add index = %d, want 0", idx)
	}

	msgs := a.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Text != "Welcome to the show" {
		t.Errorf("text = %q", msgs[0].Text)
	}
	if msgs[0].RelativeOffsetMs != 0 {
		t.Errorf("RelativeOffsetMs = %d, want 0", msgs[0].RelativeOffsetMs)
	}
}

func TestAggregatorWindowAnchoredOnFirstFragment(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a, now := newTestAggregator(start)

	a.Add(types.RoleHost, "one")
	*now = start.Add(2 * time.Second)
	a.Add(types.RoleHost, "two")
	// 3.5s after the message opened: past the window even though the
	// previous append was only 1.5s ago.
	*now = start.Add(3500 * time.Millisecond)
	a.Add(types.RoleHost, "three")

	msgs := a.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Text != "one two" || msgs[1].Text != "three" {
		t.Errorf("messages = %q, %q", msgs[0].Text, msgs[1].Text)
	}
	if msgs[1].RelativeOffsetMs != 3500 {
		t.Errorf("second message offset = %d, want 3500", msgs[1].RelativeOffsetMs)
	}
}

func TestAggregatorRoleChangeBreaksMerge(t *testing.T) {
	start := time.Now()
	a, now := newTestAggregator(start)

	a.Add(types.RoleHost, "question?")
	*now = start.Add(500 * time.Millisecond)
	a.Add(types.RoleGuest, "answer")
	*now = start.Add(900 * time.Millisecond)
	a.Add(types.RoleHost, "follow-up")

	msgs := a.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, want := range []types.Role{types.RoleHost, types.RoleGuest, types.RoleHost} {
		if msgs[i].Role != want {
			t.Errorf("message %d role = %s, want %s", i, msgs[i].Role, want)
		}
	}
}

func TestAggregatorOffsetsNonDecreasing(t *testing.T) {
	start := time.Now()
	a, now := newTestAggregator(start)

	for i := 0; i < 10; i++ {
		*now = start.Add(time.Duration(i) * 1700 * time.Millisecond)
		role := types.RoleGuest
		if i%2 == 0 {
			role = types.RoleHost
		}
		a.Add(role, "fragment")
	}

	msgs := a.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].RelativeOffsetMs < msgs[i-1].RelativeOffsetMs {
			t.Fatalf("offsets decrease at %d: %d < %d", i, msgs[i].RelativeOffsetMs, msgs[i-1].RelativeOffsetMs)
		}
	}
}

func TestAggregatorCurrentHostIndex(t *testing.T) {
	start := time.Now()
	a, now := newTestAggregator(start)

	if got := a.CurrentHostIndex(); got != -1 {
		t.Errorf("empty CurrentHostIndex = %d, want -1", got)
	}
	a.Add(types.RoleHost, "hello")
	if got := a.CurrentHostIndex(); got != 0 {
		t.Errorf("CurrentHostIndex = %d, want 0", got)
	}
	*now = start.Add(5 * time.Second)
	a.Add(types.RoleGuest, "hi")
	if got := a.CurrentHostIndex(); got != -1 {
		t.Errorf("CurrentHostIndex after guest = %d, want -1", got)
	}

	a.SetAudioRef(0, "seg-0.wav")
	if got := a.Messages()[0].AudioRef; got != "seg-0.wav" {
		t.Errorf("AudioRef = %q", got)
	}
}

func TestAggregatorFreeze(t *testing.T) {
	a, _ := newTestAggregator(time.Now())
	a.Add(types.RoleGuest, "before")
	a.Freeze()
	if idx := a.Add(types.RoleGuest, "after"); idx != -1 {
		t.Errorf("Add after Freeze = %d, want -1", idx)
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Len())
	}
}

func TestAggregatorDropsEmptyFragments(t *testing.T) {
	a, _ := newTestAggregator(time.Now())
	if idx := a.Add(types.RoleHost, ""); idx != -1 {
		t.Errorf("empty Add = %d, want -1", idx)
	}
}

func TestAggregatorStandaloneNeverMerges(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a, now := newTestAggregator(start)

	a.Add(types.RoleGuest, "look at this")
	*now = start.Add(500 * time.Millisecond)
	if idx := a.AddStandalone(types.RoleGuest, "[Shared image: vacation.jpg]"); idx != 1 {
		t.Fatalf("standalone index = %d, want 1", idx)
	}

	// The fragment right after the marker starts a fresh message even
	// though it is the same role inside the merge window.
	*now = start.Add(1 * time.Second)
	if idx := a.Add(types.RoleGuest, "as I was saying"); idx != 2 {
		t.Fatalf("post-marker Add index = %d, want 2", idx)
	}

	msgs := a.Messages()
	if msgs[1].Text != "[Shared image: vacation.jpg]" {
		t.Errorf("marker text = %q", msgs[1].Text)
	}
	if msgs[1].RelativeOffsetMs != 500 {
		t.Errorf("marker offset = %d, want 500", msgs[1].RelativeOffsetMs)
	}
}
