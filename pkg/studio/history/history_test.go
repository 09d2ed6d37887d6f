package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id string, createdAt time.Time) Entry {
	return Entry{
		SessionID:       id,
		Title:           "Session " + id,
		Vibe:            string(types.VibeHistorian),
		Mode:            string(types.ModeAutoPilot),
		DurationMinutes: 20,
		CreatedAt:       createdAt,
	}
}

func TestAppendAndGet(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append(entry("s1", time.Now())); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Session s1" || got.Vibe != string(types.VibeHistorian) {
		t.Errorf("entry = %+v", got)
	}
}

func TestAppendReplacesSameID(t *testing.T) {
	s := openTestStore(t)
	e := entry("s1", time.Now())
	if err := s.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	e.Title = "Renamed"
	if err := s.Append(e); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Renamed" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestAppendRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Append(Entry{}); err == nil {
		t.Error("empty id accepted")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Append(entry(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].SessionID != "new" || entries[2].SessionID != "old" {
		t.Errorf("order = %s, %s, %s", entries[0].SessionID, entries[1].SessionID, entries[2].SessionID)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := openTestStore(t)
	s.Append(entry("s1", time.Now()))
	s.Append(entry("s2", time.Now()))

	if err := s.Delete("s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("s1"); !errors.Is(err, ErrNotFound) {
		t.Error("deleted entry still present")
	}
	// Deleting again is quiet.
	if err := s.Delete("s1"); err != nil {
		t.Errorf("repeat Delete: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := s.List()
	if len(entries) != 0 {
		t.Errorf("entries after clear = %+v", entries)
	}
}

func TestFromSessionOmitsVideo(t *testing.T) {
	sess := &types.Session{
		ID:        "s9",
		Vibe:      types.VibeJester,
		Mode:      types.ModeDirector,
		Duration:  types.DurationShort,
		CreatedAt: time.Now(),
		VideoRef:  "file:///tmp/huge.webm",
		Messages: []types.Message{
			{Role: types.RoleGuest, Text: "it all began in a garage somewhere far away from here"},
		},
	}
	e := FromSession(sess, "/archives/s9.zip")
	if e.SessionID != "s9" || e.MessageCount != 1 || e.ArchivePath != "/archives/s9.zip" {
		t.Errorf("entry = %+v", e)
	}
	if e.Title == "" {
		t.Error("title empty")
	}
}
