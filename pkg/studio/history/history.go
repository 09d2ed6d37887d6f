// Package history keeps a local record of finished sessions so the
// studio works offline. Only summaries are stored; the recorded video
// lives in the archive bundle, not the database.
package history

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/monumento/studio/pkg/core/types"
)

// ErrNotFound is returned when a session id is not in the history.
var ErrNotFound = errors.New("history: session not found")

// Entry is one finished session. The video reference is deliberately
// absent: archives are large and belong on disk.
type Entry struct {
	SessionID       string    `json:"session_id" gorm:"primaryKey"`
	Title           string    `json:"title"`
	Vibe            string    `json:"vibe"`
	Mode            string    `json:"mode"`
	DurationMinutes int       `json:"duration_minutes"`
	MessageCount    int       `json:"message_count"`
	ArchivePath     string    `json:"archive_path"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName keeps the table name stable across gorm versions.
func (Entry) TableName() string { return "session_history" }

// Store is the sqlite-backed history.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the history database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// FromSession builds a history entry from a finalized session.
func FromSession(s *types.Session, archivePath string) Entry {
	return Entry{
		SessionID:       s.ID,
		Title:           s.SummaryTitle(),
		Vibe:            string(s.Vibe),
		Mode:            string(s.Mode),
		DurationMinutes: int(s.Duration),
		MessageCount:    len(s.Messages),
		ArchivePath:     archivePath,
		CreatedAt:       s.CreatedAt,
	}
}

// Append records a session, replacing any entry with the same id.
func (s *Store) Append(entry Entry) error {
	if entry.SessionID == "" {
		return errors.New("history: entry missing session id")
	}
	if err := s.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Get fetches one entry by session id.
func (s *Store) Get(sessionID string) (Entry, error) {
	var entry Entry
	err := s.db.First(&entry, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("history: get: %w", err)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	if err := s.db.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return entries, nil
}

// Delete removes one entry. Missing ids are not an error.
func (s *Store) Delete(sessionID string) error {
	if err := s.db.Delete(&Entry{}, "session_id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("history: delete: %w", err)
	}
	return nil
}

// Clear wipes the history.
func (s *Store) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
