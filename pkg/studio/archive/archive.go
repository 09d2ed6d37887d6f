// Package archive packages a finished session into a single ZIP
// bundle: the recorded media, the full session metadata, a plain-text
// transcript, and a README describing the contents.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/monumento/studio/pkg/core/types"
)

// Bundle is the input to Write: the session record plus the recorded
// media bytes. Media may be empty when the recording failed; the
// transcript and metadata are still archived.
type Bundle struct {
	Session   *types.Session
	Media     []byte
	MediaName string
}

// Filename derives the bundle's conventional file name.
func Filename(sessionID string) string {
	return fmt.Sprintf("monumento_session_%s.zip", sessionID)
}

// Write streams the ZIP bundle to w.
func Write(w io.Writer, b Bundle) error {
	if b.Session == nil {
		return fmt.Errorf("archive: nil session")
	}
	zw := zip.NewWriter(w)

	if len(b.Media) > 0 {
		name := b.MediaName
		if name == "" {
			name = "media.wav"
		}
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("archive: add media: %w", err)
		}
		if _, err := f.Write(b.Media); err != nil {
			return fmt.Errorf("archive: write media: %w", err)
		}
	}

	meta, err := json.MarshalIndent(b.Session, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: marshal session: %w", err)
	}
	if err := addFile(zw, "metadata.json", meta); err != nil {
		return err
	}
	if err := addFile(zw, "transcript.txt", []byte(Transcript(b.Session.Messages))); err != nil {
		return err
	}
	if err := addFile(zw, "README.md", []byte(readme(b))); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	return nil
}

// WriteFile writes the bundle to dir under the conventional name and
// returns the full path.
func WriteFile(dir string, b Bundle) (string, error) {
	if b.Session == nil {
		return "", fmt.Errorf("archive: nil session")
	}
	path := filepath.Join(dir, Filename(b.Session.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("archive: create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, b); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Transcript renders messages as timestamped plain text, one blank
// line between entries.
func Transcript(messages []types.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "GUEST"
		if m.Role == types.RoleHost {
			speaker = "HOST"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format("3:04:05 PM"), speaker, m.Text))
	}
	return strings.Join(lines, "\n\n")
}

func addFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("archive: add %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

func readme(b Bundle) string {
	s := b.Session
	mediaLine := ""
	if len(b.Media) > 0 {
		name := b.MediaName
		if name == "" {
			name = "media.wav"
		}
		mediaLine = fmt.Sprintf("- %s - Full session recording\n", name)
	}
	return fmt.Sprintf(`# Monumento Session Archive

## Session Details
- ID: %s
- Host: %s
- Mode: %s
- Duration: %d minutes
- Date: %s

## Files Included
%s- transcript.txt - Plain text transcript with timestamps
- metadata.json - Complete session data (JSON format)

Generated by Monumento - AI Podcast Studio
https://monumento.app
`, s.ID, s.Vibe, s.Mode, s.Duration, s.CreatedAt.Local().Format("Jan 2, 2006 3:04:05 PM"), mediaLine)
}
