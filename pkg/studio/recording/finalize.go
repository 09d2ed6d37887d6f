package recording

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/monumento/studio/pkg/core/audio"
	"github.com/monumento/studio/pkg/core/types"
	"github.com/monumento/studio/pkg/studio/archive"
	"github.com/monumento/studio/pkg/studio/backend"
	"github.com/monumento/studio/pkg/studio/history"
)

// Result is what a finished recording produced.
type Result struct {
	Session     *types.Session
	ArchivePath string
	// Persisted is true when the cloud save landed; the session id is
	// then the service's id.
	Persisted bool
}

func (r *Recorder) finalize(ctx context.Context, now time.Time) (*Result, error) {
	session := &types.Session{
		ID:        uuid.NewString(),
		Vibe:      r.config.Vibe,
		Mode:      r.config.Mode,
		Duration:  r.config.Duration,
		CreatedAt: r.start,
		EndedAt:   now,
		Messages:  r.agg.Messages(),
		Metadata: types.SessionMetadata{
			CameraEvents: r.detector.ExportEvents(),
			LayoutEvents: r.layouts.ExportEvents(),
			DurationMs:   now.Sub(r.start).Milliseconds(),
		},
	}
	session.Title = session.SummaryTitle()

	result := &Result{Session: session}

	if r.backend != nil {
		if err := r.persist(ctx, session); err != nil {
			// Cloud persistence is best effort, the local record stands.
			r.logger.Warn("cloud save failed, keeping session local", "error", err)
		} else {
			result.Persisted = true
		}
	}

	if r.config.ArchiveDir != "" {
		var media bytes.Buffer
		if err := r.mixer.Persist(&media); err != nil {
			r.logger.Warn("mixdown failed", "error", err)
		}
		path, err := archive.WriteFile(r.config.ArchiveDir, archive.Bundle{
			Session:   session,
			Media:     media.Bytes(),
			MediaName: "media.wav",
		})
		if err != nil {
			r.logger.Warn("archive write failed", "error", err)
		} else {
			result.ArchivePath = path
			session.VideoRef = path
		}
	}

	if r.history != nil {
		if err := r.history.Append(history.FromSession(session, result.ArchivePath)); err != nil {
			r.logger.Warn("history append failed", "error", err)
		}
	}

	r.logger.Info("recording finalized",
		"session_id", session.ID,
		"messages", len(session.Messages),
		"persisted", result.Persisted,
		"archive", result.ArchivePath)
	return result, nil
}

// persist saves the session and its messages to the service. On
// success the service-issued id supersedes the local one.
func (r *Recorder) persist(ctx context.Context, session *types.Session) error {
	created, err := r.backend.CreateSession(ctx, backend.SessionRequest{
		Vibe:            string(session.Vibe),
		Mode:            string(session.Mode),
		DurationMinutes: int(session.Duration),
		Metadata: map[string]any{
			"animateAvatar": r.config.AnimateAvatar,
		},
	})
	if err != nil {
		return err
	}

	savedIDs := make([]string, len(session.Messages))
	for i, m := range session.Messages {
		saved, err := r.backend.CreateMessage(ctx, created.ID, backend.MessageRequest{
			Role:           backend.WireRole(m.Role),
			Text:           m.Text,
			RelativeOffset: m.RelativeOffsetMs,
		})
		if err != nil {
			return err
		}
		savedIDs[i] = saved.ID
	}

	if r.config.AnimateAvatar {
		r.uploadHostAudio(ctx, created.ID, savedIDs, session)
	}

	session.ID = created.ID
	return nil
}

// uploadHostAudio ships each host message's buffered narration. A
// failed upload skips that message, the rest still go.
func (r *Recorder) uploadHostAudio(ctx context.Context, sessionID string, messageIDs []string, session *types.Session) {
	r.mu.Lock()
	buffers := make(map[int][]byte, len(r.hostAudio))
	for idx, buf := range r.hostAudio {
		buffers[idx] = buf.Bytes()
	}
	r.mu.Unlock()

	for idx, pcm := range buffers {
		if len(pcm) == 0 || idx >= len(messageIDs) {
			continue
		}
		var wav bytes.Buffer
		if err := audio.WriteWAV(&wav, pcm, audio.OutputConfig()); err != nil {
			r.logger.Warn("narration encode failed", "message_index", idx, "error", err)
			continue
		}
		url, err := r.backend.UploadAudio(ctx, sessionID, messageIDs[idx], wav.Bytes())
		if err != nil {
			r.logger.Warn("narration upload failed", "message_index", idx, "error", err)
			continue
		}
		if _, err := r.backend.UpdateMessageAudio(ctx, sessionID, messageIDs[idx], url); err != nil {
			r.logger.Warn("narration attach failed", "message_index", idx, "error", err)
			continue
		}
		session.Messages[idx].AudioRef = url
	}
}

// hostMeter estimates the host's audible level at a given instant
// from the chunks the scheduler queued. Chunks arrive in bursts, so
// the meter mirrors the playback pacing: each chunk extends the
// audible window by its duration, and levels decay to silence once
// the window passes.
type hostMeter struct {
	level float64
	until time.Time
}

func (m *hostMeter) observe(pcm []byte, duration time.Duration, now time.Time) {
	if m.until.Before(now) {
		m.until = now
	}
	m.until = m.until.Add(duration)
	m.level = audio.Level(pcm)
}

func (m *hostMeter) flush(now time.Time) {
	m.until = now
	m.level = 0
}

func (m *hostMeter) currentLevel(now time.Time) float64 {
	if now.After(m.until) {
		return 0
	}
	return m.level
}
