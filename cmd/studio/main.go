// Package main is the Monumento studio CLI: it records one podcast
// session with an AI host, archives it, and prints the episode
// timeline.
//
// Usage:
//
//	go run ./cmd/studio -vibe "The Historian" -mode "Auto-Pilot" -duration 20
//
// Environment variables:
//
//	GEMINI_API_KEY   - Required for the live host connection
//	MONUMENTO_API    - Optional backend base URL for cloud persistence
//	MONUMENTO_TOKEN  - Optional bearer token for the backend
//
// Press Ctrl-C to end the session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/monumento/studio/pkg/core/audio"
	"github.com/monumento/studio/pkg/core/live"
	"github.com/monumento/studio/pkg/core/replay"
	"github.com/monumento/studio/pkg/core/types"
	"github.com/monumento/studio/pkg/studio/backend"
	"github.com/monumento/studio/pkg/studio/history"
	"github.com/monumento/studio/pkg/studio/recording"
	"github.com/monumento/studio/pkg/studio/vibes"
)

const liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

func main() {
	_ = godotenv.Load()

	var (
		vibeName   = flag.String("vibe", string(types.VibeHistorian), "host persona")
		modeName   = flag.String("mode", string(types.ModeAutoPilot), "interview mode (Auto-Pilot or Director Mode)")
		duration   = flag.Int("duration", int(types.DurationMedium), "target episode length in minutes (5, 20, or 60)")
		topicsFlag = flag.String("topics", "", "comma-separated topics for the host to cover")
		archiveDir = flag.String("archive", defaultArchiveDir(), "directory for session archives")
		historyDB  = flag.String("history", defaultHistoryPath(), "local history database (empty disables)")
		model      = flag.String("model", "models/gemini-2.5-flash-native-audio-preview-09-2025", "live conversation model")
		debug      = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	vibe := types.Vibe(*vibeName)
	persona, ok := vibes.Get(vibe)
	if !ok {
		var names []string
		for _, p := range vibes.All() {
			names = append(names, string(p.Vibe))
		}
		log.Fatalf("Unknown vibe %q (choose one of: %s)", *vibeName, strings.Join(names, ", "))
	}

	var topics []string
	for _, t := range strings.Split(*topicsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	mode := types.InterviewMode(*modeName)
	instruction, err := vibes.BuildInstruction(vibe, mode, topics, types.SessionDuration(*duration))
	if err != nil {
		log.Fatalf("Failed to build instruction: %v", err)
	}

	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║              Monumento - AI Podcast Studio                 ║")
	fmt.Println("╠════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Host: %-52s║\n", persona.Vibe)
	fmt.Printf("║  Voice: %-51s║\n", persona.Voice)
	fmt.Printf("║  Mode: %-52s║\n", mode)
	fmt.Printf("║  Duration: %d minutes%*s║\n", *duration, 40-digits(*duration), "")
	fmt.Println("║                                                            ║")
	fmt.Println("║  Speak naturally. Press Ctrl-C to end the session.         ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nEnding session...")
		cancel()
	}()

	mic, speaker, cleanup := initAudio()
	defer cleanup()

	ch, err := live.Dial(ctx, liveEndpoint+"?key="+url.QueryEscape(apiKey), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	session := live.NewSession(live.SessionConfig{
		Model:             *model,
		SystemInstruction: instruction,
		Voice:             persona.Voice,
	}, ch, speaker)

	opts := []recording.Option{recording.WithLogger(logger)}
	if base := os.Getenv("MONUMENTO_API"); base != "" {
		cfg := backend.DefaultConfig()
		cfg.BaseURL = base
		cfg.AuthToken = os.Getenv("MONUMENTO_TOKEN")
		opts = append(opts, recording.WithBackend(backend.New(cfg)))
	}
	if *historyDB != "" {
		if err := os.MkdirAll(filepath.Dir(*historyDB), 0o755); err != nil {
			log.Fatalf("Failed to create history dir: %v", err)
		}
		store, err := history.Open(*historyDB)
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		defer store.Close()
		opts = append(opts, recording.WithHistory(store))
	}

	if *archiveDir != "" {
		if err := os.MkdirAll(*archiveDir, 0o755); err != nil {
			log.Fatalf("Failed to create archive dir: %v", err)
		}
	}

	rec := recording.New(recording.Config{
		Vibe:       vibe,
		Mode:       mode,
		Duration:   types.SessionDuration(*duration),
		Topics:     topics,
		ArchiveDir: *archiveDir,
	}, session, opts...)

	if err := rec.Start(ctx); err != nil {
		log.Fatalf("Failed to start recording: %v", err)
	}

	// Pump the microphone into the recorder in 20ms chunks.
	go func() {
		raw := make([]byte, audio.InputSampleRate*2/50)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			n := mic.Read(raw)
			if n == 0 {
				return
			}
			buf, err := audio.DecodeToBuffer(raw[:n], audio.InputSampleRate, 1)
			if err != nil {
				continue
			}
			if err := rec.WriteMic(buf.Data); err != nil {
				return
			}
		}
	}()

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	result, err := rec.Stop(stopCtx)
	if err != nil {
		log.Fatalf("Failed to finalize session: %v", err)
	}

	printSummary(result)
}

func printSummary(result *recording.Result) {
	s := result.Session
	fmt.Println()
	fmt.Printf("Session: %s\n", s.Title)
	fmt.Printf("  ID: %s\n", s.ID)
	if result.Persisted {
		fmt.Println("  Saved to cloud: yes")
	}
	if result.ArchivePath != "" {
		fmt.Printf("  Archive: %s\n", result.ArchivePath)
	}

	if len(s.Messages) == 0 {
		fmt.Println("  (no transcript)")
		return
	}

	fmt.Println("\nTimeline:")
	for _, seg := range replay.BuildSegments(s.Messages, s.Metadata.DurationMs) {
		fmt.Printf("  [%s] %s\n", formatOffset(seg.StartMs), seg.Summary)
	}

	fmt.Println("\nTranscript:")
	for _, m := range s.Messages {
		role := "GUEST"
		if m.Role == types.RoleHost {
			role = "HOST"
		}
		fmt.Printf("  [%s] %s: %s\n", formatOffset(m.RelativeOffsetMs), role, m.Text)
	}
}

func formatOffset(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func digits(n int) int {
	return len(fmt.Sprintf("%d", n))
}

func defaultArchiveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "archives"
	}
	return filepath.Join(home, "monumento", "archives")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, "monumento", "history.db")
}
