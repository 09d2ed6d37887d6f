package vibes

import (
	"strings"
	"testing"

	"github.com/monumento/studio/pkg/core/types"
)

func TestAllPersonasComplete(t *testing.T) {
	all := All()
	if len(all) != 5 {
		t.Fatalf("got %d personas, want 5", len(all))
	}
	voices := map[string]bool{}
	for _, p := range all {
		if p.Instruction == "" || p.Voice == "" || p.PreviewScript == "" {
			t.Errorf("%s persona incomplete: %+v", p.Vibe, p)
		}
		if voices[p.Voice] {
			t.Errorf("voice %s assigned twice", p.Voice)
		}
		voices[p.Voice] = true
	}
}

func TestVoiceMapping(t *testing.T) {
	tests := []struct {
		vibe  types.Vibe
		voice string
	}{
		{types.VibeHistorian, "Kore"},
		{types.VibeCelebrator, "Puck"},
		{types.VibeJournalist, "Zephyr"},
		{types.VibeJester, "Fenrir"},
		{types.VibeRoastMaster, "Charon"},
	}
	for _, tt := range tests {
		p, ok := Get(tt.vibe)
		if !ok {
			t.Fatalf("missing persona %s", tt.vibe)
		}
		if p.Voice != tt.voice {
			t.Errorf("%s voice = %s, want %s", tt.vibe, p.Voice, tt.voice)
		}
	}
}

func TestBuildInstruction(t *testing.T) {
	got, err := BuildInstruction(types.VibeJournalist, types.ModeDirector, []string{"funding", "hiring"}, types.DurationMedium)
	if err != nil {
		t.Fatalf("BuildInstruction: %v", err)
	}
	for _, want := range []string{
		`You are "The Journalist"`,
		"Mode: Director Mode.",
		" Topics: funding, hiring.",
		"Duration: 20min.",
		"Start immediately.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q:\n%s", want, got)
		}
	}
}

func TestBuildInstructionNoTopics(t *testing.T) {
	got, err := BuildInstruction(types.VibeHistorian, types.ModeAutoPilot, nil, types.DurationShort)
	if err != nil {
		t.Fatalf("BuildInstruction: %v", err)
	}
	if strings.Contains(got, "Topics:") {
		t.Errorf("instruction mentions topics with none set:\n%s", got)
	}
	if !strings.Contains(got, "Mode: Auto-Pilot. Duration: 5min.") {
		t.Errorf("instruction = %s", got)
	}
}

func TestBuildInstructionUnknownVibe(t *testing.T) {
	if _, err := BuildInstruction("The Mime", types.ModeAutoPilot, nil, types.DurationShort); err == nil {
		t.Error("unknown vibe accepted")
	}
}
