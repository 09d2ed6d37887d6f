// Package vibes defines the five host personas and builds the system
// instruction handed to the live session.
package vibes

import (
	"fmt"
	"strings"

	"github.com/monumento/studio/pkg/core/types"
)

// Persona bundles everything a vibe carries: the instruction that
// shapes the host, the synthesis voice, and the studio assets shown
// around it.
type Persona struct {
	Vibe          types.Vibe `json:"vibe"`
	Instruction   string     `json:"instruction"`
	Voice         string     `json:"voice"`
	AvatarURL     string     `json:"avatar_url"`
	BackgroundURL string     `json:"background_url"`
	PreviewURL    string     `json:"preview_url"`
	PreviewScript string     `json:"preview_script"`
}

var personas = map[types.Vibe]Persona{
	types.VibeHistorian: {
		Vibe:          types.VibeHistorian,
		Instruction:   `You are "The Historian". Tone: Warm, patient, nostalgic. Your goal is to document a life story. Opening: "Welcome to the Legacy Studio. It's an honor to document your journey. Shall we start at the beginning?"`,
		Voice:         "Kore",
		AvatarURL:     "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=crop&q=80&w=800",
		BackgroundURL: "https://images.unsplash.com/photo-1598488035139-bdbb2231ce04?auto=format&fit=crop&q=80&w=1920",
		PreviewURL:    "https://assets.mixkit.co/videos/preview/mixkit-man-working-in-a-professional-studio-34537-large.mp4",
		PreviewScript: "Hi, I'm The Historian. I'm honored to document your story. Every life is a library of wisdom waiting to be archived.",
	},
	types.VibeCelebrator: {
		Vibe:          types.VibeCelebrator,
		Instruction:   `You are "The Celebrator". Tone: High-energy, joyous, enthusiastic. Opening: "HAPPY BIRTHDAY! This is your special show! I'm so excited to hear all about your highlights this year!"`,
		Voice:         "Puck",
		AvatarURL:     "https://images.unsplash.com/photo-1544005313-94ddf0286df2?auto=format&fit=crop&q=80&w=800",
		BackgroundURL: "https://images.unsplash.com/photo-1514525253361-bee8718a300c?auto=format&fit=crop&q=80&w=1920",
		PreviewURL:    "https://assets.mixkit.co/videos/preview/mixkit-close-up-of-a-podcaster-talking-into-a-microphone-43187-large.mp4",
		PreviewScript: "Hey there! I'm The Celebrator! Ready to bring the energy? This is YOUR show, and we're going to make some noise!",
	},
	types.VibeJournalist: {
		Vibe:          types.VibeJournalist,
		Instruction:   `You are "The Journalist". Tone: Professional, inquisitive, direct. Opening: "Welcome to the Executive Suite. Let's dive straight into the vision and the road ahead."`,
		Voice:         "Zephyr",
		AvatarURL:     "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?auto=format&fit=crop&q=80&w=800",
		BackgroundURL: "https://images.unsplash.com/photo-1497366754035-f200968a6e72?auto=format&fit=crop&q=80&w=1920",
		PreviewURL:    "https://assets.mixkit.co/videos/preview/mixkit-serious-businessman-working-at-office-desk-42205-large.mp4",
		PreviewScript: "Good day. I'm The Journalist. We're here to get to the truth and explore the vision you've built for the future.",
	},
	types.VibeJester: {
		Vibe:          types.VibeJester,
		Instruction:   `You are "The Jester". Tone: Observational, witty, fun. Opening: "Welcome to the show! I've been told you're interesting, let's see if that's actually true, shall we?"`,
		Voice:         "Fenrir",
		AvatarURL:     "https://images.unsplash.com/photo-1492562080023-ab3db95bfbce?auto=format&fit=crop&q=80&w=800",
		BackgroundURL: "https://images.unsplash.com/photo-1589903308904-1010c2294adc?auto=format&fit=crop&q=80&w=1920",
		PreviewURL:    "https://assets.mixkit.co/videos/preview/mixkit-man-having-fun-at-a-party-with-friends-42588-large.mp4",
		PreviewScript: "Hey, I'm The Jester. They say I'm funny, but honestly, I'm just here to see if your life is actually more interesting than mine.",
	},
	types.VibeRoastMaster: {
		Vibe:          types.VibeRoastMaster,
		Instruction:   `You are "The Roast Master". Tone: Sarcastic, sharp, brutally honest but charismatic. Opening: "Oh look, a volunteer for the hot seat. I've got my notes ready. Hope your skin is thick. Ready to be roasted?"`,
		Voice:         "Charon",
		AvatarURL:     "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=crop&q=80&w=800",
		BackgroundURL: "https://images.unsplash.com/photo-1485872299829-c673f5194813?auto=format&fit=crop&q=80&w=1920",
		PreviewURL:    "https://assets.mixkit.co/videos/preview/mixkit-man-sitting-in-a-dark-room-with-smoke-42862-large.mp4",
		PreviewScript: "Listen up. I'm The Roast Master. I hope you've got thick skin, because I'm not here to hold your hand. Let's get to work.",
	},
}

// All lists every persona in presentation order.
func All() []Persona {
	order := []types.Vibe{
		types.VibeHistorian,
		types.VibeCelebrator,
		types.VibeJournalist,
		types.VibeJester,
		types.VibeRoastMaster,
	}
	out := make([]Persona, 0, len(order))
	for _, v := range order {
		out = append(out, personas[v])
	}
	return out
}

// Get looks up one persona.
func Get(vibe types.Vibe) (Persona, bool) {
	p, ok := personas[vibe]
	return p, ok
}

// BuildInstruction assembles the full system instruction for a live
// session from the persona, interview mode, optional director topics,
// and target duration.
func BuildInstruction(vibe types.Vibe, mode types.InterviewMode, topics []string, duration types.SessionDuration) (string, error) {
	p, ok := personas[vibe]
	if !ok {
		return "", fmt.Errorf("vibes: unknown vibe %q", vibe)
	}
	topicsStr := ""
	if len(topics) > 0 {
		topicsStr = fmt.Sprintf(" Topics: %s.", strings.Join(topics, ", "))
	}
	return fmt.Sprintf("%s. Mode: %s.%s Duration: %dmin. Start immediately.",
		p.Instruction, mode, topicsStr, duration), nil
}
