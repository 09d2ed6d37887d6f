// Package types holds the shared vocabulary of the studio: speakers,
// layouts, vibes, and the session/message records every other package
// passes around.
package types

// Speaker identifies a participant on the recording.
type Speaker string

const (
	SpeakerNone  Speaker = ""
	SpeakerGuest Speaker = "guest"
	SpeakerHost  Speaker = "host"
)

// Role attributes a transcript message to one side of the conversation.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// Vibe selects the host persona for a session.
type Vibe string

const (
	VibeHistorian   Vibe = "The Historian"
	VibeCelebrator  Vibe = "The Celebrator"
	VibeJournalist  Vibe = "The Journalist"
	VibeJester      Vibe = "The Jester"
	VibeRoastMaster Vibe = "The Roast Master"
)

// InterviewMode controls who drives the conversation.
type InterviewMode string

const (
	// ModeAutoPilot lets the host lead the interview with its own questions.
	ModeAutoPilot InterviewMode = "Auto-Pilot"
	// ModeDirector has the host follow the guest's direction.
	ModeDirector InterviewMode = "Director Mode"
)

// LayoutMode is the on-canvas arrangement of the two participants.
type LayoutMode string

const (
	LayoutDefault       LayoutMode = "DEFAULT"
	LayoutContentShared LayoutMode = "CONTENT_SHARED"
	LayoutScreenShare   LayoutMode = "SCREEN_SHARE"
)

// SessionDuration is the target episode length in minutes.
type SessionDuration int

const (
	DurationShort  SessionDuration = 5
	DurationMedium SessionDuration = 20
	DurationLong   SessionDuration = 60
)
