package core

import "time"

const (
	AssistantName = "HomeVoice"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Utterance is a recognized phrase captured while dictation is active.
// Immutable once produced by the recognizer. ClipID references the audio
// buffer held by the speech gateway for speaker re-identification.
type Utterance struct {
	Text   string
	ClipID string
	At     time.Time
}

// WakeDetection is emitted by the low-power wake recognizer.
type WakeDetection struct {
	Text   string
	ClipID string
	At     time.Time
}

const UnknownUser = "unknown"

// Identity is the result of classifying an audio clip against known
// voiceprints. UserID is "unknown" when no voiceprint matched.
type Identity struct {
	UserID     string
	Confidence float64
}

// Known reports whether the clip matched a registered voiceprint.
func (i Identity) Known() bool {
	return i.UserID != "" && i.UserID != UnknownUser
}

// CommandRecord is one logged command for a user.
type CommandRecord struct {
	UserID  string
	Command string
	At      time.Time
}
