package core

import (
	"context"
	"time"
)

// SpeakerIdentifier classifies an audio clip into a user identity.
// The matching algorithm is opaque to the core.
type SpeakerIdentifier interface {
	Identify(ctx context.Context, clipID string) (Identity, error)
}

// PermissionResolver maps a user identity to an authorization level.
// Unknown users resolve to PermissionGuest.
type PermissionResolver interface {
	Resolve(ctx context.Context, userID string) (PermissionLevel, error)
}

// Voice is fire-and-forget speech output. Speak never blocks on audio
// playback; delivery order follows call order.
type Voice interface {
	Speak(ctx context.Context, text string)
}

// Completer is the language-model completion call behind the
// conversational fallback.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// ClipCapture produces a short audio buffer reference around a moment
// in time, used for voice authentication.
type ClipCapture interface {
	Capture(ctx context.Context, around time.Time) (string, error)
}

// SpeechGateway is the opaque recognition engine: a wake-phrase stream,
// an utterance stream, and start/stop control for both modes.
// Starting a mode that is already running returns ErrRecognizerBusy.
type SpeechGateway interface {
	ClipCapture

	WakeDetections() <-chan WakeDetection
	Utterances() <-chan Utterance

	StartWake(ctx context.Context) error
	StopWake(ctx context.Context) error
	StartDictation(ctx context.Context) error
	StopDictation(ctx context.Context) error
}

// CommandHandler is one capability in the dispatch chain. Handle returns
// matched=false when the input is not relevant to this handler.
type CommandHandler interface {
	Name() string
	Handle(ctx context.Context, input string) (response string, matched bool, err error)
}

// StatusBroadcaster pushes coarse assistant states (Idle, Listening,
// Processing, Speaking) to any attached front end.
type StatusBroadcaster interface {
	Broadcast(state string)
}

// FactsRepository stores remembered key/value facts and scene
// definitions. Recall returns ErrNotFound for missing keys.
type FactsRepository interface {
	Remember(ctx context.Context, key, value string) error
	Recall(ctx context.Context, key string) (string, error)
	Forget(ctx context.Context, key string) error
}

// CommandLog records dispatched commands per user for the suggestion
// heuristics.
type CommandLog interface {
	Append(ctx context.Context, userID, command string) error
	Recent(ctx context.Context, userID string, limit int) ([]CommandRecord, error)
}
