package orchestrator

import "github.com/sandevgo/homevoice/internal/core"

// Every input source publishes typed events into one channel consumed
// by the orchestrator loop, which is the only mutator of session state.
type event interface {
	isEvent()
}

// wakeEvent comes from the low-power wake recognizer.
type wakeEvent struct {
	detection core.WakeDetection
}

// textEvent is out-of-band input from a trusted text channel (local
// console, owner-gated telegram).
type textEvent struct {
	source string
	text   string
}

// utteranceEvent is a phrase recognized while dictation is active.
type utteranceEvent struct {
	utterance core.Utterance
}

// authResultEvent re-enters the loop with the outcome of wake-clip
// identification and permission resolution.
type authResultEvent struct {
	identity core.Identity
	level    core.PermissionLevel
	err      error
}

// verifiedEvent marks an utterance as attributed to the session's
// authorized speaker; it resets the idle timer.
type verifiedEvent struct {
	seq       uint64
	sessionID string
}

// resultEvent carries the dispatch outcome for ordered delivery.
type resultEvent struct {
	seq       uint64
	sessionID string
	response  string
	dropped   bool
	sleep     bool
	err       error
}

// idleEvent fires when the idle timer elapses; stale epochs are
// ignored.
type idleEvent struct {
	epoch uint64
}

func (wakeEvent) isEvent()       {}
func (textEvent) isEvent()       {}
func (utteranceEvent) isEvent()  {}
func (authResultEvent) isEvent() {}
func (verifiedEvent) isEvent()   {}
func (resultEvent) isEvent()     {}
func (idleEvent) isEvent()       {}
