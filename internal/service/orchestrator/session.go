package orchestrator

import (
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/homevoice/internal/core"
)

// State is the orchestrator's position in the wake/auth/active cycle.
type State int

const (
	StateSleeping State = iota
	StateWakeDetected
	StateAuthenticating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateWakeDetected:
		return "wake_detected"
	case StateAuthenticating:
		return "authenticating"
	case StateActive:
		return "active"
	default:
		return "sleeping"
	}
}

// transitions defines the valid state graph. Sleeping is initial; there
// is no terminal state.
var transitions = map[State][]State{
	StateSleeping:       {StateWakeDetected},
	StateWakeDetected:   {StateAuthenticating, StateSleeping},
	StateAuthenticating: {StateActive, StateSleeping},
	StateActive:         {StateSleeping},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is the bounded period during which one identified user's
// commands are accepted. Owned exclusively by the orchestrator loop;
// workers receive copies.
type Session struct {
	ID           string
	UserID       string
	Permission   core.PermissionLevel
	StartedAt    time.Time
	LastActivity time.Time
}

func newSession(userID string, level core.PermissionLevel) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Permission:   level,
		StartedAt:    now,
		LastActivity: now,
	}
}

// Touch records legitimate activity for the idle timeout.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}
