package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

const historyDepth = 10

// Engine offers proactive prompts based on the user's recent command
// history and the time of day. Each hint fires at most once per
// session; Reset is called on session teardown.
type Engine struct {
	log core.CommandLog

	mu              sync.Mutex
	eveningPrompted bool
	morningPrompted bool
	bedtimePrompted bool
	scenePrompted   bool
}

func NewEngine(cmdlog core.CommandLog) *Engine {
	return &Engine{log: cmdlog}
}

// Check returns a suggestion to speak after the current response, or
// false when there is nothing worth saying.
func (e *Engine) Check(ctx context.Context, userID string, now time.Time) (string, bool) {
	records, err := e.log.Recent(ctx, userID, historyDepth)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("failed to read command history for suggestions")
		return "", false
	}
	if len(records) == 0 {
		return "", false
	}

	count := func(substr string) int {
		n := 0
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.Command), substr) {
				n++
			}
		}
		return n
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.eveningPrompted && now.Hour() >= 22 {
		e.eveningPrompted = true
		return "It's getting late. Shall I dim the lights?", true
	}

	if !e.bedtimePrompted && count("bedtime") >= 3 {
		e.bedtimePrompted = true
		return "You've used bedtime mode a lot recently. Would you like to activate it now?", true
	}

	if !e.morningPrompted && count("weather") > 0 && now.Hour() >= 7 && now.Hour() <= 9 {
		e.morningPrompted = true
		return "Would you like the morning weather update?", true
	}

	if !e.scenePrompted && count("scene") > 0 && now.Hour() >= 21 {
		e.scenePrompted = true
		return "Should I start the evening scene?", true
	}

	return "", false
}

// Reset clears the once-per-session flags.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eveningPrompted = false
	e.morningPrompted = false
	e.bedtimePrompted = false
	e.scenePrompted = false
}
