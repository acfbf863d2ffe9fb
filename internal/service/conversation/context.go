package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(getTokenizer().Encode(text, nil, nil))
}

const (
	DefaultTurnCap     = 20
	DefaultTokenBudget = 2048
)

// Context is the bounded dialogue history behind the conversational
// fallback. Turn 0 is always the system turn built from the persona;
// trimming never evicts it.
type Context struct {
	mu        sync.Mutex
	turns     []core.Turn
	turnCap   int
	budget    int
	completer core.Completer
	persona   *Persona

	lastInput string
	lastReply string

	// countFn is swappable in tests to avoid loading the BPE tables
	countFn func(string) int
}

func NewContext(completer core.Completer, persona *Persona, turnCap, tokenBudget int) *Context {
	if turnCap < 2 {
		turnCap = DefaultTurnCap
	}
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	c := &Context{
		turnCap:   turnCap,
		budget:    tokenBudget,
		completer: completer,
		persona:   persona,
		countFn:   countTokens,
	}
	c.turns = []core.Turn{c.systemTurn()}
	return c
}

func (c *Context) systemTurn() core.Turn {
	return core.Turn{Role: core.RoleSystem, Content: c.persona.Describe()}
}

// RefreshPersona rebuilds the system turn after a persona change.
func (c *Context) RefreshPersona() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns[0] = c.systemTurn()
}

func (c *Context) AddUserTurn(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(core.Turn{Role: core.RoleUser, Content: text})
}

func (c *Context) AddAssistantTurn(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.append(core.Turn{Role: core.RoleAssistant, Content: text})
}

// append must hold c.mu. Evicts the oldest non-system turn past the cap.
func (c *Context) append(t core.Turn) {
	c.turns = append(c.turns, t)
	for len(c.turns) > c.turnCap {
		c.turns = append(c.turns[:1], c.turns[2:]...)
	}
}

// IsRepeatedInput reports whether text matches the previous user input
// case-insensitively.
func (c *Context) IsRepeatedInput(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastInput != "" && strings.EqualFold(c.lastInput, text)
}

// Process runs one fallback round trip: append the user turn, complete
// over the full ordered history, append and cache the reply. A repeat
// of the previous input returns the cached reply without a completion
// call. On completion failure the user turn stays in history so a retry
// resumes with full context.
func (c *Context) Process(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastInput != "" && strings.EqualFold(c.lastInput, text) && c.lastReply != "" {
		log.FromCtx(ctx).Debug().Msg("repeated input, returning cached reply")
		return c.lastReply, nil
	}

	c.append(core.Turn{Role: core.RoleUser, Content: text})

	reply, err := c.completer.Complete(ctx, c.promptTurns())
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	c.append(core.Turn{Role: core.RoleAssistant, Content: reply})
	c.lastInput = text
	c.lastReply = reply
	return reply, nil
}

// promptTurns must hold c.mu. Returns the history to send, enforcing
// the token budget by dropping oldest non-system turns from the copy.
func (c *Context) promptTurns() []core.Turn {
	prompt := make([]core.Turn, len(c.turns))
	copy(prompt, c.turns)

	total := 0
	for _, t := range prompt {
		total += c.countFn(t.Content)
	}
	for total > c.budget && len(prompt) > 2 {
		total -= c.countFn(prompt[1].Content)
		prompt = append(prompt[:1], prompt[2:]...)
	}
	return prompt
}

// Reset clears all turns except a freshly rebuilt system turn.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = []core.Turn{c.systemTurn()}
	c.lastInput = ""
	c.lastReply = ""
}

func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Turns returns a copy of the current history.
func (c *Context) Turns() []core.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}
