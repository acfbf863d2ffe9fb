package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/internal/service/memory"
)

// FactsHandler covers "remember X is Y" and the recall phrasings.
// Registered after the scene handler so scene phrases win.
type FactsHandler struct {
	facts *memory.Facts
}

func NewFactsHandler(facts *memory.Facts) *FactsHandler {
	return &FactsHandler{facts: facts}
}

func (h *FactsHandler) Name() string { return "facts" }

func (h *FactsHandler) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.HasPrefix(lower, "remember "):
		trimmed := strings.TrimSpace(strings.TrimPrefix(lower, "remember"))
		key, value, ok := strings.Cut(trimmed, " is ")
		if !ok {
			return "", false, nil
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if err := h.facts.Remember(ctx, key, value); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("I'll remember that %s is %s.", key, value), true, nil

	case strings.HasPrefix(lower, "what did i say about "):
		key := strings.TrimSpace(strings.TrimPrefix(lower, "what did i say about "))
		key = strings.TrimSuffix(key, "?")
		value, err := h.facts.Recall(ctx, key)
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Sprintf("I don't remember anything about %s.", key), true, nil
		}
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You told me %s should be %s.", key, value), true, nil

	case strings.HasPrefix(lower, "what is ") || strings.HasPrefix(lower, "what's "):
		key := strings.TrimPrefix(lower, "what is ")
		key = strings.TrimPrefix(key, "what's ")
		key = strings.TrimSuffix(strings.TrimSpace(key), "?")
		value, err := h.facts.Recall(ctx, key)
		if errors.Is(err, core.ErrNotFound) {
			// Not a remembered fact; let the conversational fallback try
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You told me %s is %s.", key, value), true, nil
	}

	return "", false, nil
}
