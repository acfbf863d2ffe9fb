package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/internal/service/memory"
)

type Scene struct {
	facts  *memory.Facts
	runner SceneRunner
}

func NewScene(facts *memory.Facts, runner SceneRunner) *Scene {
	return &Scene{facts: facts, runner: runner}
}

func (h *Scene) Name() string { return "scene" }

func (h *Scene) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.HasPrefix(lower, "remember scene "):
		trimmed := strings.TrimSpace(strings.TrimPrefix(lower, "remember scene"))
		name, definition, ok := strings.Cut(trimmed, " is ")
		if !ok {
			return "Tell me the scene as: remember scene name is definition.", true, nil
		}
		if err := h.facts.RememberScene(ctx, name, strings.TrimSpace(definition)); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Scene %s saved.", strings.TrimSpace(name)), true, nil

	case strings.HasPrefix(lower, "run scene "):
		name := strings.TrimSpace(strings.TrimPrefix(lower, "run scene"))
		definition, err := h.facts.RecallScene(ctx, name)
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Sprintf("Scene %s not found.", name), true, nil
		}
		if err != nil {
			return "", false, err
		}
		if err := h.runner.Execute(ctx, definition); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Executing the %s scene.", name), true, nil

	case strings.HasPrefix(lower, "what is the ") && strings.Contains(lower, "scene"):
		name := strings.TrimSpace(strings.TrimPrefix(lower, "what is the "))
		name = strings.TrimSpace(strings.TrimSuffix(name, "scene"))
		definition, err := h.facts.RecallScene(ctx, name)
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Sprintf("Scene %s not found.", name), true, nil
		}
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Scene %s includes: %s.", name, definition), true, nil
	}

	return "", false, nil
}
