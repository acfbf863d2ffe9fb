package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/homevoice/internal/service/conversation"
)

// PersonaHandler covers "mode X" and "personality X" commands. Changing
// the persona rebuilds the conversation's system turn.
type PersonaHandler struct {
	persona *conversation.Persona
	convo   *conversation.Context
}

func NewPersonaHandler(persona *conversation.Persona, convo *conversation.Context) *PersonaHandler {
	return &PersonaHandler{persona: persona, convo: convo}
}

func (h *PersonaHandler) Name() string { return "persona" }

func (h *PersonaHandler) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.HasPrefix(lower, "mode "):
		name := strings.TrimSpace(strings.TrimPrefix(lower, "mode"))
		mode, ok := conversation.ParseCharacterMode(name)
		if !ok {
			return "", false, nil
		}
		h.persona.SetMode(mode)
		h.convo.RefreshPersona()
		return fmt.Sprintf("Character mode set to %s. %s", mode, h.persona.DescribeMode()), true, nil

	case strings.HasPrefix(lower, "personality "):
		preset := strings.TrimSpace(strings.TrimPrefix(lower, "personality"))
		if !h.persona.ApplyPreset(preset) {
			return fmt.Sprintf("I don't know a %s personality.", preset), true, nil
		}
		h.convo.RefreshPersona()
		return fmt.Sprintf("Personality preset changed to %s.", preset), true, nil
	}

	return "", false, nil
}
