package handlers

import (
	"context"

	"github.com/sandevgo/homevoice/internal/service/conversation"
)

// ChatFallback is the terminal handler: it always matches, routing
// anything the device handlers declined into the bounded conversation.
type ChatFallback struct {
	convo *conversation.Context
}

func NewChatFallback(convo *conversation.Context) *ChatFallback {
	return &ChatFallback{convo: convo}
}

func (h *ChatFallback) Name() string { return "chat" }

func (h *ChatFallback) Handle(ctx context.Context, input string) (string, bool, error) {
	reply, err := h.convo.Process(ctx, input)
	if err != nil {
		return "", true, err
	}
	return reply, true, nil
}
