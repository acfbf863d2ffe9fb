package dispatch

import (
	"context"
	"fmt"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

// Chain routes an utterance through the registered handlers in fixed
// order; the first handler that matches wins. The fallback terminates
// the chain and must always match, so Dispatch always produces a
// response. Registration order is part of the contract.
type Chain struct {
	handlers []core.CommandHandler
}

func NewChain(fallback core.CommandHandler, handlers ...core.CommandHandler) *Chain {
	return &Chain{handlers: append(append([]core.CommandHandler{}, handlers...), fallback)}
}

// Dispatch returns the winning handler's response. A handler error
// aborts the chain; callers treat it as recoverable.
func (c *Chain) Dispatch(ctx context.Context, input string) (string, error) {
	logger := log.FromCtx(ctx)

	for _, h := range c.handlers {
		resp, matched, err := h.Handle(ctx, input)
		if err != nil {
			return "", fmt.Errorf("handler %s: %w", h.Name(), err)
		}
		if !matched {
			continue
		}
		logger.Debug().Str("handler", h.Name()).Msg("command dispatched")
		return resp, nil
	}

	// Unreachable as long as the fallback matches everything.
	return "", fmt.Errorf("no handler matched input")
}

// Handlers exposes the registration order for tests and startup logs.
func (c *Chain) Handlers() []string {
	names := make([]string, 0, len(c.handlers))
	for _, h := range c.handlers {
		names = append(names, h.Name())
	}
	return names
}
