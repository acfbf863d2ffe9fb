package handlers

import (
	"context"
	"fmt"
	"strings"
)

type Lights struct {
	svc LightsService
}

func NewLights(svc LightsService) *Lights {
	return &Lights{svc: svc}
}

func (h *Lights) Name() string { return "lights" }

func (h *Lights) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	// Only claim the phrase when it explicitly names a light or lamp
	on := strings.HasPrefix(lower, "turn on ")
	off := strings.HasPrefix(lower, "turn off ")
	if !on && !off {
		return "", false, nil
	}
	if !strings.Contains(lower, "light") && !strings.Contains(lower, "lamp") {
		return "", false, nil
	}

	target := strings.TrimSpace(lower[len("turn on "):])
	if off {
		target = strings.TrimSpace(lower[len("turn off "):])
	}
	target = strings.TrimPrefix(target, "the ")

	var found bool
	var err error
	if on {
		found, err = h.svc.TurnOn(ctx, target)
	} else {
		found, err = h.svc.TurnOff(ctx, target)
	}
	if err != nil {
		return "", false, err
	}
	if !found {
		return fmt.Sprintf("I couldn't find any lights called %s.", target), true, nil
	}

	verb := "on"
	if off {
		verb = "off"
	}
	return fmt.Sprintf("Okay, turned %s the %s.", verb, target), true, nil
}
