package handlers

import (
	"context"
	"strings"

	"github.com/sandevgo/homevoice/internal/service/conversation"
)

type Weather struct {
	weather WeatherService
	persona *conversation.Persona
}

func NewWeather(weather WeatherService, persona *conversation.Persona) *Weather {
	return &Weather{weather: weather, persona: persona}
}

func (h *Weather) Name() string { return "weather" }

func (h *Weather) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)
	if !strings.Contains(lower, "weather") && !strings.Contains(lower, "forecast") && !strings.Contains(lower, "outside") {
		return "", false, nil
	}

	var summary string
	var err error
	switch {
	case strings.Contains(lower, "tomorrow"):
		summary, err = h.weather.Tomorrow(ctx)
	case strings.Contains(lower, "week"):
		summary, err = h.weather.Weekly(ctx)
	default:
		summary, err = h.weather.Current(ctx)
	}
	if err != nil {
		return "", false, err
	}

	// Storms and grey skies shade the persona's delivery
	h.persona.AdjustMoodFromWeather(summary)
	return summary, true, nil
}
