package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/homevoice/pkg/log"
)

type WeatherConfig struct {
	BaseURL string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org"`
	APIKey  string `env:"WEATHER_API_KEY"`
	Units   string `env:"WEATHER_UNITS" envDefault:"metric"`
}

func NewWeatherConfig(ctx context.Context) *WeatherConfig {
	c := &WeatherConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Weather config")
	}
	return c
}
