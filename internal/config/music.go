package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/homevoice/pkg/log"
)

type MusicConfig struct {
	BaseURL string `env:"SPOTIFY_BASE_URL" envDefault:"https://api.spotify.com/v1"`
	Token   string `env:"SPOTIFY_TOKEN"`
}

func NewMusicConfig(ctx context.Context) *MusicConfig {
	c := &MusicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Music config")
	}
	return c
}
