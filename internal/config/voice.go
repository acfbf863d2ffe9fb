package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/homevoice/pkg/log"
)

// VoiceConfig points the core at the opaque speech collaborators: the
// recognition gateway, the voiceprint classifier, and the synthesizer.
type VoiceConfig struct {
	SpeechGatewayURL string `env:"SPEECH_GATEWAY_URL" envDefault:"ws://localhost:8765/events"`
	VoiceAuthURL     string `env:"VOICE_AUTH_URL" envDefault:"http://localhost:8766"`
	TTSBaseURL       string `env:"TTS_BASE_URL" envDefault:"http://localhost:8767"`
}

func NewVoiceConfig(ctx context.Context) *VoiceConfig {
	c := &VoiceConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Voice config")
	}
	return c
}
