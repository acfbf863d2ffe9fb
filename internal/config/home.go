package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/homevoice/pkg/log"
)

// HomeConfig covers the device integrations: SmartThings REST and the
// TV websocket remote.
type HomeConfig struct {
	SmartThingsBaseURL string `env:"SMARTTHINGS_BASE_URL" envDefault:"https://api.smartthings.com/v1"`
	SmartThingsToken   string `env:"SMARTTHINGS_TOKEN"`
	ThermostatDeviceID string `env:"THERMOSTAT_DEVICE_ID"`
	TVRemoteURL        string `env:"TV_REMOTE_URL" envDefault:"ws://192.168.1.50:8001/api/v2/channels/samsung.remote.control"`

	// Users with registered voiceprints, "user:level" pairs
	Users []string `env:"HOME_USERS" envSeparator:"," envDefault:"admin:admin"`
}

func NewHomeConfig(ctx context.Context) *HomeConfig {
	c := &HomeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Home config")
	}
	return c
}
