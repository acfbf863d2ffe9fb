package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"HOMEVOICE_RUNTIME_PATH" envDefault:".homevoice"`

	// Wake and session lifecycle
	WakePhrase         string `env:"WAKE_PHRASE" envDefault:"hey jarvis you there"`
	IdleTimeoutSeconds int    `env:"IDLE_TIMEOUT_SECONDS" envDefault:"60"`

	// Minimum level required to dispatch commands once authenticated
	CommandPermission string `env:"COMMAND_PERMISSION" envDefault:"admin"`

	// Conversation bounds
	ConversationCap   int `env:"CONVERSATION_CAP" envDefault:"20"`
	PromptTokenBudget int `env:"PROMPT_TOKEN_BUDGET" envDefault:"2048"`

	// Transport flags
	EnableConsole  bool   `env:"ENABLE_CONSOLE" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	VisualizerAddr string `env:"VISUALIZER_ADDR" envDefault:":8790"`

	City string `env:"HOME_CITY" envDefault:"New York"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// MinCommandPermission is fatal on a bad value at startup, never at
// dispatch time.
func (c AppConfig) MinCommandPermission(ctx context.Context) core.PermissionLevel {
	level, err := core.ParsePermissionLevel(c.CommandPermission)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid COMMAND_PERMISSION")
	}
	return level
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "homevoice.db")
}

func (c AppConfig) IsConsoleSelected() bool {
	return c.EnableConsole
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
