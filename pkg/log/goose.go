package log

import (
	"context"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

type gooseLogger struct {
	logger *zerolog.Logger
}

// NewGooseLoggerFromCtx adapts the context logger to goose's interface
// so migration output shares the process log format.
func NewGooseLoggerFromCtx(ctx context.Context) goose.Logger {
	return &gooseLogger{logger: FromCtx(ctx)}
}

func (g *gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func (g *gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
