package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/service/orchestrator"
	"github.com/sandevgo/homevoice/pkg/log"
)

const sourceName = "console"

// Console is the local text front end. Typed lines feed the
// orchestrator as a trusted channel; everything the assistant speaks is
// echoed to the terminal.
type Console struct {
	cfg  *config.AppConfig
	orch *orchestrator.Orchestrator
	rl   *readline.Instance
}

func NewConsole(orch *orchestrator.Orchestrator, cfg *config.AppConfig) (*Console, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	c := &Console{cfg: cfg, orch: orch, rl: rl}
	orch.AddResponseListener(func(text string) {
		fmt.Fprintf(rl.Stdout(), "%s\n", text)
	})
	return c, nil
}

func (c *Console) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("console started. Type the wake phrase to begin, 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		c.orch.SubmitText(sourceName, line)
	}
}

func (c *Console) Shutdown(ctx context.Context) error {
	return c.rl.Close()
}
