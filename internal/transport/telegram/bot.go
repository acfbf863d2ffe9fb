package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/service/orchestrator"
	"github.com/sandevgo/homevoice/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"
	sourceName     = "telegram"
)

// Bot bridges the owner's Telegram chat into the assistant as a trusted
// text channel. Messages from anyone else are ignored. Everything the
// assistant speaks is mirrored to the owner.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	orch    *orchestrator.Orchestrator
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	orch *orchestrator.Orchestrator,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		orch:    orch,
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	snd := newSender(b)
	orch.AddResponseListener(func(text string) {
		if err := snd.sendMarkdown(ctx, tele.ChatID(bot.ownerID), text, true); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to mirror response to telegram")
		}
	})

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	log.FromCtx(ctx).Debug().Int64("chat", c.Chat().ID).Msg("telegram input")

	_ = c.Notify(tele.Typing)
	b.orch.SubmitText(sourceName, c.Text())
	return nil
}
