package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/pkg/log"
)

const queueDepth = 32

// Client speaks through the synthesizer service. Speak is
// fire-and-forget: requests are queued and a single worker submits
// them, so phrases play in the order Speak was called even though the
// caller never waits.
type Client struct {
	http  *resty.Client
	queue chan request
}

type request struct {
	ctx  context.Context
	text string
}

func NewClient(cfg *config.VoiceConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.TTSBaseURL).
			SetTimeout(30 * time.Second),
		queue: make(chan request, queueDepth),
	}
}

// Start runs the speech worker until ctx is cancelled.
func (c *Client) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-c.queue:
			c.submit(req)
		}
	}
}

func (c *Client) Shutdown(ctx context.Context) error {
	return nil
}

// Speak enqueues text for synthesis. A full queue drops the phrase
// rather than blocking the caller.
func (c *Client) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	select {
	case c.queue <- request{ctx: ctx, text: text}:
	default:
		log.FromCtx(ctx).Warn().Msg("speech queue full, phrase dropped")
	}
}

type speakPayload struct {
	Text string `json:"text"`
}

func (c *Client) submit(req request) {
	logger := log.FromCtx(req.ctx)

	resp, err := c.http.R().
		SetContext(req.ctx).
		SetBody(speakPayload{Text: req.text}).
		Post("/speak")
	if err != nil {
		logger.Error().Err(err).Msg("speech synthesis failed")
		return
	}
	if resp.IsError() {
		logger.Error().Err(fmt.Errorf("http %d", resp.StatusCode())).Msg("speech synthesis failed")
		return
	}
	logger.Debug().Int("chars", len(req.text)).Msg("phrase synthesized")
}
