package voiceauth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

// Client asks the voiceprint service to classify an audio clip. The
// matching model is opaque; clips below the confidence floor come back
// as the unknown user.
type Client struct {
	http          *resty.Client
	minConfidence float64
}

func NewClient(cfg *config.VoiceConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.VoiceAuthURL).
			SetTimeout(10 * time.Second),
		minConfidence: 0.75,
	}
}

type identifyRequest struct {
	ClipID string `json:"clip_id"`
}

type identifyResponse struct {
	UserID     string  `json:"user_id"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Identify(ctx context.Context, clipID string) (core.Identity, error) {
	var out identifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(identifyRequest{ClipID: clipID}).
		SetResult(&out).
		Post("/identify")
	if err != nil {
		return core.Identity{}, fmt.Errorf("identify clip: %w", err)
	}
	if resp.IsError() {
		return core.Identity{}, fmt.Errorf("voice auth api: http %d", resp.StatusCode())
	}

	identity := core.Identity{UserID: out.UserID, Confidence: out.Confidence}
	if out.UserID == "" || out.Confidence < c.minConfidence {
		log.FromCtx(ctx).Debug().
			Str("user", out.UserID).
			Float64("confidence", out.Confidence).
			Msg("voiceprint match below confidence floor")
		identity.UserID = core.UnknownUser
	}
	return identity, nil
}
