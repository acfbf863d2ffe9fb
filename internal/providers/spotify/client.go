package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/homevoice/internal/config"
)

// Client controls playback on the user's active Spotify device through
// the Web API player endpoints.
type Client struct {
	http *resty.Client
}

func NewClient(cfg *config.MusicConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetAuthToken(cfg.Token).
			SetTimeout(10 * time.Second),
	}
}

func (c *Client) Play(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/play")
}

func (c *Client) Pause(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/pause")
}

func (c *Client) Next(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/next")
}

func (c *Client) Previous(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, "/me/player/previous")
}

func (c *Client) command(ctx context.Context, method, path string) error {
	resp, err := c.http.R().SetContext(ctx).Execute(method, path)
	if err != nil {
		return fmt.Errorf("player command %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("spotify api: http %d", resp.StatusCode())
	}
	return nil
}

type nowPlayingResponse struct {
	Item struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"item"`
}

// CurrentTrack returns a spoken now-playing line. Spotify answers 204
// when nothing is playing.
func (c *Client) CurrentTrack(ctx context.Context) (string, error) {
	var out nowPlayingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/player/currently-playing")
	if err != nil {
		return "", fmt.Errorf("fetch current track: %w", err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return "Nothing is playing right now.", nil
	}
	if resp.IsError() {
		return "", fmt.Errorf("spotify api: http %d", resp.StatusCode())
	}
	if out.Item.Name == "" {
		return "Nothing is playing right now.", nil
	}

	var artists []string
	for _, a := range out.Item.Artists {
		artists = append(artists, a.Name)
	}
	if len(artists) == 0 {
		return fmt.Sprintf("Now playing %s.", out.Item.Name), nil
	}
	return fmt.Sprintf("Now playing %s by %s.", out.Item.Name, strings.Join(artists, ", ")), nil
}
