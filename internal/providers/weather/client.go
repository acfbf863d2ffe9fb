package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/homevoice/internal/config"
)

// Client summarizes OpenWeatherMap data into short spoken sentences.
type Client struct {
	http  *resty.Client
	city  string
	key   string
	units string
}

func NewClient(cfg *config.WeatherConfig, city string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(10 * time.Second),
		city:  city,
		key:   cfg.APIKey,
		units: cfg.Units,
	}
}

type currentResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

func (c *Client) Current(ctx context.Context) (string, error) {
	var out currentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     c.city,
			"appid": c.key,
			"units": c.units,
		}).
		SetResult(&out).
		Get("/data/2.5/weather")
	if err != nil {
		return "", fmt.Errorf("fetch current weather: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("weather api: http %d", resp.StatusCode())
	}

	desc := "unknown conditions"
	if len(out.Weather) > 0 {
		desc = out.Weather[0].Description
	}
	return fmt.Sprintf("Currently %s in %s, %.0f degrees, feels like %.0f.",
		desc, out.Name, out.Main.Temp, out.Main.FeelsLike), nil
}

func (c *Client) Tomorrow(ctx context.Context) (string, error) {
	out, err := c.forecast(ctx)
	if err != nil {
		return "", err
	}

	// The 3-hour forecast list: pick the midday slot of the next day.
	tomorrow := time.Now().AddDate(0, 0, 1)
	for _, slot := range out.List {
		ts := time.Unix(slot.Dt, 0)
		if ts.Day() == tomorrow.Day() && ts.Hour() >= 12 && ts.Hour() < 15 {
			desc := "unknown conditions"
			if len(slot.Weather) > 0 {
				desc = slot.Weather[0].Description
			}
			return fmt.Sprintf("Tomorrow around midday: %s, %.0f degrees.", desc, slot.Main.Temp), nil
		}
	}
	return "", fmt.Errorf("no forecast slot for tomorrow")
}

func (c *Client) Weekly(ctx context.Context) (string, error) {
	out, err := c.forecast(ctx)
	if err != nil {
		return "", err
	}
	if len(out.List) == 0 {
		return "", fmt.Errorf("empty forecast")
	}

	min, max := out.List[0].Main.Temp, out.List[0].Main.Temp
	descs := map[string]int{}
	for _, slot := range out.List {
		if slot.Main.Temp < min {
			min = slot.Main.Temp
		}
		if slot.Main.Temp > max {
			max = slot.Main.Temp
		}
		if len(slot.Weather) > 0 {
			descs[slot.Weather[0].Description]++
		}
	}

	dominant, best := "mixed conditions", 0
	for d, n := range descs {
		if n > best {
			dominant, best = d, n
		}
	}
	return fmt.Sprintf("The week ahead: mostly %s, between %.0f and %.0f degrees.",
		strings.ToLower(dominant), min, max), nil
}

func (c *Client) forecast(ctx context.Context) (*forecastResponse, error) {
	var out forecastResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     c.city,
			"appid": c.key,
			"units": c.units,
		}).
		SetResult(&out).
		Get("/data/2.5/forecast")
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather api: http %d", resp.StatusCode())
	}
	return &out, nil
}
