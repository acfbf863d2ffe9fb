package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/retry"
)

// Completer talks to any OpenAI-compatible chat completion endpoint
// (llama.cpp server, Ollama, a hosted API). Transient failures are
// retried with backoff; the reply is reduced to plain speakable text.
type Completer struct {
	baseProvider
	retrier *retry.Retrier
}

func NewCompleter(cfg *config.LLMConfig) *Completer {
	return &Completer{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		retrier:      retry.NewDefaultRetrier(),
	}
}

func (c *Completer) Complete(ctx context.Context, turns []core.Turn) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": turns,
	}

	var reply string
	err := c.retrier.Do(ctx, func() error {
		resp, err := c.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		reply, err = parseCompletion(resp)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}

func parseCompletion(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
