// Package summarize calls an external OpenAI-compatible chat
// completions API to produce a summary of a transcript.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Mave-full/konspektbot/internal/config"
	"github.com/Mave-full/konspektbot/internal/domain"
)

// Summarizer produces a summary for transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// chatMessage is one message in a chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to a chat completions endpoint over HTTP with bearer
// authentication.
type Client struct {
	cfg        config.SummaryConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a client with the request timeout taken from
// configuration.
func NewClient(cfg config.SummaryConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:     logger.With("component", "summarize"),
	}
}

// Summarize sends the prompt plus transcript to the API and returns the
// first choice's content. Any non-200 response is surfaced with the
// status code and body verbatim.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "user", Content: c.cfg.Prompt + transcript},
		},
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &domain.SummarizationError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &domain.SummarizationError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.SummarizationError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.SummarizationError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("summarization request rejected",
			"status", resp.StatusCode, "body_size", len(respBody))
		return "", &domain.SummarizationError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &domain.SummarizationError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &domain.SummarizationError{Err: fmt.Errorf("response contains no choices")}
	}

	return parsed.Choices[0].Message.Content, nil
}
