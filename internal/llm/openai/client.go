// Package openai implements llm.Completer on the OpenAI chat-completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/example/invoice-scanner/internal/llm"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string  // default https://api.openai.com/v1
	Model       string  // default gpt-3.5-turbo
	Temperature float64 // 0..2
	MaxTokens   int64   // completion token ceiling, default 2000
}

var _ llm.Completer = (*Client)(nil)

// Client sends chat completions. The SDK's automatic retries are disabled.
type Client struct {
	cfg    Config
	client oai.Client
	logger *logrus.Logger
}

// NewClient creates a Client, filling in defaults for empty fields. A nil
// logger discards output.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	client := oai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	)

	return &Client{cfg: cfg, client: client, logger: logger}
}

// Complete implements llm.Completer
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := c.logger.WithFields(logrus.Fields{
		"req_id": rid,
		"model":  c.cfg.Model,
	})

	log.WithFields(logrus.Fields{
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"prompt_len":  len(req.User),
	}).Debug("Sending chat completion request")

	messages := []oai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, oai.SystemMessage(req.System))
	}
	messages = append(messages, oai.UserMessage(req.User))

	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: oai.Float(c.cfg.Temperature),
		MaxTokens:   oai.Int(c.cfg.MaxTokens),
	})
	if err != nil {
		fields := logrus.Fields{"elapsed_ms": time.Since(start).Milliseconds()}
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			fields["status"] = apiErr.StatusCode
		}
		log.WithError(err).WithFields(fields).Debug("Chat completion request failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	log.WithFields(logrus.Fields{
		"finish_reason":     resp.Choices[0].FinishReason,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"elapsed_ms":        time.Since(start).Milliseconds(),
	}).Debug("Chat completion received")

	return resp.Choices[0].Message.Content, nil
}
