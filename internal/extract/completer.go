package extract

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/resilience"
	"github.com/sells-group/invoice-cli/pkg/anthropic"
	"github.com/sells-group/invoice-cli/pkg/deepseek"
)

// DeepSeekCompleter sends the exchange as an OpenAI-style chat completion with
// temperature 0 and JSON output mode.
type DeepSeekCompleter struct {
	client deepseek.Client
	model  string
}

// NewDeepSeekCompleter creates a Completer over a deepseek.Client. An empty
// model uses the client's default.
func NewDeepSeekCompleter(client deepseek.Client, model string) *DeepSeekCompleter {
	return &DeepSeekCompleter{client: client, model: model}
}

func (c *DeepSeekCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	temp := 0.0
	resp, err := c.client.ChatCompletion(ctx, deepseek.ChatCompletionRequest{
		Model: c.model,
		Messages: []deepseek.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    &temp,
		ResponseFormat: &deepseek.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		var se *deepseek.StatusError
		if errors.As(err, &se) {
			return "", resilience.ClassifyHTTP(err, se.StatusCode)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("extract: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicCompleter sends the exchange through the Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates a Completer over an anthropic.Client.
func NewAnthropicCompleter(client anthropic.Client, cfg config.AnthropicConfig) *AnthropicCompleter {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicCompleter{client: client, model: cfg.Model, maxTokens: maxTokens}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	temp := 0.0
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", eris.New("extract: response has no text content")
	}
	return text, nil
}

// NewStructuredFromConfig builds the remote extractor selected by
// remote.provider. It returns nil when the provider is off or has no
// credentials, in which case only the pattern extractor runs.
func NewStructuredFromConfig(cfg *config.Config) (*Structured, error) {
	var c Completer
	switch cfg.Remote.Provider {
	case "off":
		return nil, nil
	case "deepseek", "":
		if cfg.Remote.APIKey == "" {
			zap.L().Warn("extract: remote.api_key is empty, remote extractor disabled")
			return nil, nil
		}
		client := deepseek.NewClient(cfg.Remote.APIKey,
			deepseek.WithBaseURL(cfg.Remote.BaseURL),
			deepseek.WithModel(cfg.Remote.Model),
		)
		c = NewDeepSeekCompleter(client, cfg.Remote.Model)
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			zap.L().Warn("extract: anthropic.key is empty, remote extractor disabled")
			return nil, nil
		}
		c = NewAnthropicCompleter(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	default:
		return nil, eris.Errorf("extract: unknown remote provider %q", cfg.Remote.Provider)
	}
	return NewStructured(c, cfg.Remote), nil
}
