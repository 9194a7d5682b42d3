// Package extract turns document text into a model.FieldSet, either through a
// remote language model or through local regular expressions.
package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/resilience"
)

// Completer sends one system + user exchange to a language model and returns
// the raw text of the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Structured is the remote extractor. Each call is bounded by a per-attempt
// timeout, retried on transient failures, rate limited when configured, and
// short-circuited while the remote service keeps failing.
type Structured struct {
	completer Completer
	provider  string
	timeout   time.Duration
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
	limiter   *rate.Limiter
}

// NewStructured wraps c with the call policy from cfg.
func NewStructured(c Completer, cfg config.RemoteConfig) *Structured {
	s := &Structured{
		completer: c,
		provider:  cfg.Provider,
		timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		retry:     resilience.DefaultRetryConfig(),
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	if cfg.MaxAttempts > 0 {
		s.retry.MaxAttempts = cfg.MaxAttempts
	}
	s.retry.OnRetry = resilience.RetryLogger("extract: remote call", zap.String("provider", cfg.Provider))

	s.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.CircuitThreshold,
		ResetTimeout:     time.Duration(cfg.CircuitResetSecs) * time.Second,
		OnStateChange: func(from, to resilience.CircuitState) {
			zap.L().Warn("extract: remote circuit state changed",
				zap.String("provider", cfg.Provider),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// Provider returns the configured provider name.
func (s *Structured) Provider() string { return s.provider }

// Extract asks the remote model for the field set. Any failure is returned
// wrapped around model.ErrRemoteExtraction so the caller can fall back.
func (s *Structured) Extract(ctx context.Context, text string) (model.FieldSet, error) {
	fields, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (model.FieldSet, error) {
		return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (model.FieldSet, error) {
			return s.attempt(ctx, text)
		})
	})
	if err != nil {
		zap.L().Warn("extract: remote extraction failed",
			zap.String("provider", s.provider),
			zap.Error(err),
		)
		return model.FieldSet{}, eris.Wrapf(model.ErrRemoteExtraction, "extract: %s: %v", s.provider, err)
	}
	return fields, nil
}

func (s *Structured) attempt(ctx context.Context, text string) (model.FieldSet, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return model.FieldSet{}, eris.Wrap(err, "extract: rate limit wait")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.completer.Complete(callCtx, systemPrompt, text)
	if err != nil {
		return model.FieldSet{}, err
	}
	return ParseFields(content)
}

// ParseFields decodes a model reply into a FieldSet. The reply must hold a
// JSON object; code fences and surrounding prose are tolerated. Missing keys
// take their defaults, null becomes the default, and non-string scalars are
// rendered as text.
func ParseFields(content string) (model.FieldSet, error) {
	cleaned := cleanJSON(content)
	if cleaned == "" {
		return model.FieldSet{}, eris.New("extract: empty response content")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return model.FieldSet{}, eris.Wrap(err, "extract: parse response JSON")
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[k] = stringify(v)
	}
	// Some models answer with the ledger's column name for the issue date.
	if values[model.KeyIssueDate] == "" && values["data_emissao_nf"] != "" {
		values[model.KeyIssueDate] = values["data_emissao_nf"]
	}
	return model.FieldSetFromMap(values), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// cleanJSON extracts a JSON object from text that may contain markdown code
// fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
