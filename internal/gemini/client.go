package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"stylegen/internal/logging"
)

const (
	defaultModel          = "gemini-1.5-flash"
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
}

// generator is the subset of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client issues JSON-producing generation requests with retry.
type Client struct {
	model  generator
	closer func() error

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
	logger           *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithRetryMaxAttempts overrides the default attempt count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithLogger routes retry warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "gemini")
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New connects to the Gemini API.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}
	model := gc.GenerativeModel(modelName)
	model.SetTemperature(float32(cfg.Temperature))
	model.ResponseMIMEType = "application/json"

	if cfg.MaxRetries > 0 {
		opts = append([]Option{WithRetryMaxAttempts(cfg.MaxRetries + 1)}, opts...)
	}
	client := newClient(model, opts...)
	client.closer = gc.Close
	return client, nil
}

func newClient(model generator, opts ...Option) *Client {
	client := &Client{
		model:            model,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		logger:           logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

var errEmptyResponse = errors.New("empty response")

// generateJSON sends parts and decodes the first text candidate into target.
func (c *Client) generateJSON(ctx context.Context, op string, target any, parts ...genai.Part) error {
	attempts := c.retryAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.generateOnce(ctx, parts...)
		if err == nil {
			if err := DecodeJSON(text, target); err != nil {
				return fmt.Errorf("%s: parse payload: %w", op, err)
			}
			return nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			if attempt > 1 {
				return fmt.Errorf("%s: failed after %d attempts: %w", op, attempt, err)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		c.logRetry(ctx, op, err, attempt, delay)
		if err := c.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: no attempts made", op)
}

func (c *Client) logRetry(ctx context.Context, op string, err error, attempt int, delay time.Duration) {
	event, hint := "gemini_retry", "transient API error; retrying"
	if IsRateLimited(err) {
		event, hint = "gemini_rate_limited", "lower processing.concurrency or raise the API quota"
	}
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "gemini call retrying", event,
		logging.String("operation", op),
		logging.Int("attempt", attempt),
		logging.Duration("delay", delay),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "image takes longer to process"),
	)
}

func (c *Client) generateOnce(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", errEmptyResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: finish_reason=%v", errEmptyResponse, candidate.FinishReason)
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: no text parts", errEmptyResponse)
	}
	return b.String(), nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if errors.Is(err, errEmptyResponse) || IsRetryable(err) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// IsRetryable reports whether err is a rate-limit or transient server error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests ||
			apiErr.Code == http.StatusRequestTimeout ||
			apiErr.Code >= http.StatusInternalServerError
	}
	msg := err.Error()
	for _, marker := range []string{"429", "RESOURCE_EXHAUSTED", "UNAVAILABLE", "503", "500 Internal"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err is specifically a quota/rate-limit error.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if maxDelay > 0 && delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
