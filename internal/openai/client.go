// Package openai is the client for an OpenAI-compatible provider, covering
// the two calls the pipeline makes: batch text embedding and chat
// completion.
//
// The client is an explicit dependency constructed once at startup and
// passed into the pipeline services; there is no process-global instance.
// Requests are never retried here: a provider failure aborts the current
// request and is reported to the caller.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/answerdesk/answerdesk/internal/log"
)

var (
	// ErrUnavailable indicates the embedding provider could not serve the
	// request: missing credentials, transport failure, or rejection. It is
	// distinct from validation errors so callers can signal "try again
	// later" instead of "fix your input".
	ErrUnavailable = errors.New("embedding provider unavailable")

	// ErrNoCompletion indicates the completion call produced no usable
	// choice text.
	ErrNoCompletion = errors.New("no completion returned")
)

// MaxInputChars is the per-text ceiling applied before an embedding
// request to stay under provider-side length limits. Counted in runes so
// truncation never cuts a character in half.
const MaxInputChars = 8000

const defaultTimeout = 60 * time.Second

// Config configures the provider client.
type Config struct {
	BaseURL        string // e.g. https://api.openai.com/v1
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	MaxTokens      int

	// Timeout bounds each HTTP round trip. Zero means 60s.
	Timeout time.Duration

	// RequestsPerSecond limits outbound calls client-side. Zero disables
	// the limiter.
	RequestsPerSecond float64
}

// Client talks to an OpenAI-compatible HTTP endpoint. Safe for concurrent
// use.
type Client struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	chatModel      string
	maxTokens      int
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         log.Logger
}

// New creates a provider client. A missing API key fails construction with
// ErrUnavailable so startup reports misconfiguration immediately instead of
// on the first chat request.
func New(cfg Config, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		maxTokens:      cfg.MaxTokens,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		logger:         logger,
	}, nil
}

// post sends one JSON request and returns the raw response body for 2xx
// responses. Non-2xx responses are returned as errors carrying the status.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned %s", resp.Status)
	}

	return data, nil
}
