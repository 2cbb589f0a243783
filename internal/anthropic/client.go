package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// HighlightedTerm is one annotated source-language term from the analysis
// pass. Order within a result follows the service's relevance/appearance
// order and is never re-sorted.
type HighlightedTerm struct {
	Term                 string   `json:"term"`
	Romanization         string   `json:"romanization"`
	PossibleTranslations []string `json:"possibleTranslations"`
	SourceContext        string   `json:"sourceContext"`
}

// Client is the request/response contract to the external language service.
// It is injected everywhere a service call is made so tests can substitute a
// double; there is no process-wide singleton.
type Client interface {
	Translate(ctx context.Context, text string) (string, error)
	Analyze(ctx context.Context, text string) ([]HighlightedTerm, error)
	VisionExtract(ctx context.Context, image []byte, mediaType string) (string, error)
}

// ErrUnexpectedResponse means the first content item of a service response
// was not of a textual type.
var ErrUnexpectedResponse = errors.New("unexpected response format")

// APIError is a non-2xx or inline error from the service.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

const (
	defaultBaseURL   = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-3-opus-20240229"
	anthropicVersion = "2023-06-01"
)

// Options configures the HTTP client. Zero values fall back to defaults.
type Options struct {
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	TranslateMaxTokens int
	AnalyzeMaxTokens   int
	VisionMaxTokens    int
	RateLimitEvery     time.Duration
	RateLimitBurst     int
	MaxConcurrent      int64
	Logger             *slog.Logger
}

// HTTPClient talks to the messages API. Calls are stateless request/response
// with no built-in retry: a single failure surfaces immediately. A client-side
// rate limiter and a concurrency cap protect the API quota when debounce
// cycles overlap.
type HTTPClient struct {
	apiKey  string
	baseURL string
	model   string

	translateMaxTokens int
	analyzeMaxTokens   int
	visionMaxTokens    int

	httpc   *http.Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

func NewHTTPClient(opts Options) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.TranslateMaxTokens <= 0 {
		opts.TranslateMaxTokens = 1024
	}
	if opts.AnalyzeMaxTokens <= 0 {
		opts.AnalyzeMaxTokens = 2048
	}
	if opts.VisionMaxTokens <= 0 {
		opts.VisionMaxTokens = 4096
	}
	if opts.RateLimitEvery <= 0 {
		opts.RateLimitEvery = 600 * time.Millisecond
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 5
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &HTTPClient{
		apiKey:             opts.APIKey,
		baseURL:            opts.BaseURL,
		model:              opts.Model,
		translateMaxTokens: opts.TranslateMaxTokens,
		analyzeMaxTokens:   opts.AnalyzeMaxTokens,
		visionMaxTokens:    opts.VisionMaxTokens,
		httpc: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(opts.RateLimitEvery), opts.RateLimitBurst),
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		logger:  opts.Logger,
	}
}

// ---- wire types ----

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []contentBlock
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []responseBlock `json:"content"`
	Error   *errorPayload   `json:"error,omitempty"`
}

type responseBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ---- operations ----

func (c *HTTPClient) Translate(ctx context.Context, text string) (string, error) {
	return c.send(ctx, "translate", messagesRequest{
		Model:     c.model,
		MaxTokens: c.translateMaxTokens,
		System:    translateSystemPrompt,
		Messages:  []message{{Role: "user", Content: text}},
	})
}

// send issues one messages request and returns the first text content item.
func (c *HTTPClient) send(ctx context.Context, op string, body messagesRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	c.logger.Debug("anthropic.request", "req_id", reqID, "op", op, "bytes", len(bs))

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error("anthropic.send_error", "req_id", reqID, "op", op, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("anthropic.response", "req_id", reqID, "op", op,
		"status", resp.StatusCode, "bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseAPIError(resp.StatusCode, raw)
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if mr.Error != nil && mr.Error.Message != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Type: mr.Error.Type, Message: mr.Error.Message}
	}
	if len(mr.Content) == 0 || mr.Content[0].Type != "text" {
		return "", ErrUnexpectedResponse
	}

	return mr.Content[0].Text, nil
}

func parseAPIError(statusCode int, body []byte) error {
	var er struct {
		Error errorPayload `json:"error"`
	}
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		return &APIError{StatusCode: statusCode, Type: er.Error.Type, Message: er.Error.Message}
	}

	msg := string(body)
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return &APIError{StatusCode: statusCode, Type: "unknown", Message: msg}
}
