// Package genai wraps the OpenAI chat completion API for coaching
// responses.
//
// Failures from the external call are classified at this boundary into a
// typed error kind (rate limited, invalid request, other) so callers can
// branch on structure instead of matching error message text.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrorKind classifies a failed completion call.
type ErrorKind string

const (
	ErrorKindRateLimited    ErrorKind = "rate_limited"
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	ErrorKindOther          ErrorKind = "other"
)

// Error is a classified completion failure.
type Error struct {
	Kind    ErrorKind
	Status  int   // HTTP status from the API, 0 when unavailable
	Wrapped error // underlying cause
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// ErrNoChoicesReturned indicates the API responded without any choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// CompletionRequest carries a single completion call's inputs. Sampling
// parameters are fixed by the caller, not tunable per user.
type CompletionRequest struct {
	System           string
	User             string
	MaxTokens        int64
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// ClientInterface defines the completion operations used by the coach
// engine. Implemented by Client and by test mocks.
type ClientInterface interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// chatService defines the minimal OpenAI surface used, for testability.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat  chatService
	model openai.ChatModel
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key explicitly.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model explicitly.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// NewClient initializes a GenAI client. The API key defaults to the
// OPENAI_API_KEY environment variable and the model to OPENAI_MODEL,
// falling back to gpt-4.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("genai.NewClient: OPENAI_API_KEY not set")
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4
	}

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("genai.NewClient: client created", "model", cfg.Model)
	return &Client{chat: &cli.Chat.Completions, model: cfg.Model}, nil
}

// Complete runs a single chat completion with the request's system and
// user messages. Failures are returned as *Error with a classified Kind.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		classified := classify(err)
		slog.Error("genai.Complete: completion failed", "error", err, "kind", classified.Kind, "status", classified.Status)
		return "", classified
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.Complete: no choices returned")
		return "", &Error{Kind: ErrorKindOther, Wrapped: ErrNoChoicesReturned}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("genai.Complete: completion succeeded", "responseLength", len(content))
	return content, nil
}

// Ping sends a minimal completion to verify that the API is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	params := openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
		MaxTokens: openai.Int(10),
	}
	if _, err := c.chat.New(ctx, params); err != nil {
		slog.Warn("genai.Ping: API connection test failed", "error", err)
		return false
	}
	return true
}

// classify maps an OpenAI API failure to a typed Error. Classification
// uses the typed API error's HTTP status, never the message text.
func classify(err error) *Error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests:
			return &Error{Kind: ErrorKindRateLimited, Status: apierr.StatusCode, Wrapped: err}
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return &Error{Kind: ErrorKindInvalidRequest, Status: apierr.StatusCode, Wrapped: err}
		default:
			return &Error{Kind: ErrorKindOther, Status: apierr.StatusCode, Wrapped: err}
		}
	}
	return &Error{Kind: ErrorKindOther, Wrapped: err}
}
