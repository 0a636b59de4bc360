package genai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// The real completion service must satisfy the interface Client is
// built on; New has a pointer receiver.
var _ chatService = (*openai.ChatCompletionService)(nil)

// mockChatService implements chatService for testing.
type mockChatService struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = body
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func completionWith(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestCompleteSuccess(t *testing.T) {
	mock := &mockChatService{response: completionWith("  Eat more protein.  ")}
	client := &Client{chat: mock, model: openai.ChatModelGPT4}

	got, err := client.Complete(context.Background(), CompletionRequest{
		System:           "You are a coach.",
		User:             "What should I eat?",
		MaxTokens:        800,
		Temperature:      0.7,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "Eat more protein." {
		t.Errorf("Complete() = %q, want trimmed content", got)
	}

	if mock.lastParams.Model != openai.ChatModelGPT4 {
		t.Errorf("model = %q, want %q", mock.lastParams.Model, openai.ChatModelGPT4)
	}
	if len(mock.lastParams.Messages) != 2 {
		t.Errorf("messages = %d, want system + user", len(mock.lastParams.Messages))
	}
	if !mock.lastParams.MaxTokens.Valid() || mock.lastParams.MaxTokens.Value != 800 {
		t.Errorf("MaxTokens = %+v, want 800", mock.lastParams.MaxTokens)
	}
	if !mock.lastParams.Temperature.Valid() || mock.lastParams.Temperature.Value != 0.7 {
		t.Errorf("Temperature = %+v, want 0.7", mock.lastParams.Temperature)
	}
}

func TestCompleteOmitsUnsetParams(t *testing.T) {
	mock := &mockChatService{response: completionWith("ok")}
	client := &Client{chat: mock, model: openai.ChatModelGPT4}

	if _, err := client.Complete(context.Background(), CompletionRequest{System: "s", User: "u"}); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if mock.lastParams.MaxTokens.Valid() {
		t.Error("MaxTokens should be omitted when zero")
	}
	if mock.lastParams.PresencePenalty.Valid() {
		t.Error("PresencePenalty should be omitted when zero")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	mock := &mockChatService{response: &openai.ChatCompletion{}}
	client := &Client{chat: mock, model: openai.ChatModelGPT4}

	_, err := client.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
	if err == nil {
		t.Fatal("Complete() succeeded with empty choices")
	}
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("error = %v, want wrapping %v", err, ErrNoChoicesReturned)
	}
	var genaiErr *Error
	if !errors.As(err, &genaiErr) || genaiErr.Kind != ErrorKindOther {
		t.Errorf("error kind = %v, want %v", err, ErrorKindOther)
	}
}

// apiError builds an openai.Error whose Error() method is safe to format.
func apiError(status int) *openai.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	return &openai.Error{
		StatusCode: status,
		Request:    req,
		Response: &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader("{}")),
		},
	}
}

func TestCompleteClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   ErrorKind
		wantStatus int
	}{
		{"rate limited", apiError(429), ErrorKindRateLimited, 429},
		{"bad request", apiError(400), ErrorKindInvalidRequest, 400},
		{"not found", apiError(404), ErrorKindInvalidRequest, 404},
		{"unprocessable", apiError(422), ErrorKindInvalidRequest, 422},
		{"server error", apiError(500), ErrorKindOther, 500},
		{"unauthorized", apiError(401), ErrorKindOther, 401},
		{"transport failure", errors.New("connection refused"), ErrorKindOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockChatService{err: tt.err}
			client := &Client{chat: mock, model: openai.ChatModelGPT4}

			_, err := client.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
			var genaiErr *Error
			if !errors.As(err, &genaiErr) {
				t.Fatalf("error %v is not a *genai.Error", err)
			}
			if genaiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", genaiErr.Kind, tt.wantKind)
			}
			if genaiErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", genaiErr.Status, tt.wantStatus)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("classified error does not wrap the original: %v", err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	client := &Client{chat: &mockChatService{response: completionWith("Hello!")}, model: openai.ChatModelGPT4}
	if !client.Ping(context.Background()) {
		t.Error("Ping() = false on a healthy service")
	}

	client = &Client{chat: &mockChatService{err: errors.New("down")}, model: openai.ChatModelGPT4}
	if client.Ping(context.Background()) {
		t.Error("Ping() = true on a failing service")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("NewClient() succeeded without an API key")
	}

	client, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4"))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if client.model != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", client.model)
	}
	if client.chat == nil {
		t.Error("chat service not wired")
	}
}
