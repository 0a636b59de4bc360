// Package coach generates AI coaching responses for CoachPipe.
//
// The engine is a thin adapter over the GenAI client: it assembles the
// instruction via the prompt package, runs one completion, and maps any
// failure to a canned or personalized fallback. It never surfaces an
// error to its caller; the worst outcome is a degraded canned response.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/CoachPipe/internal/genai"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/prompt"
)

// Fixed response settings. These are deterministic engine configuration,
// not tunable per call.
const (
	coachingMaxTokens   = 800
	quickMaxTokens      = 300
	responseTemperature = 0.7
	presencePenalty     = 0.1
	frequencyPenalty    = 0.1
)

// rateLimitResponse is returned when the API reports rate limiting.
const rateLimitResponse = "I'm getting a lot of requests right now! Please wait a moment and try again. " +
	"In the meantime, remember that consistency is key to reaching your health goals! 💪"

// quickFallbackResponse is the single generic fallback for the
// context-free quick path.
const quickFallbackResponse = "I'm here to help with your health and fitness goals! What would you like to know?"

// Engine orchestrates coaching completions.
type Engine struct {
	client genai.ClientInterface
}

// NewEngine creates an engine backed by the given GenAI client.
func NewEngine(client genai.ClientInterface) *Engine {
	slog.Debug("coach.NewEngine: creating engine")
	return &Engine{client: client}
}

// Respond generates a personalized coaching response. It always returns a
// usable message: external failures collapse to canned or personalized
// fallbacks depending on the classified error kind.
func (e *Engine) Respond(ctx context.Context, userData models.UserData, onboarding models.OnboardingAnswers, history []models.ChatMessage, userMessage string) string {
	instruction, err := prompt.BuildCoachingPrompt(userData, onboarding, history, userMessage)
	if err != nil {
		// Unknown coach style is a configuration fault, not a user condition.
		slog.Error("Engine.Respond: failed to build coaching prompt", "error", err, "userID", userData.UserID)
		return e.fallbackResponse(userData, onboarding)
	}

	response, err := e.client.Complete(ctx, genai.CompletionRequest{
		System:           instruction,
		User:             userMessage,
		MaxTokens:        coachingMaxTokens,
		Temperature:      responseTemperature,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	})
	if err != nil {
		return e.handleCompletionError(err, userData, onboarding)
	}

	slog.Info("Engine.Respond: generated coaching response", "userID", userData.UserID, "responseLength", len(response))
	return response
}

// QuickRespond generates a response from only the personality block,
// skipping user context and history. Intended for style previews.
func (e *Engine) QuickRespond(ctx context.Context, userMessage string, style models.CoachStyleName) string {
	instruction, err := prompt.BuildQuickPrompt(userMessage, style)
	if err != nil {
		slog.Error("Engine.QuickRespond: failed to build quick prompt", "error", err, "style", style)
		return quickFallbackResponse
	}

	response, err := e.client.Complete(ctx, genai.CompletionRequest{
		System:      instruction,
		User:        userMessage,
		MaxTokens:   quickMaxTokens,
		Temperature: responseTemperature,
	})
	if err != nil {
		slog.Warn("Engine.QuickRespond: completion failed", "error", err, "style", style)
		return quickFallbackResponse
	}
	return response
}

// handleCompletionError maps a classified completion failure to the
// appropriate user-facing message.
func (e *Engine) handleCompletionError(err error, userData models.UserData, onboarding models.OnboardingAnswers) string {
	var genaiErr *genai.Error
	if errors.As(err, &genaiErr) {
		switch genaiErr.Kind {
		case genai.ErrorKindRateLimited:
			slog.Warn("Engine.handleCompletionError: rate limited", "userID", userData.UserID)
			return rateLimitResponse
		case genai.ErrorKindInvalidRequest:
			slog.Warn("Engine.handleCompletionError: invalid request", "error", err, "userID", userData.UserID)
			return fmt.Sprintf("I apologize, but I encountered an issue processing your request: %v", genaiErr.Wrapped)
		}
	}

	slog.Error("Engine.handleCompletionError: completion failed", "error", err, "userID", userData.UserID)
	return e.fallbackResponse(userData, onboarding)
}

// fallbackResponse addresses the user by first name and references their
// focus area without surfacing internal error detail.
func (e *Engine) fallbackResponse(userData models.UserData, onboarding models.OnboardingAnswers) string {
	focus := "health"
	if models.IsValidFocusArea(onboarding.FocusArea) {
		focus = string(onboarding.FocusArea)
	}
	return fmt.Sprintf("Hi %s! I'm having a technical moment, but I'm still here to help with your %s goals. "+
		"Could you try rephrasing your question? I want to make sure I give you the best advice possible!",
		userData.Profile.FirstName(), focus)
}

// TestConnection verifies that the GenAI backend is reachable. Only
// supported when the engine is backed by the real client.
func (e *Engine) TestConnection(ctx context.Context) bool {
	type pinger interface {
		Ping(ctx context.Context) bool
	}
	if p, ok := e.client.(pinger); ok {
		return p.Ping(ctx)
	}
	return true
}
