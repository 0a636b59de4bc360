package flow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// SessionNotFoundMessage is returned by ProcessMessage when no session
// exists for the user id. Session loss is a recoverable condition, not a
// fault; callers check for this sentinel structurally.
const SessionNotFoundMessage = "Session not found. Please start over."

// Fixed specific questions, keyed by focus area. The extracted onboarding
// record derives its question text from these, not from history replay.
const (
	workoutSpecificQuestion = "Do you have access to a gym, or will you be working out at home?"
	foodSpecificQuestion    = "What do you usually eat in a typical day?"
)

// Keyword vocabularies for focus classification. Food is evaluated first;
// input matching both vocabularies resolves to food.
var (
	foodKeywords    = []string{"food", "eat", "diet", "nutrition", "meal"}
	workoutKeywords = []string{"workout", "exercise", "gym", "fitness", "training"}
)

// OnboardingFlow advances users through the scripted onboarding interview
// and owns each session's message history. It performs no I/O: persistence
// of completed onboarding is the caller's responsibility.
type OnboardingFlow struct {
	sessions *SessionStore
}

// NewOnboardingFlow creates a flow backed by the given session store.
func NewOnboardingFlow(sessions *SessionStore) *OnboardingFlow {
	slog.Debug("OnboardingFlow.NewOnboardingFlow: creating flow")
	return &OnboardingFlow{sessions: sessions}
}

// Start creates a session for the user (overwriting any prior session for
// that id), appends the personalized welcome and the first scripted
// question as assistant messages, and returns the question.
func (f *OnboardingFlow) Start(userData models.UserData) string {
	session := f.sessions.create(userData.UserID)
	session.mu.Lock()
	defer session.mu.Unlock()

	welcome := welcomeMessage(userData)
	session.addMessage(models.RoleAssistant, welcome)

	session.State = models.StateAskingFocus
	question := focusQuestion()
	session.addMessage(models.RoleAssistant, question)

	slog.Info("OnboardingFlow.Start: session started", "userID", userData.UserID)
	return question
}

// Resume seeds a session directly in main chat from previously persisted
// onboarding answers. Persisted onboarding wins over a fresh interview:
// the interview never re-runs for a user whose answers were saved.
func (f *OnboardingFlow) Resume(userData models.UserData) string {
	session := f.sessions.create(userData.UserID)
	session.mu.Lock()
	defer session.mu.Unlock()

	if userData.Onboarding != nil {
		session.FocusArea = userData.Onboarding.FocusArea
		session.SpecificAnswer = userData.Onboarding.SpecificQuestionAnswer
		session.AdditionalInfo = userData.Onboarding.AdditionalInfo
	}
	session.State = models.StateMainChat

	greeting := fmt.Sprintf("Welcome back, %s! I still have your answers from last time. What would you like to work on today?",
		userData.Profile.FirstName())
	session.addMessage(models.RoleAssistant, greeting)

	slog.Info("OnboardingFlow.Resume: session resumed in main chat", "userID", userData.UserID)
	return greeting
}

// ProcessMessage appends the user's message to history and advances the
// interview. Returns the next assistant prompt to show. An unknown user
// id yields the SessionNotFoundMessage sentinel rather than an error.
//
// Messages arriving while the session is already in main chat are not
// handled here: the calling layer routes those to the coach engine. The
// main_chat arm below only covers a stray call and returns the generic
// fallback.
func (f *OnboardingFlow) ProcessMessage(userID, message string) string {
	session := f.sessions.get(userID)
	if session == nil {
		slog.Warn("OnboardingFlow.ProcessMessage: session not found", "userID", userID)
		return SessionNotFoundMessage
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.addMessage(models.RoleUser, message)

	var reply string
	switch session.State {
	case models.StateAskingFocus:
		reply = f.handleFocusAnswer(session, message)
	case models.StateAskingSpecific:
		reply = f.handleSpecificAnswer(session, message)
	case models.StateAskingAdditional:
		reply = f.handleAdditionalAnswer(session, message)
	case models.StateOnboardingComplete:
		session.State = models.StateMainChat
		reply = "I'm ready to help! What's your first question?"
	case models.StateWelcome, models.StateMainChat:
		reply = "I'm not sure how to help with that right now."
	default:
		reply = "I'm not sure how to help with that right now."
	}

	slog.Debug("OnboardingFlow.ProcessMessage: processed message", "userID", userID, "state", session.State)
	return reply
}

// handleFocusAnswer classifies the focus answer. On an unclear answer the
// state does not advance; the clarification prompt is returned each time
// until the user picks a recognizable focus.
func (f *OnboardingFlow) handleFocusAnswer(session *ChatSession, message string) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, foodKeywords):
		session.FocusArea = models.FocusFood
	case containsAny(lower, workoutKeywords):
		session.FocusArea = models.FocusWorkout
	default:
		clarification := focusClarification()
		session.addMessage(models.RoleAssistant, clarification)
		return clarification
	}

	session.State = models.StateAskingSpecific
	question := specificQuestion(session.FocusArea)
	session.addMessage(models.RoleAssistant, question)
	return question
}

func (f *OnboardingFlow) handleSpecificAnswer(session *ChatSession, message string) string {
	session.SpecificAnswer = message
	session.State = models.StateAskingAdditional
	question := finalQuestion()
	session.addMessage(models.RoleAssistant, question)
	return question
}

func (f *OnboardingFlow) handleAdditionalAnswer(session *ChatSession, message string) string {
	session.AdditionalInfo = message
	session.State = models.StateOnboardingComplete
	completion := completionMessage()
	session.addMessage(models.RoleAssistant, completion)
	return completion
}

// OnboardingData extracts the completed onboarding answers, or nil unless
// both the focus area and the specific answer are populated. The specific
// question text is derived from the focus area.
func (f *OnboardingFlow) OnboardingData(userID string) *models.OnboardingAnswers {
	session := f.sessions.get(userID)
	if session == nil {
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.FocusArea == "" || session.SpecificAnswer == "" {
		return nil
	}

	question := foodSpecificQuestion
	if session.FocusArea == models.FocusWorkout {
		question = workoutSpecificQuestion
	}

	additional := session.AdditionalInfo
	if additional == "" {
		additional = models.DefaultAdditionalInfo
	}

	return &models.OnboardingAnswers{
		FocusArea:              session.FocusArea,
		SpecificQuestion:       question,
		SpecificQuestionAnswer: session.SpecificAnswer,
		AdditionalInfo:         additional,
	}
}

// IsComplete reports whether the user has finished onboarding.
func (f *OnboardingFlow) IsComplete(userID string) bool {
	session := f.sessions.get(userID)
	if session == nil {
		return false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.State == models.StateOnboardingComplete || session.State == models.StateMainChat
}

// State returns the session's current state, or false if no session exists.
func (f *OnboardingFlow) State(userID string) (models.ChatState, bool) {
	session := f.sessions.get(userID)
	if session == nil {
		return "", false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.State, true
}

// History returns the ordered message history for the user, or an empty
// slice if no session exists.
func (f *OnboardingFlow) History(userID string) []models.ChatMessage {
	session := f.sessions.get(userID)
	if session == nil {
		return []models.ChatMessage{}
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	history := make([]models.ChatMessage, len(session.Messages))
	copy(history, session.Messages)
	return history
}

// AppendExchange pushes a main-chat user/assistant exchange back into the
// session history owned by this flow. The caller uses this after routing
// a main-chat message to the coach engine.
func (f *OnboardingFlow) AppendExchange(userID, userMessage, assistantMessage string) {
	session := f.sessions.get(userID)
	if session == nil {
		slog.Warn("OnboardingFlow.AppendExchange: session not found", "userID", userID)
		return
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.addMessage(models.RoleUser, userMessage)
	session.addMessage(models.RoleAssistant, assistantMessage)
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
