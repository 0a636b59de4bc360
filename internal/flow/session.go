// Package flow implements the conversation state machine for CoachPipe.
//
// A ChatSession tracks one user's progress through the fixed 3-question
// onboarding interview and the transition into open coaching chat. The
// SessionStore owns all sessions for the lifetime of the process; it is
// an explicit dependency passed to the flow, never package-global state.
package flow

import (
	"sync"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// ChatSession holds the in-memory conversational state for one user.
// It is distinct from the persisted UserData record and is correlated
// with it only by the shared user id.
type ChatSession struct {
	mu sync.Mutex

	UserID   string
	State    models.ChatState
	Messages []models.ChatMessage

	// Transient onboarding answer slots, frozen into an
	// OnboardingAnswers value once the interview completes.
	FocusArea      models.FocusArea
	SpecificAnswer string
	AdditionalInfo string
}

// newChatSession creates a session in the welcome state.
func newChatSession(userID string) *ChatSession {
	return &ChatSession{
		UserID: userID,
		State:  models.StateWelcome,
	}
}

// addMessage appends a message to the session history. Callers must hold s.mu.
func (s *ChatSession) addMessage(role, content string) {
	s.Messages = append(s.Messages, models.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// SessionStore is an in-memory mapping from user id to ChatSession.
// Map access is guarded by an RWMutex; mutation of an individual session
// is serialized by the session's own mutex so concurrent callers racing
// on the same user id cannot interleave state transitions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

// NewSessionStore creates an empty session store. Lifetime is application
// startup to shutdown; sessions are never persisted.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*ChatSession)}
}

// create installs a fresh session for the user id, overwriting any prior
// session for that id.
func (ss *SessionStore) create(userID string) *ChatSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session := newChatSession(userID)
	ss.sessions[userID] = session
	return session
}

// get returns the session for the user id, or nil if none exists.
func (ss *SessionStore) get(userID string) *ChatSession {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.sessions[userID]
}
