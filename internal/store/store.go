// Package store provides persistence backends for CoachPipe user data.
//
// It includes an in-memory store for tests and ephemeral runs plus
// SQLite and PostgreSQL backed stores. All backends treat user data as a
// snapshot keyed by user id; a failed save is reported to the caller,
// who proceeds with possibly stale data rather than aborting the
// conversation.
package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// ErrUserNotFound is returned by update operations when no record exists
// for the user id. Lookups signal absence with a nil result instead.
var ErrUserNotFound = errors.New("user not found")

// Store defines the persistence operations for user data.
type Store interface {
	// SaveUserData upserts the full snapshot, bumping UpdatedAt.
	SaveUserData(userData models.UserData) error
	// LoadUserData returns the stored snapshot, or nil when absent.
	LoadUserData(userID string) (*models.UserData, error)
	// UpdateOnboarding attaches completed onboarding answers to the user.
	UpdateOnboarding(userID string, onboarding models.OnboardingAnswers) error
	// UpdateCoachStyle changes the user's coach style preference.
	UpdateCoachStyle(userID string, style models.CoachStyleName) error
	// Close releases any backend resources.
	Close() error
}

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithDSN sets the database DSN (file path for SQLite, connection URL
// for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// NewUserID derives a user id from a name and the current time: the
// lowercased, underscore-joined name plus a timestamp suffix. Collisions
// within the same second for the same name are accepted.
func NewUserID(name string) string {
	clean := strings.ToLower(name)
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "-", "_")
	return clean + "_" + time.Now().Format("20060102_150405")
}

// InMemoryStore is a mutex-guarded in-memory store.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.UserData
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]models.UserData)}
}

func (s *InMemoryStore) SaveUserData(userData models.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userData.UpdatedAt = time.Now()
	s.users[userData.UserID] = userData
	return nil
}

func (s *InMemoryStore) LoadUserData(userID string) (*models.UserData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userData, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &userData, nil
}

func (s *InMemoryStore) UpdateOnboarding(userID string, onboarding models.OnboardingAnswers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userData, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	userData.Onboarding = &onboarding
	userData.UpdatedAt = time.Now()
	s.users[userID] = userData
	return nil
}

func (s *InMemoryStore) UpdateCoachStyle(userID string, style models.CoachStyleName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userData, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	userData.CoachStyle.Style = style
	userData.UpdatedAt = time.Now()
	s.users[userID] = userData
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
