// This file implements the PostgreSQL-backed store for user data.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BTreeMap/CoachPipe/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists user data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveUserData(userData models.UserData) error {
	userData.UpdatedAt = time.Now()
	if userData.CreatedAt.IsZero() {
		userData.CreatedAt = userData.UpdatedAt
	}

	profileJSON, err := json.Marshal(userData.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	onboardingJSON, err := marshalOnboarding(userData.Onboarding)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO user_data (user_id, profile, onboarding, coach_style, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			profile = EXCLUDED.profile,
			onboarding = EXCLUDED.onboarding,
			coach_style = EXCLUDED.coach_style,
			updated_at = EXCLUDED.updated_at`,
		userData.UserID, string(profileJSON), onboardingJSON, string(userData.CoachStyle.Style),
		userData.CreatedAt, userData.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveUserData failed", "error", err, "userID", userData.UserID)
		return fmt.Errorf("failed to save user data for %s: %w", userData.UserID, err)
	}
	slog.Debug("PostgresStore SaveUserData succeeded", "userID", userData.UserID)
	return nil
}

func (s *PostgresStore) LoadUserData(userID string) (*models.UserData, error) {
	row := s.db.QueryRow(`SELECT user_id, profile, onboarding, coach_style, created_at, updated_at
		FROM user_data WHERE user_id = $1`, userID)

	userData, err := scanUserData(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore LoadUserData not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore LoadUserData failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to load user data for %s: %w", userID, err)
	}
	return userData, nil
}

func (s *PostgresStore) UpdateOnboarding(userID string, onboarding models.OnboardingAnswers) error {
	onboardingJSON, err := json.Marshal(onboarding)
	if err != nil {
		return fmt.Errorf("failed to marshal onboarding: %w", err)
	}

	res, err := s.db.Exec(`UPDATE user_data SET onboarding = $1, updated_at = $2 WHERE user_id = $3`,
		string(onboardingJSON), time.Now(), userID)
	if err != nil {
		slog.Error("PostgresStore UpdateOnboarding failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update onboarding for %s: %w", userID, err)
	}
	return checkRowUpdated(res, userID)
}

func (s *PostgresStore) UpdateCoachStyle(userID string, style models.CoachStyleName) error {
	res, err := s.db.Exec(`UPDATE user_data SET coach_style = $1, updated_at = $2 WHERE user_id = $3`,
		string(style), time.Now(), userID)
	if err != nil {
		slog.Error("PostgresStore UpdateCoachStyle failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update coach style for %s: %w", userID, err)
	}
	return checkRowUpdated(res, userID)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
