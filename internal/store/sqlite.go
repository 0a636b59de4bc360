// This file implements the SQLite-backed store for user data.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/BTreeMap/CoachPipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists user data in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN
// is a file path to the database file; its directory is created when
// missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveUserData(userData models.UserData) error {
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
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile = excluded.profile,
			onboarding = excluded.onboarding,
			coach_style = excluded.coach_style,
			updated_at = excluded.updated_at`,
		userData.UserID, string(profileJSON), onboardingJSON, string(userData.CoachStyle.Style),
		userData.CreatedAt, userData.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveUserData failed", "error", err, "userID", userData.UserID)
		return fmt.Errorf("failed to save user data for %s: %w", userData.UserID, err)
	}
	slog.Debug("SQLiteStore SaveUserData succeeded", "userID", userData.UserID)
	return nil
}

func (s *SQLiteStore) LoadUserData(userID string) (*models.UserData, error) {
	row := s.db.QueryRow(`SELECT user_id, profile, onboarding, coach_style, created_at, updated_at
		FROM user_data WHERE user_id = ?`, userID)

	userData, err := scanUserData(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore LoadUserData not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore LoadUserData failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to load user data for %s: %w", userID, err)
	}
	slog.Debug("SQLiteStore LoadUserData succeeded", "userID", userID)
	return userData, nil
}

func (s *SQLiteStore) UpdateOnboarding(userID string, onboarding models.OnboardingAnswers) error {
	onboardingJSON, err := json.Marshal(onboarding)
	if err != nil {
		return fmt.Errorf("failed to marshal onboarding: %w", err)
	}

	res, err := s.db.Exec(`UPDATE user_data SET onboarding = ?, updated_at = ? WHERE user_id = ?`,
		string(onboardingJSON), time.Now(), userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateOnboarding failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update onboarding for %s: %w", userID, err)
	}
	return checkRowUpdated(res, userID)
}

func (s *SQLiteStore) UpdateCoachStyle(userID string, style models.CoachStyleName) error {
	res, err := s.db.Exec(`UPDATE user_data SET coach_style = ?, updated_at = ? WHERE user_id = ?`,
		string(style), time.Now(), userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateCoachStyle failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to update coach style for %s: %w", userID, err)
	}
	return checkRowUpdated(res, userID)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
