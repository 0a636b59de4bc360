package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// marshalOnboarding serializes optional onboarding answers for a
// nullable column.
func marshalOnboarding(onboarding *models.OnboardingAnswers) (interface{}, error) {
	if onboarding == nil {
		return nil, nil
	}
	data, err := json.Marshal(onboarding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal onboarding: %w", err)
	}
	return string(data), nil
}

// scanUserData scans a user data row shared by the SQLite and Postgres
// backends.
func scanUserData(row *sql.Row) (*models.UserData, error) {
	var userData models.UserData
	var profileJSON string
	var onboardingJSON sql.NullString
	var coachStyle string

	err := row.Scan(&userData.UserID, &profileJSON, &onboardingJSON, &coachStyle,
		&userData.CreatedAt, &userData.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(profileJSON), &userData.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if onboardingJSON.Valid && onboardingJSON.String != "" {
		var onboarding models.OnboardingAnswers
		if err := json.Unmarshal([]byte(onboardingJSON.String), &onboarding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal onboarding: %w", err)
		}
		userData.Onboarding = &onboarding
	}
	userData.CoachStyle.Style = models.CoachStyleName(coachStyle)
	return &userData, nil
}

// checkRowUpdated converts a zero-row update into ErrUserNotFound.
func checkRowUpdated(res sql.Result, userID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for %s: %w", userID, err)
	}
	if affected == 0 {
		slog.Debug("store update matched no rows", "userID", userID)
		return ErrUserNotFound
	}
	return nil
}
