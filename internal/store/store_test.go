package store

import (
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

func testUserData(userID string) models.UserData {
	return models.UserData{
		UserID: userID,
		Profile: models.UserProfile{
			Name:              "Sarah Johnson",
			Age:               28,
			Gender:            models.GenderFemale,
			HeightCm:          165,
			WeightKg:          60,
			ExerciseFrequency: models.ExerciseOneToTwoWeek,
			Goal:              "Build strength and feel more energetic",
		},
		CoachStyle: models.DefaultCoachStyle(),
	}
}

func testOnboarding() models.OnboardingAnswers {
	return models.OnboardingAnswers{
		FocusArea:              models.FocusWorkout,
		SpecificQuestion:       "Do you have access to a gym, or will you be working out at home?",
		SpecificQuestionAnswer: "I have a gym membership",
		AdditionalInfo:         models.DefaultAdditionalInfo,
	}
}

func TestNewUserID(t *testing.T) {
	pattern := regexp.MustCompile(`^sarah_johnson_\d{8}_\d{6}$`)
	id := NewUserID("Sarah Johnson")
	if !pattern.MatchString(id) {
		t.Errorf("NewUserID(Sarah Johnson) = %q, want lowercased underscore name with timestamp suffix", id)
	}

	id = NewUserID("Mary-Anne Smith")
	if !regexp.MustCompile(`^mary_anne_smith_\d{8}_\d{6}$`).MatchString(id) {
		t.Errorf("NewUserID(Mary-Anne Smith) = %q, hyphens should become underscores", id)
	}
}

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, s Store) {
	t.Helper()

	// Lookup of an absent user signals with nil, not an error.
	got, err := s.LoadUserData("missing_user")
	if err != nil {
		t.Fatalf("LoadUserData(missing) error: %v", err)
	}
	if got != nil {
		t.Fatalf("LoadUserData(missing) = %+v, want nil", got)
	}

	// Updates against an absent user fail with ErrUserNotFound.
	if err := s.UpdateOnboarding("missing_user", testOnboarding()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateOnboarding(missing) error = %v, want %v", err, ErrUserNotFound)
	}
	if err := s.UpdateCoachStyle("missing_user", models.StyleDavidGoggins); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateCoachStyle(missing) error = %v, want %v", err, ErrUserNotFound)
	}

	userData := testUserData("sarah_johnson_20250101_120000")
	if err := s.SaveUserData(userData); err != nil {
		t.Fatalf("SaveUserData() error: %v", err)
	}

	got, err = s.LoadUserData(userData.UserID)
	if err != nil {
		t.Fatalf("LoadUserData() error: %v", err)
	}
	if got == nil {
		t.Fatal("LoadUserData() = nil after save")
	}
	if got.Profile.Name != "Sarah Johnson" || got.Profile.Age != 28 {
		t.Errorf("loaded profile = %+v", got.Profile)
	}
	if got.Onboarding != nil {
		t.Errorf("Onboarding = %+v before completion, want nil", got.Onboarding)
	}
	if got.CoachStyle.Style != models.StyleNormal {
		t.Errorf("CoachStyle = %q, want %q", got.CoachStyle.Style, models.StyleNormal)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on save")
	}

	if err := s.UpdateOnboarding(userData.UserID, testOnboarding()); err != nil {
		t.Fatalf("UpdateOnboarding() error: %v", err)
	}
	got, err = s.LoadUserData(userData.UserID)
	if err != nil {
		t.Fatalf("LoadUserData() error: %v", err)
	}
	if got.Onboarding == nil {
		t.Fatal("Onboarding = nil after update")
	}
	if got.Onboarding.FocusArea != models.FocusWorkout {
		t.Errorf("Onboarding.FocusArea = %q", got.Onboarding.FocusArea)
	}
	if got.Onboarding.SpecificQuestionAnswer != "I have a gym membership" {
		t.Errorf("Onboarding.SpecificQuestionAnswer = %q", got.Onboarding.SpecificQuestionAnswer)
	}

	if err := s.UpdateCoachStyle(userData.UserID, models.StyleDavidGoggins); err != nil {
		t.Fatalf("UpdateCoachStyle() error: %v", err)
	}
	got, err = s.LoadUserData(userData.UserID)
	if err != nil {
		t.Fatalf("LoadUserData() error: %v", err)
	}
	if got.CoachStyle.Style != models.StyleDavidGoggins {
		t.Errorf("CoachStyle = %q, want %q", got.CoachStyle.Style, models.StyleDavidGoggins)
	}
	// Style change must not disturb onboarding answers.
	if got.Onboarding == nil || got.Onboarding.FocusArea != models.FocusWorkout {
		t.Errorf("onboarding disturbed by style update: %+v", got.Onboarding)
	}

	// Saving again upserts rather than erroring.
	userData.Profile.WeightKg = 58
	if err := s.SaveUserData(userData); err != nil {
		t.Fatalf("SaveUserData() upsert error: %v", err)
	}
	got, err = s.LoadUserData(userData.UserID)
	if err != nil {
		t.Fatalf("LoadUserData() error: %v", err)
	}
	if got.Profile.WeightKg != 58 {
		t.Errorf("WeightKg = %v after upsert, want 58", got.Profile.WeightKg)
	}
}

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	runStoreTests(t, s)
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coachpipe.db")
	s, err := NewSQLiteStore(WithDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer s.Close()
	runStoreTests(t, s)
}

func TestSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(); err == nil {
		t.Error("NewSQLiteStore() succeeded without a DSN")
	}
}

func TestSQLiteStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "state", "coachpipe.db")
	s, err := NewSQLiteStore(WithDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer s.Close()

	if err := s.SaveUserData(testUserData("u_20250101_120000")); err != nil {
		t.Errorf("SaveUserData() error: %v", err)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coachpipe.db")

	s, err := NewSQLiteStore(WithDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	userData := testUserData("sarah_johnson_20250101_120000")
	userData.Onboarding = &models.OnboardingAnswers{
		FocusArea:              models.FocusFood,
		SpecificQuestion:       "What do you usually eat in a typical day?",
		SpecificQuestionAnswer: "Cereal, sandwich, pasta",
		AdditionalInfo:         "Vegetarian",
	}
	if err := s.SaveUserData(userData); err != nil {
		t.Fatalf("SaveUserData() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s, err = NewSQLiteStore(WithDSN(dbPath))
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()

	got, err := s.LoadUserData(userData.UserID)
	if err != nil {
		t.Fatalf("LoadUserData() error: %v", err)
	}
	if got == nil {
		t.Fatal("LoadUserData() = nil after reopen")
	}
	if got.Onboarding == nil || got.Onboarding.SpecificQuestionAnswer != "Cereal, sandwich, pasta" {
		t.Errorf("onboarding not persisted across reopen: %+v", got.Onboarding)
	}
}
