// Package models defines the core data structures for CoachPipe.
//
// It includes the user health profile, onboarding answers, coach style
// settings, chat messages, and the conversation state enum shared across
// modules.
package models

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Gender enumerates the accepted gender values for a profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ExerciseFrequency enumerates the fixed exercise-frequency levels.
type ExerciseFrequency string

const (
	ExerciseNever           ExerciseFrequency = "never"
	ExerciseRarely          ExerciseFrequency = "rarely"
	ExerciseOneToTwoWeek    ExerciseFrequency = "1-2_times_week"
	ExerciseThreeToFourWeek ExerciseFrequency = "3-4_times_week"
	ExerciseFiveToSixWeek   ExerciseFrequency = "5-6_times_week"
	ExerciseDaily           ExerciseFrequency = "daily"
)

// FocusArea enumerates the two onboarding focus categories.
type FocusArea string

const (
	FocusFood    FocusArea = "food"
	FocusWorkout FocusArea = "workout"
)

// CoachStyleName enumerates the selectable coach personalities.
type CoachStyleName string

const (
	StyleNormal       CoachStyleName = "normal"
	StyleDavidGoggins CoachStyleName = "david_goggins"
)

// ChatState tracks which stage of the conversation a session is in.
type ChatState string

const (
	StateWelcome            ChatState = "welcome"
	StateAskingFocus        ChatState = "asking_focus"
	StateAskingSpecific     ChatState = "asking_specific"
	StateAskingAdditional   ChatState = "asking_additional"
	StateOnboardingComplete ChatState = "onboarding_complete"
	StateMainChat           ChatState = "main_chat"
)

// Validation constants for profile and onboarding fields.
const (
	MinAge    = 13
	MaxAge    = 120
	MinHeight = 100.0
	MaxHeight = 250.0
	MinWeight = 30.0
	MaxWeight = 300.0

	MinGoalLength = 5
	MaxGoalLength = 500

	MinSpecificAnswerLength = 3
	MaxSpecificAnswerLength = 1000
	MaxAdditionalInfoLength = 1000
)

// DefaultAdditionalInfo is stored when the user provides no extra context.
const DefaultAdditionalInfo = "No additional information provided"

// Error variables for better error handling and testability.
var (
	ErrEmptyName                = errors.New("name cannot be empty")
	ErrInvalidNameCharacters    = errors.New("name should contain only letters, spaces, hyphens, and apostrophes")
	ErrAgeOutOfRange            = errors.New("age must be between 13 and 120")
	ErrInvalidGender            = errors.New("gender must be male, female, or other")
	ErrHeightOutOfRange         = errors.New("height must be between 100 and 250 cm")
	ErrWeightOutOfRange         = errors.New("weight must be between 30 and 300 kg")
	ErrInvalidExerciseFrequency = errors.New("invalid exercise frequency")
	ErrGoalLength               = errors.New("goal must be between 5 and 500 characters")
	ErrInvalidFocusArea         = errors.New("focus area must be food or workout")
	ErrSpecificAnswerLength     = errors.New("specific answer must be between 3 and 1000 characters")
	ErrAdditionalInfoTooLong    = errors.New("additional info exceeds maximum length")
	ErrEmptySpecificQuestion    = errors.New("specific question cannot be empty")
	ErrInvalidCoachStyle        = errors.New("coach style must be normal or david_goggins")
	ErrEmptyUserID              = errors.New("user id cannot be empty")
)

// UserProfile holds a user's basic health profile information.
type UserProfile struct {
	Name              string            `json:"name"`
	Age               int               `json:"age"`
	Gender            Gender            `json:"gender"`
	HeightCm          float64           `json:"height_cm"`
	WeightKg          float64           `json:"weight_kg"`
	ExerciseFrequency ExerciseFrequency `json:"exercise_frequency"`
	Goal              string            `json:"goal"`
}

// IsValidGender checks if the given gender value is supported.
func IsValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// IsValidExerciseFrequency checks if the given frequency is one of the six fixed levels.
func IsValidExerciseFrequency(f ExerciseFrequency) bool {
	switch f {
	case ExerciseNever, ExerciseRarely, ExerciseOneToTwoWeek, ExerciseThreeToFourWeek, ExerciseFiveToSixWeek, ExerciseDaily:
		return true
	}
	return false
}

// IsValidFocusArea checks if the given focus area is supported.
func IsValidFocusArea(f FocusArea) bool {
	return f == FocusFood || f == FocusWorkout
}

// IsValidCoachStyle checks if the given coach style is supported.
func IsValidCoachStyle(s CoachStyleName) bool {
	return s == StyleNormal || s == StyleDavidGoggins
}

// validNameRune reports whether r is allowed in a profile name.
func validNameRune(r rune) bool {
	return unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\''
}

// titleCase upper-cases the letter starting each word, where a word
// begins after any non-letter: "mary-anne o'brien" becomes
// "Mary-Anne O'Brien". Runs of whitespace collapse to single spaces.
func titleCase(s string) string {
	runes := []rune(strings.ToLower(strings.Join(strings.Fields(s), " ")))
	boundary := true
	for i, r := range runes {
		if boundary && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
		}
		boundary = !unicode.IsLetter(r)
	}
	return string(runes)
}

// Validate checks all profile fields against their range and shape rules.
// It never clamps: any violation is returned as an error. On success the
// name is normalized to title case.
func (p *UserProfile) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	for _, r := range name {
		if !validNameRune(r) {
			return ErrInvalidNameCharacters
		}
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	if !IsValidGender(p.Gender) {
		return ErrInvalidGender
	}
	if p.HeightCm < MinHeight || p.HeightCm > MaxHeight {
		return ErrHeightOutOfRange
	}
	if p.WeightKg < MinWeight || p.WeightKg > MaxWeight {
		return ErrWeightOutOfRange
	}
	if !IsValidExerciseFrequency(p.ExerciseFrequency) {
		return ErrInvalidExerciseFrequency
	}
	if n := utf8.RuneCountInString(p.Goal); n < MinGoalLength || n > MaxGoalLength {
		return ErrGoalLength
	}
	p.Name = titleCase(name)
	return nil
}

// FirstName returns the first space-separated token of the profile name.
func (p *UserProfile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return p.Name
	}
	return fields[0]
}

// OnboardingAnswers holds the user's answers to the 3 onboarding questions.
type OnboardingAnswers struct {
	FocusArea              FocusArea `json:"focus_area"`
	SpecificQuestion       string    `json:"specific_question"`
	SpecificQuestionAnswer string    `json:"specific_question_answer"`
	AdditionalInfo         string    `json:"additional_info"`
}

// Validate checks onboarding answer fields against their rules.
func (o *OnboardingAnswers) Validate() error {
	if !IsValidFocusArea(o.FocusArea) {
		return ErrInvalidFocusArea
	}
	if o.SpecificQuestion == "" {
		return ErrEmptySpecificQuestion
	}
	if n := utf8.RuneCountInString(o.SpecificQuestionAnswer); n < MinSpecificAnswerLength || n > MaxSpecificAnswerLength {
		return ErrSpecificAnswerLength
	}
	if utf8.RuneCountInString(o.AdditionalInfo) > MaxAdditionalInfoLength {
		return ErrAdditionalInfoTooLong
	}
	return nil
}

// CoachStyle holds the coach personality settings for a user.
type CoachStyle struct {
	Style CoachStyleName `json:"style"`
}

// DefaultCoachStyle returns the default coach style settings.
func DefaultCoachStyle() CoachStyle {
	return CoachStyle{Style: StyleNormal}
}

// Validate rejects any style value outside the closed enum.
func (c *CoachStyle) Validate() error {
	if !IsValidCoachStyle(c.Style) {
		return ErrInvalidCoachStyle
	}
	return nil
}

// UserData is the complete persisted record for a user.
type UserData struct {
	UserID     string             `json:"user_id"`
	Profile    UserProfile        `json:"profile"`
	Onboarding *OnboardingAnswers `json:"onboarding,omitempty"`
	CoachStyle CoachStyle         `json:"coach_style"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Validate checks the aggregate and its populated parts.
func (u *UserData) Validate() error {
	if u.UserID == "" {
		return ErrEmptyUserID
	}
	if err := u.Profile.Validate(); err != nil {
		return err
	}
	if err := u.CoachStyle.Validate(); err != nil {
		return err
	}
	if u.Onboarding != nil {
		if err := u.Onboarding.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat session. Ordering is
// insertion order and is semantically meaningful.
type ChatMessage struct {
	Role      string    `json:"role"` // "assistant" or "user"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
