// Package prompt assembles system instructions for the coaching model.
//
// Everything here is a pure function over the user's profile, onboarding
// answers, and chat history: no I/O, no state. The section order of the
// assembled prompt is a contract - personality and format blocks form a
// stable prefix, history and the current message form the volatile suffix.
package prompt

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// Personality describes a coach style's tone and voice.
type Personality struct {
	Tone        string
	Style       string
	Personality string
}

// personalities is the closed two-entry coach style table. Styles outside
// this table are a configuration error, never user input.
var personalities = map[models.CoachStyleName]Personality{
	models.StyleNormal: {
		Tone:        "friendly, encouraging, and supportive",
		Style:       "Give practical, science-based advice with a warm, motivational tone",
		Personality: "You're a knowledgeable but approachable health coach",
	},
	models.StyleDavidGoggins: {
		Tone:        "intense, direct, and no-nonsense",
		Style:       "Challenge them with tough love, push them beyond comfort zones",
		Personality: "You're David Goggins - mental toughness, discipline, embrace the suck",
	},
}

// PersonalityFor looks up the personality entry for a coach style.
func PersonalityFor(style models.CoachStyleName) (Personality, error) {
	p, ok := personalities[style]
	if !ok {
		return Personality{}, fmt.Errorf("unknown coach style %q", style)
	}
	return p, nil
}

// Conversation context limits.
const (
	maxContextMessages      = 10
	maxRenderedConversation = 5
)

// scaffoldMarkers identify scripted onboarding messages that must not be
// replayed to the model as organic dialogue. Matching is lowercase.
var scaffoldMarkers = []string{
	"question 1 of 3",
	"question 2 of 3",
	"final question",
	"perfect! 🎯",
}

// BuildSystemPrompt creates the main system instruction with full user
// context. It fails only on an unknown coach style.
func BuildSystemPrompt(userData models.UserData, onboarding models.OnboardingAnswers) (string, error) {
	personality, err := PersonalityFor(userData.CoachStyle.Style)
	if err != nil {
		return "", err
	}

	userContext := buildUserContext(userData, onboarding)
	guidelines := coachingGuidelines(userData.CoachStyle.Style)
	format := responseFormat(onboarding.FocusArea)

	return fmt.Sprintf(`You are an expert AI health coach with the following personality and approach:

COACH PERSONALITY & TONE:
%s
Tone: %s
Style: %s

USER PROFILE & CONTEXT:
%s

COACHING GUIDELINES:
%s

RESPONSE FORMAT & FOCUS:
%s

Remember: Always be helpful, evidence-based, and tailored to this specific user's context.`,
		personality.Personality, personality.Tone, personality.Style,
		userContext, guidelines, format), nil
}

// buildUserContext renders the profile and onboarding echo, including the
// derived BMI, BMI category, and imperial unit conversions.
func buildUserContext(userData models.UserData, onboarding models.OnboardingAnswers) string {
	profile := userData.Profile

	bmi := BMI(profile.HeightCm, profile.WeightKg)
	category := BMICategory(bmi)

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "Age: %d years old\n", profile.Age)
	fmt.Fprintf(&b, "Gender: %s\n", profile.Gender)
	fmt.Fprintf(&b, "Height: %.0fcm (%s)\n", profile.HeightCm, CmToFeetInches(profile.HeightCm))
	fmt.Fprintf(&b, "Weight: %.0fkg (%dlbs)\n", profile.WeightKg, KgToLbs(profile.WeightKg))
	fmt.Fprintf(&b, "BMI: %.1f (%s)\n", bmi, category)
	fmt.Fprintf(&b, "Exercise Frequency: %s\n", strings.ReplaceAll(string(profile.ExerciseFrequency), "_", " "))
	fmt.Fprintf(&b, "Primary Goal: %q\n", profile.Goal)
	b.WriteString("\nONBOARDING RESPONSES:\n")
	fmt.Fprintf(&b, "Focus Area: %s\n", onboarding.FocusArea)
	fmt.Fprintf(&b, "%s\n", onboarding.SpecificQuestion)
	fmt.Fprintf(&b, "Answer: %q\n", onboarding.SpecificQuestionAnswer)
	fmt.Fprintf(&b, "Additional Context: %q", onboarding.AdditionalInfo)
	return b.String()
}

// coachingGuidelines returns the style-specific guideline bullet list.
func coachingGuidelines(style models.CoachStyleName) string {
	if style == models.StyleDavidGoggins {
		return `• Push them beyond their comfort zone - growth happens in discomfort
• Use direct, sometimes harsh language to break through mental barriers
• Emphasize mental toughness, discipline, and taking ownership
• Challenge excuses and weak mindset thinking
• Focus on doing the hard things that others won't do
• Remind them that pain is temporary but quitting lasts forever
• Make them accountable for their choices and results
• Reference overcoming obstacles and pushing through when it sucks`
	}
	return `• Be encouraging and supportive while maintaining honesty
• Provide practical, actionable advice they can implement today
• Break down complex goals into manageable steps
• Celebrate small wins and progress along the way
• Address challenges with empathy and problem-solving
• Use positive reinforcement and motivation
• Focus on sustainable, long-term habit changes
• Make advice accessible and realistic for their lifestyle`
}

// responseFormat returns the focus-area specific response format block.
func responseFormat(focus models.FocusArea) string {
	if focus == models.FocusWorkout {
		return `WORKOUT RESPONSES SHOULD INCLUDE:
• Specific exercises with sets/reps/duration when relevant
• Progression suggestions (how to advance over time)
• Form cues and safety considerations
• Equipment alternatives if needed
• Recovery and rest day guidance
• Adaptation for any mentioned limitations

FORMAT: Use clear structure with exercise names, specific numbers, and practical tips.`
	}
	return `NUTRITION RESPONSES SHOULD INCLUDE:
• Specific food suggestions and meal ideas
• Portion guidance when relevant
• Timing recommendations (when to eat what)
• Practical prep tips and shortcuts
• Substitutions for dietary restrictions
• Hydration and supplement guidance when appropriate

FORMAT: Use clear meal/snack suggestions with specific foods and practical implementation tips.`
}

// BuildConversationContext renders recent genuine dialogue as USER:/COACH:
// lines. It considers at most the last maxContextMessages messages, drops
// any containing a scaffolding marker, then keeps the last
// maxRenderedConversation survivors in original order.
func BuildConversationContext(history []models.ChatMessage) string {
	if len(history) == 0 {
		return "This is the start of your conversation."
	}

	recent := history
	if len(recent) > maxContextMessages {
		recent = recent[len(recent)-maxContextMessages:]
	}

	var conversation []models.ChatMessage
	for _, msg := range recent {
		if !isScaffoldMessage(msg.Content) {
			conversation = append(conversation, msg)
		}
	}

	if len(conversation) == 0 {
		return "This is the beginning of your coaching conversation."
	}

	if len(conversation) > maxRenderedConversation {
		conversation = conversation[len(conversation)-maxRenderedConversation:]
	}

	var b strings.Builder
	b.WriteString("RECENT CONVERSATION:\n")
	for _, msg := range conversation {
		role := "COACH"
		if msg.Role == models.RoleUser {
			role = "USER"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	return b.String()
}

// isScaffoldMessage reports whether content carries an onboarding
// scaffolding marker.
func isScaffoldMessage(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range scaffoldMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// BuildCoachingPrompt assembles the complete instruction for a coaching
// response: system prompt, conversation context, the quoted current
// message, and the closing instruction, in that order.
func BuildCoachingPrompt(userData models.UserData, onboarding models.OnboardingAnswers, history []models.ChatMessage, userMessage string) (string, error) {
	systemPrompt, err := BuildSystemPrompt(userData, onboarding)
	if err != nil {
		return "", err
	}
	conversationContext := BuildConversationContext(history)

	return fmt.Sprintf(`%s

%s

USER'S CURRENT MESSAGE: %q

Provide a helpful, personalized response as their health coach. Be specific, actionable, and tailored to their profile and goals.`,
		systemPrompt, conversationContext, userMessage), nil
}

// BuildQuickPrompt builds a minimal single-paragraph prompt from only the
// personality block, for lightweight style-preview use.
func BuildQuickPrompt(userMessage string, style models.CoachStyleName) (string, error) {
	personality, err := PersonalityFor(style)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`You are a health coach with this personality:
%s
Tone: %s

Respond to this message: %q

Keep it helpful, brief, and in character.`,
		personality.Personality, personality.Tone, userMessage), nil
}
