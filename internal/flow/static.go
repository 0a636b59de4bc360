package flow

import (
	"fmt"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// Scripted interview text. The "Question N of 3" markers and the 🎯
// completion marker double as scaffolding markers: the prompt assembler
// filters messages containing them out of the conversation context so
// scripted text is never re-fed to the model as organic dialogue.

func welcomeMessage(userData models.UserData) string {
	return fmt.Sprintf("Hey %s! 👋 Great to meet you!\n\n"+
		"I'm your AI health coach, and I'm here to help you with your goal: %q\n\n"+
		"Before we dive in, I'd like to ask you a few quick questions to give you the best possible guidance. Sound good?",
		userData.Profile.FirstName(), userData.Profile.Goal)
}

func focusQuestion() string {
	return "**Question 1 of 3:**\n\n" +
		"What would you like help with today?\n" +
		"• **Food** - Nutrition, meal planning, diet optimization\n" +
		"• **Workout** - Exercise routines, training plans, fitness strategies\n\n" +
		"Just type 'food' or 'workout' (or tell me in your own words!)"
}

func focusClarification() string {
	return "I want to make sure I understand! Are you looking for help with:\n" +
		"• **Food** (nutrition, meals, diet)\n" +
		"• **Workout** (exercise, training, fitness)\n\n" +
		"Could you clarify which one interests you most?"
}

func specificQuestion(focus models.FocusArea) string {
	if focus == models.FocusWorkout {
		return "**Question 2 of 3:**\n\n" +
			"Do you have access to a gym, or will you be working out at home?\n\n" +
			"This helps me recommend the right exercises and equipment for your situation!"
	}
	return "**Question 2 of 3:**\n\n" +
		"What do you usually eat in a typical day? Don't worry about being perfect - just give me a rough idea!\n\n" +
		"For example: 'Cereal for breakfast, sandwich for lunch, pasta for dinner' or whatever feels normal for you."
}

func finalQuestion() string {
	return "**Final question (3 of 3):**\n\n" +
		"Is there anything else I should know to give you the best advice? \n\n" +
		"Things like:\n" +
		"• Injuries or physical limitations\n" +
		"• Dietary restrictions or preferences\n" +
		"• Time constraints\n" +
		"• Past experiences with diet/exercise\n\n" +
		"Or just type 'nothing else' if you're all set!"
}

func completionMessage() string {
	return "Perfect! 🎯 I have everything I need.\n\n" +
		"Based on your profile and answers, I'm ready to be your personal health coach. " +
		"Let's start with your first question or goal - what would you like to work on?"
}
