package testgen

import (
	"fmt"

	"github.com/abhisek/disha/internal/roadmap"
)

// fallbackForms are question templates cycled over the skill's topics.
// The correct option always names the topic the question is about, with
// the other topics (or stock distractors) filling the remaining slots.
var fallbackForms = []struct {
	prompt     string
	difficulty string
}{
	{"Which topic introduces the core concepts you studied around %q?", DifficultyBasic},
	{"A practice exercise on %q belongs to which part of the course?", DifficultyBasic},
	{"Which area should you revisit if problems involving %q feel hard?", DifficultyMedium},
	{"Applying what the course teaches about %q falls under which topic?", DifficultyMedium},
}

var stockDistractors = []string{
	"Course introduction",
	"Environment setup",
	"Project walkthrough",
}

// FallbackQuestions builds a deterministic self-check test from the
// topic list alone. It is a comprehension prompt, not a real exam, and
// only runs when the LLM provider is unreachable.
func FallbackQuestions(skill *roadmap.Skill, topics []string) []Question {
	if len(topics) == 0 {
		topics = []string{skill.Name}
	}

	questions := make([]Question, 0, QuestionCount)
	for i := 0; len(questions) < QuestionCount; i++ {
		topic := topics[i%len(topics)]
		form := fallbackForms[i%len(fallbackForms)]
		correct := i % 4

		distractors := distractorsFor(topics, topic, i)
		options := make([]string, 0, 4)
		for _, d := range distractors {
			if len(options) == correct {
				options = append(options, topic)
			}
			options = append(options, d)
		}
		if len(options) == correct {
			options = append(options, topic)
		}

		questions = append(questions, Question{
			Topic:        topic,
			Prompt:       fmt.Sprintf(form.prompt, topic),
			Options:      options,
			CorrectIndex: correct,
			Difficulty:   form.difficulty,
		})
	}
	return questions
}

// distractorsFor returns three distinct wrong options, preferring the
// other course topics and padding with stock distractors.
func distractorsFor(topics []string, correct string, seed int) []string {
	out := make([]string, 0, 3)
	for i := 0; i < len(topics) && len(out) < 3; i++ {
		candidate := topics[(seed+i)%len(topics)]
		if candidate != correct && !contains(out, candidate) {
			out = append(out, candidate)
		}
	}
	for i := 0; len(out) < 3 && i < len(stockDistractors); i++ {
		if !contains(out, stockDistractors[i]) {
			out = append(out, stockDistractors[i])
		}
	}
	for len(out) < 3 {
		out = append(out, fmt.Sprintf("Review section %d", len(out)+1))
	}
	return out
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
