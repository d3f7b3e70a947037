// Package testgen builds and grades multiple choice skill tests.
package testgen

import "github.com/abhisek/disha/internal/roadmap"

// Difficulty buckets for generated questions.
const (
	DifficultyBasic  = "basic"
	DifficultyMedium = "medium"
)

// QuestionCount is the fixed size of a skill test.
const QuestionCount = 10

// PassThresholdPercent is the minimum score to pass a skill test.
const PassThresholdPercent = 70.0

// Question is one multiple choice question. Range ties the question
// back to the playlist videos covering its topic, so a miss can be
// converted into revision work.
type Question struct {
	Topic        string               `json:"topic"`
	Range        roadmap.ContentRange `json:"range"`
	Prompt       string               `json:"question"`
	Options      []string             `json:"options"`
	CorrectIndex int                  `json:"correct_option_index"`
	Difficulty   string               `json:"difficulty"`
}

// TopicScore is the per-topic grading breakdown.
type TopicScore struct {
	Topic   string
	Range   roadmap.ContentRange
	Correct int
	Total   int
}

// Ratio returns the fraction of correct answers for the topic.
func (t TopicScore) Ratio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Report is the outcome of grading a submitted answer sheet.
type Report struct {
	ScorePercent float64
	Passed       bool
	Topics       []TopicScore
	WeakTopics   []roadmap.WeakTopic
	StrongTopics []string
}

// Result converts the report into the roadmap's test result form.
func (r Report) Result(skillSlug string) roadmap.TestResult {
	return roadmap.TestResult{
		SkillSlug:    skillSlug,
		Passed:       r.Passed,
		ScorePercent: r.ScorePercent,
		WeakTopics:   r.WeakTopics,
	}
}
