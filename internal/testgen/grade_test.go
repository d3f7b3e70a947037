package testgen

import (
	"testing"

	"github.com/abhisek/disha/internal/roadmap"
)

// gradedQuestions builds 10 questions: 5 on Basics (videos 1-20),
// 5 on Functions (videos 21-40). Correct answer is always option 0.
func gradedQuestions() []Question {
	questions := make([]Question, 10)
	for i := range questions {
		topic := "Basics"
		r := roadmap.ContentRange{Start: 1, End: 20}
		if i >= 5 {
			topic = "Functions"
			r = roadmap.ContentRange{Start: 21, End: 40}
		}
		questions[i] = Question{
			Topic:        topic,
			Range:        r,
			Prompt:       "Q",
			Options:      []string{"right", "a", "b", "c"},
			CorrectIndex: 0,
		}
	}
	return questions
}

func TestGrade_PassAtThreshold(t *testing.T) {
	// 7 of 10 correct is exactly 70%.
	answers := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}
	report, err := Grade(gradedQuestions(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ScorePercent != 70 {
		t.Fatalf("expected 70%%, got %v", report.ScorePercent)
	}
	if !report.Passed {
		t.Fatal("expected pass at threshold")
	}
}

func TestGrade_FailBelowThreshold(t *testing.T) {
	answers := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	report, err := Grade(gradedQuestions(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Passed {
		t.Fatalf("expected fail at %v%%", report.ScorePercent)
	}
}

func TestGrade_WeakAndStrongTopics(t *testing.T) {
	// Basics: 5/5 correct (strong). Functions: 1/5 correct (weak).
	answers := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	report, err := Grade(gradedQuestions(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.StrongTopics) != 1 || report.StrongTopics[0] != "Basics" {
		t.Fatalf("expected Basics strong, got %v", report.StrongTopics)
	}
	if len(report.WeakTopics) != 1 {
		t.Fatalf("expected one weak topic, got %v", report.WeakTopics)
	}
	weak := report.WeakTopics[0]
	if weak.Topic != "Functions" {
		t.Fatalf("expected Functions weak, got %s", weak.Topic)
	}
	if weak.Range != (roadmap.ContentRange{Start: 21, End: 40}) {
		t.Fatalf("weak topic lost its range: %v", weak.Range)
	}
}

func TestGrade_MiddlingTopicNeitherWeakNorStrong(t *testing.T) {
	// Functions: 3/5 = 0.6, between the weak and strong cutoffs.
	answers := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	report, err := Grade(gradedQuestions(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range report.WeakTopics {
		if w.Topic == "Functions" {
			t.Fatal("Functions should not be weak at 0.6")
		}
	}
	for _, s := range report.StrongTopics {
		if s == "Functions" {
			t.Fatal("Functions should not be strong at 0.6")
		}
	}
}

func TestGrade_UnansweredCountsWrong(t *testing.T) {
	answers := []int{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	report, err := Grade(gradedQuestions(), answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ScorePercent != 0 {
		t.Fatalf("expected 0%%, got %v", report.ScorePercent)
	}
	if len(report.WeakTopics) != 2 {
		t.Fatalf("expected both topics weak, got %v", report.WeakTopics)
	}
}

func TestGrade_AnswerCountMismatch(t *testing.T) {
	if _, err := Grade(gradedQuestions(), []int{0, 1}); err == nil {
		t.Fatal("expected error for short answer sheet")
	}
}

func TestGrade_Empty(t *testing.T) {
	if _, err := Grade(nil, nil); err == nil {
		t.Fatal("expected error for empty test")
	}
}

func TestReport_Result(t *testing.T) {
	report := &Report{
		ScorePercent: 40,
		Passed:       false,
		WeakTopics:   []roadmap.WeakTopic{{Topic: "Basics", Range: roadmap.ContentRange{Start: 1, End: 20}}},
	}
	result := report.Result("python")
	if result.SkillSlug != "python" || result.Passed || result.ScorePercent != 40 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.WeakTopics) != 1 {
		t.Fatalf("weak topics not carried: %+v", result)
	}
}
