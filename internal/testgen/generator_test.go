package testgen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/disha/internal/llm"
	"github.com/abhisek/disha/internal/roadmap"
)

func testSkill() *roadmap.Skill {
	return &roadmap.Skill{
		Slug:  "python",
		Name:  "Python",
		State: roadmap.StateTested,
		Content: &roadmap.ContentRef{
			PlaylistID: "PL1",
			Title:      "Python Full Course",
			VideoCount: 40,
		},
	}
}

func cannedTest(t *testing.T) json.RawMessage {
	t.Helper()
	questions := make([]Question, QuestionCount)
	topics := []string{"Basics", "Functions"}
	for i := range questions {
		questions[i] = Question{
			Topic:        topics[i%2],
			Prompt:       "Which statement is true?",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			Difficulty:   DifficultyBasic,
		}
	}
	b, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestGenerate_FromLLM(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{Content: cannedTest(t)})
	g := NewGenerator(provider)

	questions, err := g.Generate(context.Background(), testSkill(), []string{"Basics", "Functions"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("expected %d questions, got %d", QuestionCount, len(questions))
	}

	// Two topics over 40 videos: first half 1-20, second half 21-40.
	for _, q := range questions {
		want := roadmap.ContentRange{Start: 1, End: 20}
		if q.Topic == "Functions" {
			want = roadmap.ContentRange{Start: 21, End: 40}
		}
		if q.Range != want {
			t.Fatalf("topic %s: expected range %v, got %v", q.Topic, want, q.Range)
		}
	}
}

func TestGenerate_FallsBackWhenProviderFails(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	g := NewGenerator(provider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	questions, err := g.Generate(ctx, testSkill(), []string{"Basics", "Functions", "OOP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("expected %d questions, got %d", QuestionCount, len(questions))
	}
	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			t.Fatalf("question %d: correct index out of range: %d", i, q.CorrectIndex)
		}
		if q.Options[q.CorrectIndex] != q.Topic {
			t.Fatalf("question %d: correct option %q does not name topic %q",
				i, q.Options[q.CorrectIndex], q.Topic)
		}
		if q.Range.Start < 1 || q.Range.End > 40 {
			t.Fatalf("question %d: range %v outside playlist", i, q.Range)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(llm.NewMockProvider()) // empty queue forces fallback
	a, _ := g.Generate(context.Background(), testSkill(), []string{"Basics", "OOP"})
	g2 := NewGenerator(llm.NewMockProvider())
	b, _ := g2.Generate(context.Background(), testSkill(), []string{"Basics", "OOP"})

	for i := range a {
		if a[i].Prompt != b[i].Prompt || a[i].CorrectIndex != b[i].CorrectIndex {
			t.Fatalf("question %d differs between runs", i)
		}
	}
}

func TestTopicRanges_CoverPlaylist(t *testing.T) {
	topics := []string{"A", "B", "C"}
	ranges := TopicRanges(topics, 10)

	if ranges[0].Range.Start != 1 {
		t.Fatalf("first range starts at %d", ranges[0].Range.Start)
	}
	if ranges[len(ranges)-1].Range.End != 10 {
		t.Fatalf("last range ends at %d", ranges[len(ranges)-1].Range.End)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Range.Start != ranges[i-1].Range.End+1 {
			t.Fatalf("ranges not contiguous at %d: %v then %v", i, ranges[i-1].Range, ranges[i].Range)
		}
	}
}

func TestGenerate_RejectsWrongQuestionCount(t *testing.T) {
	short, _ := json.Marshal(map[string]any{"questions": []Question{{
		Topic: "Basics", Prompt: "Q", Options: []string{"a", "b", "c", "d"},
	}}})
	provider := llm.NewMockProvider(llm.MockResponse{Content: short})
	g := NewGenerator(provider)

	// Short LLM output falls through to the fallback bank.
	questions, err := g.Generate(context.Background(), testSkill(), []string{"Basics"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("expected %d questions, got %d", QuestionCount, len(questions))
	}
}
