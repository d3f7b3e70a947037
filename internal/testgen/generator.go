package testgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/disha/internal/llm"
	"github.com/abhisek/disha/internal/roadmap"
)

var testSchema = &llm.Schema{
	Name:        "skill-test",
	Description: "A multiple choice test for one skill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": QuestionCount,
				"maxItems": QuestionCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic":    map[string]any{"type": "string"},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 4,
							"maxItems": 4,
						},
						"correct_option_index": map[string]any{
							"type": "integer", "minimum": 0, "maximum": 3,
						},
						"difficulty": map[string]any{
							"type": "string", "enum": []any{DifficultyBasic, DifficultyMedium},
						},
					},
					"required": []any{"topic", "question", "options", "correct_option_index", "difficulty"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

const generatorSystem = `You write multiple choice tests for self-paced learners
who just finished a video course. Write exactly 10 questions: roughly half
basic recall, half medium application. Each question has exactly 4 options
and one correct answer. Use only the listed topics, and set each question's
topic field to one of them verbatim.`

// Generator produces skill tests, preferring the LLM and falling back
// to a deterministic bank when the provider is unavailable.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a test generator.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate builds a test for the skill from the topics its playlist
// covers. When topics is empty the skill name is used as the only topic.
func (g *Generator) Generate(ctx context.Context, skill *roadmap.Skill, topics []string) ([]Question, error) {
	if len(topics) == 0 {
		topics = []string{skill.Name}
	}
	videoCount := 0
	if skill.Content != nil {
		videoCount = skill.Content.VideoCount
	}
	ranges := TopicRanges(topics, videoCount)

	questions, err := g.generateLLM(ctx, skill, topics)
	if err != nil {
		// A failed provider must not block testing. The fallback bank
		// keeps the pipeline moving offline.
		questions = FallbackQuestions(skill, topics)
	}

	for i := range questions {
		questions[i].Range = rangeForTopic(ranges, questions[i].Topic, videoCount)
	}
	return questions, nil
}

func (g *Generator) generateLLM(ctx context.Context, skill *roadmap.Skill, topics []string) ([]Question, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill: %s\nTopics covered by the course, in order:\n", skill.Name)
	for i, topic := range topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, topic)
	}

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, "test-gen"), llm.Request{
		System:    generatorSystem,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:    testSchema,
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decode test: %w", err)
	}
	if len(payload.Questions) != QuestionCount {
		return nil, fmt.Errorf("expected %d questions, got %d", QuestionCount, len(payload.Questions))
	}
	return payload.Questions, nil
}

// TopicRanges spreads the topics evenly over the playlist's videos, in
// topic order. A zero video count yields zero ranges.
func TopicRanges(topics []string, videoCount int) []roadmap.WeakTopic {
	out := make([]roadmap.WeakTopic, len(topics))
	n := len(topics)
	for i, topic := range topics {
		out[i] = roadmap.WeakTopic{Topic: topic}
		if videoCount > 0 {
			out[i].Range = roadmap.ContentRange{
				Start: i*videoCount/n + 1,
				End:   (i + 1) * videoCount / n,
			}
		}
	}
	return out
}

func rangeForTopic(ranges []roadmap.WeakTopic, topic string, videoCount int) roadmap.ContentRange {
	for _, r := range ranges {
		if strings.EqualFold(r.Topic, topic) {
			return r.Range
		}
	}
	// Unknown topic: charge the whole playlist.
	if videoCount > 0 {
		return roadmap.ContentRange{Start: 1, End: videoCount}
	}
	return roadmap.ContentRange{}
}
