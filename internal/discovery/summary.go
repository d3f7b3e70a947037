package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/disha/internal/llm"
)

// Summary is the LLM's structured assessment of a playlist.
type Summary struct {
	TopicOverview        string   `json:"topic_overview"`
	LearningExperience   string   `json:"learning_experience"`
	TopicsCoveredSummary []string `json:"topics_covered_summary"`
}

var summarySchema = &llm.Schema{
	Name:        "playlist-summary",
	Description: "Assessment of a course playlist from its video titles",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic_overview": map[string]any{
				"type":        "string",
				"description": "Two or three sentences on what the playlist teaches",
			},
			"learning_experience": map[string]any{
				"type":        "string",
				"description": "One sentence on pacing and teaching style inferred from the titles",
			},
			"topics_covered_summary": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Major topics in playlist order",
			},
		},
		"required": []any{"topic_overview", "learning_experience", "topics_covered_summary"},
	},
}

const summarySystem = `You review YouTube course playlists for self-paced learners.
Given a playlist's title, channel and video titles, describe what it covers
and how it teaches. Be factual; do not invent topics absent from the titles.`

// summarizePlaylist asks the LLM to describe a playlist from its video titles.
func summarizePlaylist(ctx context.Context, provider llm.Provider, p Playlist, videos []PlaylistVideo) (*Summary, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Playlist: %s\nChannel: %s\nVideos (%d):\n", p.Title, p.Channel, p.VideoCount)
	for _, v := range videos {
		fmt.Fprintf(&b, "%d. %s\n", v.Position+1, v.Title)
	}

	resp, err := provider.Generate(llm.WithPurpose(ctx, "playlist-summary"), llm.Request{
		System:    summarySystem,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:    summarySchema,
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize playlist %s: %w", p.ID, err)
	}

	var summary Summary
	if err := json.Unmarshal(resp.Content, &summary); err != nil {
		return nil, fmt.Errorf("decode playlist summary: %w", err)
	}
	return &summary, nil
}
