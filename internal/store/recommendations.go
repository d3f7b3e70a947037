package store

import (
	"context"
	"fmt"
)

// Recommendation is a cached playlist candidate for a skill.
type Recommendation struct {
	SkillSlug   string
	Rank        int
	PlaylistID  string
	Title       string
	Channel     string
	URL         string
	VideoCount  int
	RankScore   float64
	SummaryJSON string
	Selected    bool
}

// ReplaceRecommendations swaps the cached candidates for a skill.
func (s *Store) ReplaceRecommendations(ctx context.Context, roadmapID, skillSlug string, recs []Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recommendations WHERE roadmap_id = ? AND skill_slug = ?`, roadmapID, skillSlug); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}

	for i, r := range recs {
		summary := r.SummaryJSON
		if summary == "" {
			summary = "{}"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations (roadmap_id, skill_slug, rank, playlist_id, title, channel, url, video_count, rank_score, summary_json, selected)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			roadmapID, skillSlug, i+1, r.PlaylistID, r.Title, r.Channel, r.URL, r.VideoCount, r.RankScore, summary)
		if err != nil {
			return fmt.Errorf("insert recommendation %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// ListRecommendations returns the cached candidates for a skill in rank order.
func (s *Store) ListRecommendations(ctx context.Context, roadmapID, skillSlug string) ([]Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT skill_slug, rank, playlist_id, title, channel, url, video_count, rank_score, summary_json, selected
		FROM recommendations WHERE roadmap_id = ? AND skill_slug = ? ORDER BY rank`, roadmapID, skillSlug)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		var r Recommendation
		var selected int
		if err := rows.Scan(&r.SkillSlug, &r.Rank, &r.PlaylistID, &r.Title, &r.Channel,
			&r.URL, &r.VideoCount, &r.RankScore, &r.SummaryJSON, &selected); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		r.Selected = selected != 0
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// MarkSelected flags one candidate as the learner's choice.
func (s *Store) MarkSelected(ctx context.Context, roadmapID, skillSlug string, rank int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE recommendations SET selected = 0 WHERE roadmap_id = ? AND skill_slug = ?`,
		roadmapID, skillSlug); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE recommendations SET selected = 1 WHERE roadmap_id = ? AND skill_slug = ? AND rank = ?`,
		roadmapID, skillSlug, rank)
	if err != nil {
		return fmt.Errorf("mark selected: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no recommendation with rank %d for %s", rank, skillSlug)
	}
	return tx.Commit()
}
