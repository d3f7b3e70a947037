package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Assessment is a stored test attempt for a skill.
type Assessment struct {
	ID             string
	RoadmapID      string
	SkillSlug      string
	Attempt        int
	QuestionsJSON  string
	AnswerKeyJSON  string
	AnswersJSON    string
	ScorePercent   float64
	Passed         bool
	WeakTopicsJSON string
	CreatedAt      time.Time
	SubmittedAt    *time.Time
}

// CreateAssessment stores a freshly generated attempt.
func (s *Store) CreateAssessment(ctx context.Context, a *Assessment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, roadmap_id, skill_slug, attempt, questions_json, answer_key_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RoadmapID, a.SkillSlug, a.Attempt, a.QuestionsJSON, a.AnswerKeyJSON,
		a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// SubmitAssessment records answers and the graded outcome.
func (s *Store) SubmitAssessment(ctx context.Context, id, answersJSON string, score float64, passed bool, weakTopicsJSON string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments
		SET answers_json = ?, score_percent = ?, passed = ?, weak_topics_json = ?, submitted_at = ?
		WHERE id = ? AND submitted_at IS NULL`,
		answersJSON, score, boolToInt(passed), weakTopicsJSON, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("submit assessment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assessment %s not found or already submitted", id)
	}
	return nil
}

// LatestAssessment returns the most recent attempt for a skill, or nil.
func (s *Store) LatestAssessment(ctx context.Context, roadmapID, skillSlug string) (*Assessment, error) {
	a := &Assessment{}
	var createdAt string
	var answers, weak sql.NullString
	var score sql.NullFloat64
	var passed sql.NullInt64
	var submittedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, roadmap_id, skill_slug, attempt, questions_json, answer_key_json,
		       answers_json, score_percent, passed, weak_topics_json, created_at, submitted_at
		FROM assessments WHERE roadmap_id = ? AND skill_slug = ?
		ORDER BY attempt DESC LIMIT 1`, roadmapID, skillSlug).
		Scan(&a.ID, &a.RoadmapID, &a.SkillSlug, &a.Attempt, &a.QuestionsJSON, &a.AnswerKeyJSON,
			&answers, &score, &passed, &weak, &createdAt, &submittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query assessment: %w", err)
	}

	a.AnswersJSON = answers.String
	a.ScorePercent = score.Float64
	a.Passed = passed.Int64 != 0
	a.WeakTopicsJSON = weak.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
	if submittedAt.Valid {
		if t, err := time.Parse(time.RFC3339, submittedAt.String); err == nil {
			a.SubmittedAt = &t
		}
	}
	return a, nil
}
