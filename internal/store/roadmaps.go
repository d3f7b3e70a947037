package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/disha/internal/roadmap"
)

const dateFormat = "2006-01-02"

// SaveAggregate writes the aggregate (roadmap row, skills, and tasks)
// in one transaction. A replanner invocation that fails midway leaves
// the previous state untouched.
func (s *Store) SaveAggregate(ctx context.Context, a *roadmap.Aggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	var lastReplanned any
	if !a.LastReplannedAt.IsZero() {
		lastReplanned = a.LastReplannedAt.UTC().Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO roadmaps (id, goal_text, start_date, deadline, capacity_per_day, target_minutes, last_replanned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_text = excluded.goal_text,
			last_replanned_at = excluded.last_replanned_at,
			updated_at = excluded.updated_at`,
		a.ID, a.Goal.Text,
		a.Goal.StartDate.Format(dateFormat), a.Goal.Deadline.Format(dateFormat),
		a.CapacityPerDay, a.TargetMinutes, lastReplanned, now, now)
	if err != nil {
		return fmt.Errorf("upsert roadmap: %w", err)
	}

	// Skills and tasks are rewritten wholesale; the aggregate in memory
	// is the source of truth and tasks are never dropped from it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM skills WHERE roadmap_id = ?`, a.ID); err != nil {
		return fmt.Errorf("clear skills: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE roadmap_id = ?`, a.ID); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for _, sk := range a.Skills {
		weakJSON, err := json.Marshal(sk.WeakTopics)
		if err != nil {
			return fmt.Errorf("marshal weak topics: %w", err)
		}
		var contentJSON any
		if sk.Content != nil {
			b, err := json.Marshal(sk.Content)
			if err != nil {
				return fmt.Errorf("marshal content ref: %w", err)
			}
			contentJSON = string(b)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO skills (roadmap_id, slug, name, position, state, content_json, weak_topics_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, sk.Slug, sk.Name, sk.Position, string(sk.State), contentJSON, string(weakJSON))
		if err != nil {
			return fmt.Errorf("insert skill %s: %w", sk.Slug, err)
		}

		for _, t := range sk.Tasks {
			var completedAt any
			if t.CompletedAt != nil {
				completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
			}
			var scheduled string
			if !t.ScheduledOn.IsZero() {
				scheduled = t.ScheduledOn.Format(dateFormat)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO tasks (id, roadmap_id, skill_slug, kind, seq, range_start, range_end, topic, scheduled_on, completed, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, a.ID, t.SkillSlug, string(t.Kind), t.Seq,
				t.Range.Start, t.Range.End, t.Topic, scheduled,
				boolToInt(t.Completed), completedAt)
			if err != nil {
				return fmt.Errorf("insert task %s: %w", t.ID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadAggregate reads the most recently created roadmap with its skills
// and tasks. Returns (nil, nil) when no roadmap exists.
func (s *Store) LoadAggregate(ctx context.Context) (*roadmap.Aggregate, error) {
	a := &roadmap.Aggregate{}
	var startDate, deadline string
	var lastReplanned sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, goal_text, start_date, deadline, capacity_per_day, target_minutes, last_replanned_at
		FROM roadmaps ORDER BY created_at DESC LIMIT 1`).
		Scan(&a.ID, &a.Goal.Text, &startDate, &deadline, &a.CapacityPerDay, &a.TargetMinutes, &lastReplanned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query roadmap: %w", err)
	}

	if a.Goal.StartDate, err = time.Parse(dateFormat, startDate); err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	if a.Goal.Deadline, err = time.Parse(dateFormat, deadline); err != nil {
		return nil, fmt.Errorf("parse deadline: %w", err)
	}
	if lastReplanned.Valid {
		t, err := time.Parse(time.RFC3339, lastReplanned.String)
		if err == nil {
			a.LastReplannedAt = t
		}
	}

	if err := s.loadSkills(ctx, a); err != nil {
		return nil, err
	}
	if err := s.loadTasks(ctx, a); err != nil {
		return nil, err
	}
	for _, sk := range a.Skills {
		a.Goal.SkillOrder = append(a.Goal.SkillOrder, sk.Slug)
	}
	return a, nil
}

func (s *Store) loadSkills(ctx context.Context, a *roadmap.Aggregate) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, position, state, content_json, weak_topics_json
		FROM skills WHERE roadmap_id = ? ORDER BY position`, a.ID)
	if err != nil {
		return fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sk := &roadmap.Skill{}
		var state string
		var contentJSON sql.NullString
		var weakJSON string
		if err := rows.Scan(&sk.Slug, &sk.Name, &sk.Position, &state, &contentJSON, &weakJSON); err != nil {
			return fmt.Errorf("scan skill: %w", err)
		}
		sk.State = roadmap.SkillState(state)
		if contentJSON.Valid {
			var ref roadmap.ContentRef
			if err := json.Unmarshal([]byte(contentJSON.String), &ref); err != nil {
				return fmt.Errorf("unmarshal content ref for %s: %w", sk.Slug, err)
			}
			sk.Content = &ref
		}
		if err := json.Unmarshal([]byte(weakJSON), &sk.WeakTopics); err != nil {
			return fmt.Errorf("unmarshal weak topics for %s: %w", sk.Slug, err)
		}
		a.Skills = append(a.Skills, sk)
	}
	return rows.Err()
}

func (s *Store) loadTasks(ctx context.Context, a *roadmap.Aggregate) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill_slug, kind, seq, range_start, range_end, topic, scheduled_on, completed, completed_at
		FROM tasks WHERE roadmap_id = ? ORDER BY skill_slug, seq`, a.ID)
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	bySlug := make(map[string]*roadmap.Skill, len(a.Skills))
	for _, sk := range a.Skills {
		bySlug[sk.Slug] = sk
	}

	for rows.Next() {
		t := &roadmap.Task{}
		var kind, scheduled string
		var completed int
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.SkillSlug, &kind, &t.Seq,
			&t.Range.Start, &t.Range.End, &t.Topic, &scheduled, &completed, &completedAt); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		t.Kind = roadmap.TaskKind(kind)
		t.Completed = completed != 0
		if scheduled != "" {
			if t.ScheduledOn, err = time.Parse(dateFormat, scheduled); err != nil {
				return fmt.Errorf("parse scheduled date for %s: %w", t.ID, err)
			}
		}
		if completedAt.Valid {
			at, err := time.Parse(time.RFC3339, completedAt.String)
			if err == nil {
				t.CompletedAt = &at
			}
		}
		sk, ok := bySlug[t.SkillSlug]
		if !ok {
			return fmt.Errorf("task %s references unknown skill %s", t.ID, t.SkillSlug)
		}
		sk.Tasks = append(sk.Tasks, t)
	}
	return rows.Err()
}

// Reset deletes all learner data.
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{"tasks", "skills", "recommendations", "assessments", "notifications", "roadmaps"}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
