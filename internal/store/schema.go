package store

import (
	"context"
	"fmt"
)

// migrations run in order; the applied count is tracked in
// PRAGMA user_version so upgrades are additive.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS roadmaps (
		id TEXT PRIMARY KEY,
		goal_text TEXT NOT NULL,
		start_date TEXT NOT NULL,
		deadline TEXT NOT NULL,
		capacity_per_day INTEGER NOT NULL,
		target_minutes INTEGER NOT NULL,
		last_replanned_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS skills (
		roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		state TEXT NOT NULL,
		content_json TEXT,
		weak_topics_json TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (roadmap_id, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT NOT NULL,
		roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
		skill_slug TEXT NOT NULL,
		kind TEXT NOT NULL,
		seq INTEGER NOT NULL,
		range_start INTEGER NOT NULL,
		range_end INTEGER NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		scheduled_on TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT,
		PRIMARY KEY (roadmap_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
		skill_slug TEXT NOT NULL,
		rank INTEGER NOT NULL,
		playlist_id TEXT NOT NULL,
		title TEXT NOT NULL,
		channel TEXT NOT NULL,
		url TEXT NOT NULL,
		video_count INTEGER NOT NULL,
		rank_score REAL NOT NULL,
		summary_json TEXT NOT NULL DEFAULT '{}',
		selected INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (roadmap_id, skill_slug, rank)
	)`,
	`CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
		skill_slug TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		questions_json TEXT NOT NULL,
		answer_key_json TEXT NOT NULL,
		answers_json TEXT,
		score_percent REAL,
		passed INTEGER,
		weak_topics_json TEXT,
		created_at TEXT NOT NULL,
		submitted_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_schedule ON tasks (roadmap_id, skill_slug, completed, scheduled_on)`,
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("bump user_version: %w", err)
		}
	}
	return nil
}
