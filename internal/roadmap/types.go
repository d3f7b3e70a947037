package roadmap

import "time"

// TaskKind distinguishes first-pass study tasks from post-test revision tasks.
type TaskKind string

const (
	TaskStudy    TaskKind = "study"
	TaskRevision TaskKind = "revision"
)

// ContentRange is a contiguous span of playlist videos, 1-based inclusive.
type ContentRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Covers reports whether r fully contains o.
func (r ContentRange) Covers(o ContentRange) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Overlaps reports whether r and o share at least one video.
func (r ContentRange) Overlaps(o ContentRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// ContentRef identifies the playlist chosen for a skill.
type ContentRef struct {
	PlaylistID string `json:"playlist_id"`
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	URL        string `json:"url"`
	VideoCount int    `json:"video_count"`
}

// Task is a single dated unit of work tied to a content range.
// Dates are assigned only by the allocator; the completion flag is set
// only from external completion events. Tasks are never deleted.
type Task struct {
	ID          string
	SkillSlug   string
	Kind        TaskKind
	Seq         int
	Range       ContentRange
	Topic       string // weak-topic label, revision tasks only
	ScheduledOn time.Time
	Completed   bool
	CompletedAt *time.Time
}

// WeakTopic is a topic tag reported by a failed test, keyed to the
// content range it came from.
type WeakTopic struct {
	Topic string       `json:"topic"`
	Range ContentRange `json:"range"`
}

// TestResult is the engine-relevant outcome of a skill test attempt.
type TestResult struct {
	SkillSlug    string
	Passed       bool
	ScorePercent float64
	WeakTopics   []WeakTopic
}

// Goal fixes the deadline and the curriculum order at roadmap creation.
// The skill order never changes mid-roadmap.
type Goal struct {
	Text       string
	StartDate  time.Time
	Deadline   time.Time
	SkillOrder []string
}

// Skill is one ordered curriculum unit. Owned exclusively by the Aggregate.
type Skill struct {
	Slug       string
	Name       string
	Position   int
	State      SkillState
	Content    *ContentRef
	Tasks      []*Task
	WeakTopics []WeakTopic
}

// TaskByID returns the skill's task with the given ID, or nil.
func (s *Skill) TaskByID(id string) *Task {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// IncompleteTasks returns the skill's pending tasks in sequence order.
func (s *Skill) IncompleteTasks() []*Task {
	var out []*Task
	for _, t := range s.Tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// studyComplete reports whether every study task is done.
func (s *Skill) studyComplete() bool {
	any := false
	for _, t := range s.Tasks {
		if t.Kind != TaskStudy {
			continue
		}
		any = true
		if !t.Completed {
			return false
		}
	}
	return any
}

// revisionComplete reports whether every revision task is done.
func (s *Skill) revisionComplete() bool {
	any := false
	for _, t := range s.Tasks {
		if t.Kind != TaskRevision {
			continue
		}
		any = true
		if !t.Completed {
			return false
		}
	}
	return any
}

// NextSeq returns the sequence number for the skill's next task.
func (s *Skill) NextSeq() int {
	max := -1
	for _, t := range s.Tasks {
		if t.Seq > max {
			max = t.Seq
		}
	}
	return max + 1
}
