// Package taskgen turns a skill's chosen playlist into ordered work
// units. It is pure: the same inputs always produce the same task list,
// and no dates are assigned here; scheduling belongs to the allocator.
package taskgen

import (
	"fmt"

	"github.com/abhisek/disha/internal/roadmap"
)

// Config sizes study tasks against a per-day effort target.
type Config struct {
	// TargetMinutesPerDay is how much content one study task should
	// cover. Default: 60.
	TargetMinutesPerDay int

	// MinutesPerVideo estimates segment effort when the playlist has no
	// per-video durations. Default: 15.
	MinutesPerVideo int

	// MaxRevisionPerFailure caps revision tasks added per failed test.
	// Default: 3.
	MaxRevisionPerFailure int
}

// DefaultConfig returns the standard task sizing.
func DefaultConfig() Config {
	return Config{
		TargetMinutesPerDay:   60,
		MinutesPerVideo:       15,
		MaxRevisionPerFailure: 3,
	}
}

func (c Config) withDefaults() Config {
	if c.TargetMinutesPerDay < 1 {
		c.TargetMinutesPerDay = 60
	}
	if c.MinutesPerVideo < 1 {
		c.MinutesPerVideo = 15
	}
	if c.MaxRevisionPerFailure < 1 {
		c.MaxRevisionPerFailure = 3
	}
	return c
}

// taskID builds a stable, human-typable task identifier.
func taskID(slug string, kind roadmap.TaskKind, seq int) string {
	return fmt.Sprintf("%s-%s-%02d", slug, kind, seq)
}

// StudyTasks splits the skill's playlist into contiguous video ranges,
// one task per day-sized chunk of content.
func StudyTasks(skill *roadmap.Skill, content roadmap.ContentRef, cfg Config) []*roadmap.Task {
	cfg = cfg.withDefaults()

	videos := content.VideoCount
	if videos < 1 {
		videos = 1
	}

	totalMinutes := videos * cfg.MinutesPerVideo
	count := (totalMinutes + cfg.TargetMinutesPerDay - 1) / cfg.TargetMinutesPerDay
	if count < 1 {
		count = 1
	}
	if count > videos {
		count = videos
	}

	tasks := make([]*roadmap.Task, 0, count)
	for i := 0; i < count; i++ {
		start := i*videos/count + 1
		end := (i + 1) * videos / count
		if end < start {
			end = start
		}
		tasks = append(tasks, &roadmap.Task{
			ID:        taskID(skill.Slug, roadmap.TaskStudy, i),
			SkillSlug: skill.Slug,
			Kind:      roadmap.TaskStudy,
			Seq:       i,
			Range:     roadmap.ContentRange{Start: start, End: end},
		})
	}
	return tasks
}

// RevisionTasks emits one revision task per reported weak topic whose
// content range is not already covered by an incomplete revision task.
// Dedup is a set difference over ranges, not flags on tasks.
func RevisionTasks(skill *roadmap.Skill, weak []roadmap.WeakTopic, cfg Config) []*roadmap.Task {
	cfg = cfg.withDefaults()

	var covered []roadmap.ContentRange
	for _, t := range skill.Tasks {
		if t.Kind == roadmap.TaskRevision && !t.Completed {
			covered = append(covered, t.Range)
		}
	}

	seq := skill.NextSeq()
	var tasks []*roadmap.Task
	for _, w := range weak {
		if len(tasks) == cfg.MaxRevisionPerFailure {
			break
		}
		if coveredBy(covered, w.Range) {
			continue
		}
		tasks = append(tasks, &roadmap.Task{
			ID:        taskID(skill.Slug, roadmap.TaskRevision, seq),
			SkillSlug: skill.Slug,
			Kind:      roadmap.TaskRevision,
			Seq:       seq,
			Range:     w.Range,
			Topic:     w.Topic,
		})
		covered = append(covered, w.Range)
		seq++
	}
	return tasks
}

func coveredBy(ranges []roadmap.ContentRange, r roadmap.ContentRange) bool {
	for _, c := range ranges {
		if c.Covers(r) {
			return true
		}
	}
	return false
}
