// Package allocator maps ordered pending tasks onto calendar days under
// a per-day capacity bound. It is a pure computation: the current date
// is injected, and re-running with the same inputs yields the same
// assignment, so repeated replans never reshuffle dates for tasks whose
// relative position didn't change.
package allocator

import (
	"time"

	"github.com/abhisek/disha/internal/roadmap"
)

// Assignment pairs a task with its scheduled date.
type Assignment struct {
	TaskID string
	Date   time.Time
}

// Schedule is the result of an allocation run. When the remaining
// effort exceeds the remaining capacity the schedule spills past the
// deadline and Feasible is false; the assignment is still complete so
// the learner always has a plan, just a flagged one.
type Schedule struct {
	Assignments  []Assignment
	ProjectedEnd time.Time
	Feasible     bool
}

// Day truncates a time to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Allocate assigns each pending task a date from today forward using a
// greedy left-to-right bin fill: walk tasks in order, fill the earliest
// day with spare capacity, roll forward. Task order is preserved and no
// day receives more than capacityPerDay tasks.
func Allocate(tasks []*roadmap.Task, today, deadline time.Time, capacityPerDay int) Schedule {
	if capacityPerDay < 1 {
		capacityPerDay = 1
	}

	day := Day(today)
	end := Day(deadline)

	sched := Schedule{Feasible: true}
	used := 0
	for _, t := range tasks {
		if used == capacityPerDay {
			day = day.AddDate(0, 0, 1)
			used = 0
		}
		sched.Assignments = append(sched.Assignments, Assignment{TaskID: t.ID, Date: day})
		sched.ProjectedEnd = day
		used++
	}

	if sched.ProjectedEnd.After(end) {
		sched.Feasible = false
	}
	return sched
}

// Fits reports whether n tasks fit between today and the deadline at
// the given capacity, without running a full allocation.
func Fits(n int, today, deadline time.Time, capacityPerDay int) bool {
	if capacityPerDay < 1 {
		capacityPerDay = 1
	}
	days := int(Day(deadline).Sub(Day(today)).Hours()/24) + 1
	if days < 0 {
		days = 0
	}
	return n <= days*capacityPerDay
}
