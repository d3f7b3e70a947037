// Package replan is the single mutating entry point for the roadmap.
// Every event (playlist chosen, task done, test graded, daily sweep)
// flows through the Replanner, which loads the aggregate, applies the
// event, reallocates the calendar and persists the whole result in one
// transaction. A failed step persists nothing.
package replan

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/abhisek/disha/internal/allocator"
	"github.com/abhisek/disha/internal/roadmap"
	"github.com/abhisek/disha/internal/taskgen"
)

// Notification kinds emitted by the replanner.
const (
	NoteContentSelected    = "content_selected"
	NoteReplanned          = "roadmap_replanned"
	NoteTestReady          = "skill_test_ready"
	NoteTestPassed         = "skill_test_passed"
	NoteTestFailed         = "skill_test_failed"
	NoteScheduleInfeasible = "schedule_infeasible"
	NoteRoadmapDone        = "roadmap_done"
)

// Store is the persistence surface the replanner needs.
type Store interface {
	LoadAggregate(ctx context.Context) (*roadmap.Aggregate, error)
	SaveAggregate(ctx context.Context, a *roadmap.Aggregate) error
	AppendNotification(ctx context.Context, kind, title, body string) error
}

// Outcome summarizes one replanner run.
type Outcome struct {
	Transitions  []roadmap.StateTransition
	ProjectedEnd time.Time
	OnTrack      bool
	Scheduled    int // pending tasks placed on the calendar
}

// Replanner serializes all roadmap mutations.
type Replanner struct {
	mu    sync.Mutex
	store Store
	cfg   taskgen.Config
	now   func() time.Time
}

// Option configures a Replanner.
type Option func(*Replanner)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Replanner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTaskConfig overrides task sizing.
func WithTaskConfig(cfg taskgen.Config) Option {
	return func(r *Replanner) { r.cfg = cfg }
}

// New creates a Replanner.
func New(store Store, opts ...Option) *Replanner {
	r := &Replanner{
		store: store,
		cfg:   taskgen.DefaultConfig(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init creates a fresh roadmap. Only one roadmap exists at a time;
// starting over requires an explicit reset first.
func (r *Replanner) Init(ctx context.Context, goalText string, skillNames []string, start, deadline time.Time, capacityPerDay, targetMinutes int) (*roadmap.Aggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.LoadAggregate(ctx)
	if err != nil {
		return nil, &roadmap.CollaboratorError{Collaborator: "store", Err: err}
	}
	if existing != nil {
		return nil, &roadmap.ContractViolationError{Op: "init", Reason: "a roadmap already exists; reset it first"}
	}
	if !deadline.After(start) {
		return nil, &roadmap.ContractViolationError{Op: "init", Reason: "deadline must be after the start date"}
	}
	if len(skillNames) == 0 {
		return nil, &roadmap.ContractViolationError{Op: "init", Reason: "at least one skill is required"}
	}

	a := roadmap.New(goalText, skillNames, start, deadline, capacityPerDay, targetMinutes)
	if len(a.Skills) == 0 {
		return nil, &roadmap.ContractViolationError{Op: "init", Reason: "no valid skill names"}
	}
	a.LastReplannedAt = r.now()

	if err := r.commit(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// HandlePlaylistSelected attaches the chosen playlist to the skill,
// generates its study tasks and schedules them.
func (r *Replanner) HandlePlaylistSelected(ctx context.Context, slug string, ref roadmap.ContentRef) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	transition, err := a.SelectContent(slug, ref)
	if err != nil {
		return nil, err
	}

	skill := a.SkillBySlug(slug)
	cfg := r.cfg
	cfg.TargetMinutesPerDay = a.TargetMinutes
	skill.Tasks = taskgen.StudyTasks(skill, ref, cfg)

	outcome := r.reallocate(a)
	outcome.Transitions = []roadmap.StateTransition{transition}

	if err := r.commit(ctx, a); err != nil {
		return nil, err
	}

	r.notify(ctx, NoteContentSelected, "Playlist Selected",
		fmt.Sprintf("%s: %q (%d videos, %d study tasks).", skill.Name, ref.Title, ref.VideoCount, len(skill.Tasks)))
	r.notifyInfeasible(ctx, a, outcome)
	return outcome, nil
}

// HandleTaskCompleted records a finished task, advances the skill state
// when the completion closes out study or revision work, and replans the
// remaining tasks.
func (r *Replanner) HandleTaskCompleted(ctx context.Context, taskID string) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	transitions, err := a.RecordCompletion(taskID, r.now())
	if err != nil {
		return nil, err
	}

	outcome := r.reallocate(a)
	outcome.Transitions = transitions

	if err := r.commit(ctx, a); err != nil {
		return nil, err
	}

	for _, tr := range transitions {
		if tr.To == roadmap.StateTested || tr.To == roadmap.StateRetesting {
			skill := a.SkillBySlug(tr.Skill)
			r.notify(ctx, NoteTestReady, "Test Ready",
				fmt.Sprintf("%s is ready for its skill test.", skill.Name))
		}
	}
	r.notifyInfeasible(ctx, a, outcome)
	return outcome, nil
}

// HandleTestResult applies a graded test. A fail turns the reported weak
// topics into revision tasks, deduplicated against revision work already
// pending; a pass unlocks the next skill.
func (r *Replanner) HandleTestResult(ctx context.Context, result roadmap.TestResult) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	transitions, err := a.ApplyTestResult(result)
	if err != nil {
		return nil, err
	}

	skill := a.SkillBySlug(result.SkillSlug)
	if !result.Passed {
		cfg := r.cfg
		cfg.TargetMinutesPerDay = a.TargetMinutes
		revision := taskgen.RevisionTasks(skill, result.WeakTopics, cfg)
		skill.Tasks = append(skill.Tasks, revision...)
		if len(skill.IncompleteTasks()) == 0 {
			// Nothing left to revise, so the retest gate is already
			// satisfied. Without this the skill would deadlock in
			// remediation waiting for work that will never exist.
			skill.State = roadmap.StateRetesting
			transitions = append(transitions, roadmap.StateTransition{
				Skill: skill.Slug, From: roadmap.StateRemediation, To: roadmap.StateRetesting,
				Trigger: "revision-complete",
			})
		}
	}

	outcome := r.reallocate(a)
	outcome.Transitions = transitions

	if err := r.commit(ctx, a); err != nil {
		return nil, err
	}

	if result.Passed {
		r.notify(ctx, NoteTestPassed, "Test Passed",
			fmt.Sprintf("%s passed at %.0f%%.", skill.Name, result.ScorePercent))
		if a.Done() {
			r.notify(ctx, NoteRoadmapDone, "Roadmap Complete",
				fmt.Sprintf("Every skill for %q has been passed.", a.Goal.Text))
		}
	} else {
		r.notify(ctx, NoteTestFailed, "Test Failed",
			fmt.Sprintf("%s scored %.0f%%; %d weak topics queued for revision.",
				skill.Name, result.ScorePercent, len(result.WeakTopics)))
	}
	r.notifyInfeasible(ctx, a, outcome)
	return outcome, nil
}

// Sweep reallocates pending work from today forward. Tasks whose dates
// have slipped into the past move to the earliest open day; running the
// sweep twice on the same day is a no-op.
func (r *Replanner) Sweep(ctx context.Context) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	moved := r.overdueCount(a)
	outcome := r.reallocate(a)

	if err := r.commit(ctx, a); err != nil {
		return nil, err
	}

	if moved > 0 {
		r.notify(ctx, NoteReplanned, "Roadmap Updated",
			fmt.Sprintf("Rescheduled %d overdue tasks.", moved))
	}
	r.notifyInfeasible(ctx, a, outcome)
	return outcome, nil
}

// load fetches the aggregate, failing when no roadmap exists.
func (r *Replanner) load(ctx context.Context) (*roadmap.Aggregate, error) {
	a, err := r.store.LoadAggregate(ctx)
	if err != nil {
		return nil, &roadmap.CollaboratorError{Collaborator: "store", Err: err}
	}
	if a == nil {
		return nil, &roadmap.ContractViolationError{Op: "replan", Reason: "no roadmap exists"}
	}
	return a, nil
}

// reallocate places the current skill's pending tasks on the calendar.
func (r *Replanner) reallocate(a *roadmap.Aggregate) *Outcome {
	outcome := &Outcome{OnTrack: true}

	skill := a.CurrentSkill()
	if skill == nil {
		a.LastReplannedAt = r.now()
		return outcome
	}

	pending := skill.IncompleteTasks()
	sched := allocator.Allocate(pending, r.now(), a.Goal.Deadline, a.CapacityPerDay)
	byID := make(map[string]time.Time, len(sched.Assignments))
	for _, assignment := range sched.Assignments {
		byID[assignment.TaskID] = assignment.Date
	}
	for _, t := range pending {
		t.ScheduledOn = byID[t.ID]
	}

	a.LastReplannedAt = r.now()
	outcome.ProjectedEnd = sched.ProjectedEnd
	outcome.OnTrack = sched.Feasible
	outcome.Scheduled = len(sched.Assignments)
	return outcome
}

func (r *Replanner) overdueCount(a *roadmap.Aggregate) int {
	skill := a.CurrentSkill()
	if skill == nil {
		return 0
	}
	today := allocator.Day(r.now())
	count := 0
	for _, t := range skill.IncompleteTasks() {
		if !t.ScheduledOn.IsZero() && allocator.Day(t.ScheduledOn).Before(today) {
			count++
		}
	}
	return count
}

// commit validates invariants and persists the aggregate atomically.
func (r *Replanner) commit(ctx context.Context, a *roadmap.Aggregate) error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	if err := r.store.SaveAggregate(ctx, a); err != nil {
		return &roadmap.CollaboratorError{Collaborator: "store", Err: err}
	}
	return nil
}

// notify records a notification. Delivery is best effort: the mutation
// has already been committed, so a notification failure only warns.
func (r *Replanner) notify(ctx context.Context, kind, title, body string) {
	if err := r.store.AppendNotification(ctx, kind, title, body); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record notification: %v\n", err)
	}
}

func (r *Replanner) notifyInfeasible(ctx context.Context, a *roadmap.Aggregate, outcome *Outcome) {
	if outcome.OnTrack || outcome.Scheduled == 0 {
		return
	}
	days := int(allocator.Day(outcome.ProjectedEnd).Sub(allocator.Day(a.Goal.Deadline)).Hours() / 24)
	r.notify(ctx, NoteScheduleInfeasible, "Deadline At Risk",
		fmt.Sprintf("Remaining work projects %d days past the deadline. Raise daily capacity or move the deadline.", days))
}
