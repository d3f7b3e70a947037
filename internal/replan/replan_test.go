package replan

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/disha/internal/allocator"
	"github.com/abhisek/disha/internal/roadmap"
	"github.com/abhisek/disha/internal/store"
)

var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestReplanner(t *testing.T) (*Replanner, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "disha.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	r := New(s, WithClock(func() time.Time { return testStart }))
	return r, s
}

func initRoadmap(t *testing.T, r *Replanner, days int) *roadmap.Aggregate {
	t.Helper()
	a, err := r.Init(context.Background(), "Backend role", []string{"Python", "SQL"},
		testStart, testStart.AddDate(0, 0, days), 2, 60)
	require.NoError(t, err)
	return a
}

func selectPlaylist(t *testing.T, r *Replanner, videos int) *Outcome {
	t.Helper()
	out, err := r.HandlePlaylistSelected(context.Background(), "python", roadmap.ContentRef{
		PlaylistID: "PL1", Title: "Python Full Course", Channel: "Chan",
		URL: "https://www.youtube.com/playlist?list=PL1", VideoCount: videos,
	})
	require.NoError(t, err)
	return out
}

func TestInit(t *testing.T) {
	r, s := newTestReplanner(t)
	a := initRoadmap(t, r, 30)

	assert.Equal(t, roadmap.StateContentPending, a.Skills[0].State)
	assert.Equal(t, roadmap.StateLocked, a.Skills[1].State)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)

	// A second init must be rejected.
	_, err = r.Init(context.Background(), "again", []string{"Go"}, testStart, testStart.AddDate(0, 0, 5), 1, 30)
	var cv *roadmap.ContractViolationError
	require.ErrorAs(t, err, &cv)
}

func TestInit_RejectsBadInput(t *testing.T) {
	r, _ := newTestReplanner(t)

	_, err := r.Init(context.Background(), "goal", []string{"Go"}, testStart, testStart, 1, 30)
	assert.Error(t, err, "deadline equal to start")

	_, err = r.Init(context.Background(), "goal", nil, testStart, testStart.AddDate(0, 0, 5), 1, 30)
	assert.Error(t, err, "no skills")
}

func TestHandlePlaylistSelected_SchedulesStudyTasks(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)

	// 8 videos at 15 min against a 60 min day = 2 study tasks.
	out := selectPlaylist(t, r, 8)
	assert.Equal(t, 2, out.Scheduled)
	assert.True(t, out.OnTrack)
	require.Len(t, out.Transitions, 1)
	assert.Equal(t, roadmap.StateActive, out.Transitions[0].To)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	py := got.SkillBySlug("python")
	require.Len(t, py.Tasks, 2)
	// Capacity 2: both tasks land on day one.
	assert.Equal(t, allocator.Day(testStart), allocator.Day(py.Tasks[0].ScheduledOn))
	assert.Equal(t, allocator.Day(testStart), allocator.Day(py.Tasks[1].ScheduledOn))
}

func TestHandleTaskCompleted_StudyCompleteTriggersTest(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 8)

	out, err := r.HandleTaskCompleted(context.Background(), "python-study-00")
	require.NoError(t, err)
	assert.Empty(t, out.Transitions)

	out, err = r.HandleTaskCompleted(context.Background(), "python-study-01")
	require.NoError(t, err)
	require.Len(t, out.Transitions, 1)
	assert.Equal(t, roadmap.StateTested, out.Transitions[0].To)

	notes, err := s.ListNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, NoteTestReady, notes[0].Kind)
}

func TestHandleTaskCompleted_UnknownTaskLeavesStateUntouched(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 8)

	before, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)

	_, err = r.HandleTaskCompleted(context.Background(), "python-study-99")
	var cv *roadmap.ContractViolationError
	require.ErrorAs(t, err, &cv)

	after, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.LastReplannedAt.Unix(), after.LastReplannedAt.Unix())
	for _, task := range after.SkillBySlug("python").Tasks {
		assert.False(t, task.Completed)
	}
}

func TestHandleTestResult_FailureQueuesRevision(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 8)
	_, err := r.HandleTaskCompleted(context.Background(), "python-study-00")
	require.NoError(t, err)
	_, err = r.HandleTaskCompleted(context.Background(), "python-study-01")
	require.NoError(t, err)

	out, err := r.HandleTestResult(context.Background(), roadmap.TestResult{
		SkillSlug: "python", Passed: false, ScorePercent: 40,
		WeakTopics: []roadmap.WeakTopic{
			{Topic: "Functions", Range: roadmap.ContentRange{Start: 5, End: 8}},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Transitions, 2)
	assert.Equal(t, roadmap.StateRemediation, out.Transitions[1].To)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	py := got.SkillBySlug("python")
	assert.Equal(t, roadmap.StateRemediation, py.State)
	require.Len(t, py.Tasks, 3)
	rev := py.Tasks[2]
	assert.Equal(t, roadmap.TaskRevision, rev.Kind)
	assert.Equal(t, "Functions", rev.Topic)
	assert.False(t, rev.ScheduledOn.IsZero())

	notes, err := s.ListNotifications(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, NoteTestFailed, notes[0].Kind)
}

func TestHandleTestResult_RetestCycleToPass(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 8)
	_, err := r.HandleTaskCompleted(context.Background(), "python-study-00")
	require.NoError(t, err)
	_, err = r.HandleTaskCompleted(context.Background(), "python-study-01")
	require.NoError(t, err)

	_, err = r.HandleTestResult(context.Background(), roadmap.TestResult{
		SkillSlug: "python", Passed: false, ScorePercent: 40,
		WeakTopics: []roadmap.WeakTopic{{Topic: "Functions", Range: roadmap.ContentRange{Start: 5, End: 8}}},
	})
	require.NoError(t, err)

	// Finishing the revision task moves the skill to retesting.
	out, err := r.HandleTaskCompleted(context.Background(), "python-revision-02")
	require.NoError(t, err)
	require.Len(t, out.Transitions, 1)
	assert.Equal(t, roadmap.StateRetesting, out.Transitions[0].To)

	// Passing the retest unlocks the next skill.
	out, err = r.HandleTestResult(context.Background(), roadmap.TestResult{
		SkillSlug: "python", Passed: true, ScorePercent: 90,
	})
	require.NoError(t, err)
	require.Len(t, out.Transitions, 2)
	assert.Equal(t, roadmap.StatePassed, out.Transitions[0].To)
	assert.Equal(t, roadmap.StateContentPending, out.Transitions[1].To)
	assert.Equal(t, "sql", out.Transitions[1].Skill)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roadmap.StatePassed, got.SkillBySlug("python").State)
	assert.Equal(t, roadmap.StateContentPending, got.SkillBySlug("sql").State)
}

func TestHandleTestResult_RepeatFailureDedupsRevision(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 8)
	_, err := r.HandleTaskCompleted(context.Background(), "python-study-00")
	require.NoError(t, err)
	_, err = r.HandleTaskCompleted(context.Background(), "python-study-01")
	require.NoError(t, err)

	weak := []roadmap.WeakTopic{{Topic: "Functions", Range: roadmap.ContentRange{Start: 5, End: 8}}}
	_, err = r.HandleTestResult(context.Background(), roadmap.TestResult{
		SkillSlug: "python", Passed: false, ScorePercent: 40, WeakTopics: weak,
	})
	require.NoError(t, err)
	_, err = r.HandleTaskCompleted(context.Background(), "python-revision-02")
	require.NoError(t, err)

	// Retest fails on the same topic while no new revision is needed:
	// a fresh revision task for the same range would duplicate work, but
	// the completed one no longer covers it, so one new task appears.
	out, err := r.HandleTestResult(context.Background(), roadmap.TestResult{
		SkillSlug: "python", Passed: false, ScorePercent: 50, WeakTopics: weak,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Transitions)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	py := got.SkillBySlug("python")

	pendingRevision := 0
	for _, task := range py.Tasks {
		if task.Kind == roadmap.TaskRevision && !task.Completed {
			pendingRevision++
		}
	}
	assert.Equal(t, 1, pendingRevision)
}

func TestInfeasibleScheduleFlaggedNotRefused(t *testing.T) {
	r, s := newTestReplanner(t)
	// Two-day runway at capacity 2 cannot hold a 40-video course.
	_, err := r.Init(context.Background(), "rush", []string{"Python"},
		testStart, testStart.AddDate(0, 0, 1), 2, 60)
	require.NoError(t, err)

	out := selectPlaylist(t, r, 40) // 10 study tasks, 4 slots
	assert.False(t, out.OnTrack)
	assert.Equal(t, 10, out.Scheduled)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	for _, task := range got.SkillBySlug("python").Tasks {
		assert.False(t, task.ScheduledOn.IsZero(), "infeasible plans still assign every task a date")
	}

	notes, err := s.ListNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, NoteScheduleInfeasible, notes[0].Kind)
}

func TestSweep_Idempotent(t *testing.T) {
	r, s := newTestReplanner(t)
	initRoadmap(t, r, 30)
	selectPlaylist(t, r, 40)

	first, err := r.Sweep(context.Background())
	require.NoError(t, err)
	afterFirst, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)

	second, err := r.Sweep(context.Background())
	require.NoError(t, err)
	afterSecond, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ProjectedEnd, second.ProjectedEnd)
	a := afterFirst.SkillBySlug("python").Tasks
	b := afterSecond.SkillBySlug("python").Tasks
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ScheduledOn, b[i].ScheduledOn, "task %s moved on a same-day resweep", a[i].ID)
	}
}

func TestSweep_MovesOverdueWork(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "disha.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := testStart
	r := New(s, WithClock(func() time.Time { return now }))

	_, err = r.Init(context.Background(), "goal", []string{"Python"},
		testStart, testStart.AddDate(0, 0, 30), 2, 60)
	require.NoError(t, err)
	_, err = r.HandlePlaylistSelected(context.Background(), "python", roadmap.ContentRef{
		PlaylistID: "PL1", Title: "Course", VideoCount: 16,
	})
	require.NoError(t, err)

	// Three days pass with nothing done.
	now = testStart.AddDate(0, 0, 3)
	_, err = r.Sweep(context.Background())
	require.NoError(t, err)

	got, err := s.LoadAggregate(context.Background())
	require.NoError(t, err)
	today := allocator.Day(now)
	for _, task := range got.SkillBySlug("python").Tasks {
		assert.False(t, allocator.Day(task.ScheduledOn).Before(today),
			"task %s still scheduled in the past", task.ID)
	}

	notes, err := s.ListNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, NoteReplanned, notes[0].Kind)
}
