package allocator

import (
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/disha/internal/roadmap"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func makeTasks(n int) []*roadmap.Task {
	tasks := make([]*roadmap.Task, n)
	for i := range tasks {
		tasks[i] = &roadmap.Task{
			ID:        fmt.Sprintf("task-%02d", i),
			SkillSlug: "python",
			Kind:      roadmap.TaskStudy,
			Seq:       i,
		}
	}
	return tasks
}

func TestAllocate_FillsDaysInOrder(t *testing.T) {
	tasks := makeTasks(10)
	sched := Allocate(tasks, day(0), day(20), 2)

	if !sched.Feasible {
		t.Fatal("expected feasible schedule")
	}
	if len(sched.Assignments) != 10 {
		t.Fatalf("expected 10 assignments, got %d", len(sched.Assignments))
	}

	// 2 per day across days 0-4.
	for i, a := range sched.Assignments {
		want := day(i / 2)
		if !a.Date.Equal(want) {
			t.Errorf("task %d: scheduled %v, want %v", i, a.Date, want)
		}
	}
	if !sched.ProjectedEnd.Equal(day(4)) {
		t.Errorf("projected end %v, want %v", sched.ProjectedEnd, day(4))
	}
}

func TestAllocate_PreservesTaskOrder(t *testing.T) {
	tasks := makeTasks(17)
	sched := Allocate(tasks, day(0), day(30), 3)

	for i := 1; i < len(sched.Assignments); i++ {
		if sched.Assignments[i].Date.Before(sched.Assignments[i-1].Date) {
			t.Fatalf("assignment %d dated before assignment %d", i, i-1)
		}
	}
}

func TestAllocate_NeverExceedsCapacity(t *testing.T) {
	tasks := makeTasks(23)
	sched := Allocate(tasks, day(0), day(40), 4)

	perDay := make(map[time.Time]int)
	for _, a := range sched.Assignments {
		perDay[a.Date]++
	}
	for d, n := range perDay {
		if n > 4 {
			t.Errorf("day %v has %d tasks, capacity is 4", d, n)
		}
	}
}

func TestAllocate_WithinDeadlineWhenEffortFits(t *testing.T) {
	// 14 tasks, 7 days, 2/day: exactly fits.
	tasks := makeTasks(14)
	sched := Allocate(tasks, day(0), day(6), 2)

	if !sched.Feasible {
		t.Fatal("expected feasible schedule")
	}
	for _, a := range sched.Assignments {
		if a.Date.After(day(6)) {
			t.Errorf("task %s scheduled past deadline: %v", a.TaskID, a.Date)
		}
	}
}

func TestAllocate_SpillsPastDeadlineWhenInfeasible(t *testing.T) {
	// 14 tasks remaining, 6 days left, 2/day capacity: one day short.
	tasks := makeTasks(14)
	sched := Allocate(tasks, day(0), day(5), 2)

	if sched.Feasible {
		t.Fatal("expected infeasible schedule")
	}
	if len(sched.Assignments) != 14 {
		t.Fatalf("infeasible allocation must still be complete, got %d assignments", len(sched.Assignments))
	}
	if !sched.ProjectedEnd.Equal(day(6)) {
		t.Errorf("projected end %v, want one day past deadline %v", sched.ProjectedEnd, day(6))
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	tasks := makeTasks(9)
	first := Allocate(tasks, day(2), day(12), 2)
	second := Allocate(tasks, day(2), day(12), 2)

	if len(first.Assignments) != len(second.Assignments) {
		t.Fatal("assignment counts differ between runs")
	}
	for i := range first.Assignments {
		if first.Assignments[i] != second.Assignments[i] {
			t.Errorf("assignment %d differs: %+v vs %+v", i, first.Assignments[i], second.Assignments[i])
		}
	}
}

func TestAllocate_ZeroCapacityTreatedAsOne(t *testing.T) {
	tasks := makeTasks(3)
	sched := Allocate(tasks, day(0), day(10), 0)

	for i, a := range sched.Assignments {
		if !a.Date.Equal(day(i)) {
			t.Errorf("task %d on %v, want %v", i, a.Date, day(i))
		}
	}
}

func TestAllocate_NoTasks(t *testing.T) {
	sched := Allocate(nil, day(0), day(5), 2)
	if !sched.Feasible {
		t.Error("empty allocation should be feasible")
	}
	if len(sched.Assignments) != 0 {
		t.Error("expected no assignments")
	}
}

func TestFits(t *testing.T) {
	cases := []struct {
		n        int
		days     int // deadline offset from today
		capacity int
		want     bool
	}{
		{14, 6, 2, true},  // 7 days x 2
		{14, 5, 2, false}, // 6 days x 2 = 12
		{0, 0, 1, true},
		{1, 0, 1, true},
		{2, 0, 1, false},
	}
	for _, tc := range cases {
		got := Fits(tc.n, day(0), day(tc.days), tc.capacity)
		if got != tc.want {
			t.Errorf("Fits(%d, +%dd, %d) = %v, want %v", tc.n, tc.days, tc.capacity, got, tc.want)
		}
	}
}
