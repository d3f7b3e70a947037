package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/allocator"
	"github.com/abhisek/disha/internal/roadmap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the roadmap, today's tasks and the deadline projection",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := s.LoadAggregate(cmd.Context())
	if err != nil {
		return fmt.Errorf("load roadmap: %w", err)
	}
	if a == nil {
		fmt.Println("No roadmap yet. Run 'disha init' to create one.")
		return nil
	}

	fmt.Printf("Goal:     %s\n", a.Goal.Text)
	fmt.Printf("Deadline: %s\n", a.Goal.Deadline.Format(dateLayout))
	fmt.Println()

	for _, skill := range a.Skills {
		done, total := taskProgress(skill)
		marker := stateMarker(skill.State)
		line := fmt.Sprintf("%s %-20s %s", marker, skill.Name, skill.State)
		if total > 0 {
			line += fmt.Sprintf("  (%d/%d tasks)", done, total)
		}
		fmt.Println(line)
	}

	current := a.CurrentSkill()
	if current == nil {
		if a.Done() {
			fmt.Println("\nEvery skill passed. Roadmap complete.")
		} else {
			fmt.Println("\nNext skill is awaiting playlist selection. Run 'disha playlists'.")
		}
		return nil
	}

	today := allocator.Day(time.Now())
	pending := current.IncompleteTasks()

	var due, overdue []*roadmap.Task
	for _, t := range pending {
		day := allocator.Day(t.ScheduledOn)
		switch {
		case day.Equal(today):
			due = append(due, t)
		case day.Before(today):
			overdue = append(overdue, t)
		}
	}

	if len(overdue) > 0 {
		fmt.Printf("\nOverdue (%d): run 'disha sweep' to replan.\n", len(overdue))
		for _, t := range overdue {
			fmt.Printf("  %s\n", taskLine(t))
		}
	}

	fmt.Println("\nToday:")
	if len(due) == 0 {
		fmt.Println("  Nothing scheduled.")
	}
	for _, t := range due {
		fmt.Printf("  %s\n", taskLine(t))
	}

	if len(pending) > 0 {
		sched := allocator.Allocate(pending, today, a.Goal.Deadline, a.CapacityPerDay)
		fmt.Printf("\nProjected finish for %s: %s", current.Name, sched.ProjectedEnd.Format(dateLayout))
		if sched.Feasible {
			fmt.Println(" (on track)")
		} else {
			fmt.Println(" - PAST DEADLINE. Raise --capacity or move the deadline.")
		}
	}

	switch current.State {
	case roadmap.StateTested, roadmap.StateRetesting:
		fmt.Printf("\n%s is ready for its test. Run 'disha test start'.\n", current.Name)
	case roadmap.StateContentPending:
		fmt.Printf("\nPick a course for %s. Run 'disha playlists'.\n", current.Name)
	}
	return nil
}

func taskProgress(s *roadmap.Skill) (done, total int) {
	for _, t := range s.Tasks {
		total++
		if t.Completed {
			done++
		}
	}
	return done, total
}

func taskLine(t *roadmap.Task) string {
	desc := fmt.Sprintf("%-22s watch videos %d-%d", t.ID, t.Range.Start, t.Range.End)
	if t.Kind == roadmap.TaskRevision {
		desc = fmt.Sprintf("%-22s revise %s (videos %d-%d)", t.ID, t.Topic, t.Range.Start, t.Range.End)
	}
	return desc
}

func stateMarker(state roadmap.SkillState) string {
	switch {
	case state == roadmap.StatePassed:
		return "[x]"
	case state.InProgress():
		return "[>]"
	case state == roadmap.StateContentPending:
		return "[?]"
	default:
		return "[ ]"
	}
}
