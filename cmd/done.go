package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/roadmap"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task complete and replan the rest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out, err := newReplanner(s).HandleTaskCompleted(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Done: %s\n", args[0])
		for _, tr := range out.Transitions {
			switch tr.To {
			case roadmap.StateTested:
				fmt.Printf("All study tasks for %s are complete. Run 'disha test start'.\n", tr.Skill)
			case roadmap.StateRetesting:
				fmt.Printf("Revision for %s is complete. Run 'disha test start' to retest.\n", tr.Skill)
			}
		}
		if out.Scheduled > 0 && !out.OnTrack {
			fmt.Printf("Warning: remaining work projects past the deadline (%s).\n",
				out.ProjectedEnd.Format(dateLayout))
		}
		return nil
	},
}
