package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:     "sweep",
	Aliases: []string{"replan"},
	Short:   "Replan pending tasks from today forward",
	Long: "Moves overdue tasks to the earliest open days and refreshes the\n" +
		"deadline projection. Safe to run any number of times per day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out, err := newReplanner(s).Sweep(cmd.Context())
		if err != nil {
			return err
		}

		if out.Scheduled == 0 {
			fmt.Println("Nothing pending to schedule.")
			return nil
		}
		fmt.Printf("Scheduled %d pending tasks. Projected finish: %s",
			out.Scheduled, out.ProjectedEnd.Format(dateLayout))
		if out.OnTrack {
			fmt.Println(" (on track).")
		} else {
			fmt.Println(" - past the deadline.")
		}
		return nil
	},
}
