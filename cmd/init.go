package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/allocator"
)

const dateLayout = "2006-01-02"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a roadmap for a goal and deadline",
	Example: `  disha init --goal "Backend developer role" \
      --skills "Python,SQL,Docker" --deadline 2026-12-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, _ := cmd.Flags().GetString("goal")
		skillsCSV, _ := cmd.Flags().GetString("skills")
		deadlineStr, _ := cmd.Flags().GetString("deadline")
		capacity, _ := cmd.Flags().GetInt("capacity")
		minutes, _ := cmd.Flags().GetInt("minutes")

		if goal == "" || skillsCSV == "" || deadlineStr == "" {
			return fmt.Errorf("--goal, --skills and --deadline are required")
		}

		deadline, err := time.ParseInLocation(dateLayout, deadlineStr, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid deadline %q (want YYYY-MM-DD): %w", deadlineStr, err)
		}

		var skills []string
		for _, s := range strings.Split(skillsCSV, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		start := allocator.Day(time.Now())
		a, err := newReplanner(s).Init(cmd.Context(), goal, skills, start, deadline, capacity, minutes)
		if err != nil {
			return err
		}

		fmt.Printf("Roadmap created: %q, %d skills, deadline %s.\n",
			a.Goal.Text, len(a.Skills), deadline.Format(dateLayout))
		fmt.Printf("First up: %s. Run 'disha playlists' to pick a course.\n", a.Skills[0].Name)
		return nil
	},
}

func init() {
	initCmd.Flags().String("goal", "", "What you are working toward")
	initCmd.Flags().String("skills", "", "Comma-separated skills in learning order")
	initCmd.Flags().String("deadline", "", "Target date (YYYY-MM-DD)")
	initCmd.Flags().Int("capacity", 2, "Max tasks per day")
	initCmd.Flags().Int("minutes", 60, "Study minutes per day used to size tasks")
}
