package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notes"},
	Short:   "Show recent roadmap events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		notes, err := s.ListNotifications(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notifications yet.")
			return nil
		}

		for _, n := range notes {
			fmt.Printf("%s  %-22s %s\n",
				n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Kind, n.Body)
		}
		return nil
	},
}

func init() {
	notificationsCmd.Flags().IntP("limit", "n", 20, "Number of notifications to show")
}
