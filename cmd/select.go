package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/roadmap"
	"github.com/abhisek/disha/internal/store"
)

var selectCmd = &cobra.Command{
	Use:   "select <rank>",
	Short: "Choose a recommended playlist and schedule its study tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := strconv.Atoi(args[0])
		if err != nil || rank < 1 {
			return fmt.Errorf("invalid rank %q", args[0])
		}

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
			return fmt.Errorf("no roadmap exists; run 'disha init' first")
		}

		skill := a.CurrentSkill()
		if skill == nil || skill.State != roadmap.StateContentPending {
			return fmt.Errorf("no skill is awaiting playlist selection")
		}

		recs, err := s.ListRecommendations(cmd.Context(), a.ID, skill.Slug)
		if err != nil {
			return fmt.Errorf("load recommendations: %w", err)
		}
		if len(recs) == 0 {
			return fmt.Errorf("no recommendations for %s; run 'disha playlists' first", skill.Name)
		}

		var chosen *store.Recommendation
		for i := range recs {
			if recs[i].Rank == rank {
				chosen = &recs[i]
				break
			}
		}
		if chosen == nil {
			return fmt.Errorf("rank %d not found; pick 1-%d", rank, len(recs))
		}

		if err := s.MarkSelected(cmd.Context(), a.ID, skill.Slug, rank); err != nil {
			return err
		}

		out, err := newReplanner(s).HandlePlaylistSelected(cmd.Context(), skill.Slug, roadmap.ContentRef{
			PlaylistID: chosen.PlaylistID,
			Title:      chosen.Title,
			Channel:    chosen.Channel,
			URL:        chosen.URL,
			VideoCount: chosen.VideoCount,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Selected %q for %s: %d tasks scheduled.\n", chosen.Title, skill.Name, out.Scheduled)
		fmt.Printf("Projected finish: %s", out.ProjectedEnd.Format(dateLayout))
		if out.OnTrack {
			fmt.Println(" (on track)")
		} else {
			fmt.Println(" - past the deadline; consider raising capacity.")
		}
		return nil
	},
}
