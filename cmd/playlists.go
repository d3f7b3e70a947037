package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/discovery"
	"github.com/abhisek/disha/internal/roadmap"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Find and rank course playlists for the next skill",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		apiKey := os.Getenv("DISHA_YOUTUBE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("YOUTUBE_API_KEY")
		}
		yt, err := discovery.NewClient(apiKey)
		if err != nil {
			return fmt.Errorf("DISHA_YOUTUBE_API_KEY is required: %w", err)
		}

		provider, err := newLLMProvider(cmd.Context(), s)
		if err != nil {
			return err
		}

		fmt.Printf("Searching course playlists for %s...\n\n", skill.Name)
		svc := discovery.NewService(yt, provider, s)
		recs, err := svc.Recommend(cmd.Context(), a.ID, skill.Name, skill.Slug)
		if err != nil {
			return err
		}

		for _, rec := range recs {
			fmt.Printf("%d. %s\n", rec.Rank, rec.Title)
			fmt.Printf("   %s | %d videos | engagement %.4f\n", rec.Channel, rec.VideoCount, rec.RankScore)
			fmt.Printf("   %s\n", rec.URL)
			if rec.SummaryJSON != "" {
				var summary discovery.Summary
				if err := json.Unmarshal([]byte(rec.SummaryJSON), &summary); err == nil {
					fmt.Printf("   %s\n", summary.TopicOverview)
				}
			}
			fmt.Println()
		}
		fmt.Println("Pick one with 'disha select <rank>'.")
		return nil
	},
}
