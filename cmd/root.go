package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/disha/internal/llm"
	"github.com/abhisek/disha/internal/replan"
	"github.com/abhisek/disha/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "disha",
	Short: "Deadline-driven learning roadmaps from YouTube playlists",
	Long: "Disha plans a skill-by-skill study roadmap against a deadline,\n" +
		"schedules daily tasks from YouTube course playlists, tests each\n" +
		"skill, and replans around failures and slipped days.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DISHA_DB env var)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then DISHA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store for a command invocation.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newReplanner builds the replanner over the store.
func newReplanner(s *store.Store) *replan.Replanner {
	return replan.New(s)
}

// newLLMProvider resolves LLM configuration from DISHA_* variables,
// falling back to provider auto-discovery from standard API key vars.
func newLLMProvider(ctx context.Context, s *store.Store) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, s.EventRepo())
}
