package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print moderation and activity counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := pgrepo.NewModerationRepo(pool).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printStats(cmd, stats)
		},
	}
}

func printStats(cmd *cobra.Command, stats model.ModerationStats) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		value int64
	}{
		{"pending profiles", stats.PendingProfiles},
		{"pending reports", stats.PendingReports},
		{"approved", stats.Approved},
		{"banned", stats.Banned},
		{"profiles", stats.TotalProfiles},
		{"likes", stats.TotalLikes},
		{"matches", stats.TotalMatches},
		{"reports", stats.TotalReports},
		{"admin actions", stats.TotalActions},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\n", row.name, row.value)
	}
	return w.Flush()
}
