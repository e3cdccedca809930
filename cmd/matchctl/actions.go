package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

func newActionsCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the latest moderator actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			items, err := pgrepo.NewAdminActionRepo(pool).ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AT\tADMIN\tACTION\tTARGET\tDETAILS")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
					item.ActionAt.Format("2006-01-02 15:04"), item.AdminID, item.Action, item.TargetUserID, item.Details)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of actions to show")
	return cmd
}
