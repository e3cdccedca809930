package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, log, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			defer func() { _ = log.Sync() }()

			applied, err := pgrepo.Migrate(cmd.Context(), pool, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}
