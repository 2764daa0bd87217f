package report

import (
	"github.com/spf13/cobra"

	"ledgerdash/internal/storage"
)

func auditCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	c := &cobra.Command{
		Use:   "audit",
		Short: "print the most recent login attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := storage.NewUserRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			logins, err := repo.RecentLogins(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"logins": logins})
		},
	}
	c.Flags().StringVar(&dbPath, "db", "./data/ledgerdash.db", "SQLite database written by the audit worker")
	c.Flags().IntVar(&limit, "limit", 50, "number of attempts to print")
	return c
}
