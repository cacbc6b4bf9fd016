package cmd

import (
	"fmt"

	"jewelrydam/db"
	"jewelrydam/models"

	"github.com/spf13/cobra"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply pending schema migrations to the configured database.

Migrations are applied in order, each in its own transaction, and recorded in
the schema_migrations table. Use --status to list them without applying.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list migrations and whether they are applied")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	if !migrateStatus {
		applied, err := models.Migrate(conn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", applied)
	}
	status, err := models.Status(conn)
	if err != nil {
		return err
	}
	for _, m := range status {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-32s %s\n", m.Version, m.Name, applied)
	}
	return nil
}
