package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/fritter/internal/database"
	"github.com/beesaferoot/fritter/internal/migration"
	"github.com/beesaferoot/fritter/internal/models"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.PersistentFlags().String("driver", "", "Database driver: postgres or sqlite (overrides DATABASE_DRIVER)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug output")

	cmd.AddCommand(
		InitCmd(),
		UpCmd(),
		DownCmd(),
		StatusCmd(),
		HistoryCmd(),
		VerifyCmd(),
	)
	return cmd
}

// withMigrator opens the configured database and hands a migrator over it to fn
func withMigrator(cmd *cobra.Command, fn func(*migration.Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := getDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(migration.NewMigrator(db))
}

func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize migration tracking table in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migration.Migrator) error {
				if err := m.Init(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration tracking table is ready.")
				return nil
			})
		},
	}
}

func UpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			return withMigrator(cmd, func(m *migration.Migrator) error {
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "No pending migrations.")
					return nil
				}

				if dryRun {
					fmt.Fprintln(out, "Pending migrations:")
					for _, mr := range pending {
						fmt.Fprintf(out, "- %s (%s)\n", mr.Name, mr.Version)
					}
					return nil
				}

				applied, err := m.Up()
				for _, mr := range applied {
					fmt.Fprintf(out, "Successfully applied migration: %s (%s)\n", mr.Name, mr.Version)
				}
				return err
			})
		},
	}

	cmd.Flags().Bool("dry-run", false, "Show pending migrations without executing them")

	return cmd
}

func DownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withMigrator(cmd, func(m *migration.Migrator) error {
				reverted, err := m.Down()
				if errors.Is(err, migration.ErrNoMigrations) {
					fmt.Fprintln(out, "No migrations to revert.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Successfully reverted migration: %s (%s)\n", reverted.Name, reverted.Version)
				return nil
			})
		},
	}
}

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withMigrator(cmd, func(m *migration.Migrator) error {
				statuses, err := m.Status()
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
				for _, s := range statuses {
					status := "Pending"
					if s.Applied {
						status = "Applied"
					}
					fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", s.Migration.Version, s.Migration.Name, status)
				}
				return nil
			})
		},
	}
}

func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show migration history",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withMigrator(cmd, func(m *migration.Migrator) error {
				records, err := m.History()
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No migrations have been applied yet.")
					return nil
				}

				fmt.Fprintf(out, "%-16s  %-30s  %-24s\n", "Version", "Name", "Applied At")
				for _, record := range records {
					fmt.Fprintf(out, "%-16s  %-30s  %-24s\n", record.Version, record.Name, record.AppliedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}

func VerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the database schema against the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			drift, err := migration.Verify(db, models.ModelTypeRegistry...)
			if err != nil {
				return err
			}
			if len(drift) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database schema matches the models.")
				return nil
			}
			for _, d := range drift {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return fmt.Errorf("schema verification failed: %d problem(s)", len(drift))
		},
	}
}
