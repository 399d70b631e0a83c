package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/fritter/internal/database"
	"github.com/beesaferoot/fritter/internal/migration"
	"github.com/beesaferoot/fritter/internal/server"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fritter HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				if err := migration.Latest(db); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, db).Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides FRITTER_ADDR)")
	cmd.Flags().String("driver", "", "Database driver: postgres or sqlite (overrides DATABASE_DRIVER)")
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	cmd.Flags().Bool("debug", false, "Log every request and SQL statement")

	return cmd
}
