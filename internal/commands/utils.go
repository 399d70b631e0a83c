package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/config"
	"github.com/beesaferoot/fritter/internal/database"
)

// loadConfig reads the environment and applies the flags shared by every command
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.DatabaseDriver = driver
	}
	return cfg, nil
}

func getDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
