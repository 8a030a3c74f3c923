package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkkim74/bsTodoList/internal/config"
	"github.com/jkkim74/bsTodoList/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply the schema to the configured database and exit.

The serve command migrates on startup as well; this exists for
provisioning a database ahead of time.

Examples:
  bstodo migrate
  BSTODO_DB_PATH=/var/lib/bstodo/bstodo.db bstodo migrate`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer st.Close()

	fmt.Printf("Schema up to date: %s\n", cfg.DBPath)
	return nil
}
