package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jkkim74/bsTodoList/internal/auth"
	"github.com/jkkim74/bsTodoList/internal/config"
	"github.com/jkkim74/bsTodoList/internal/stats"
	"github.com/jkkim74/bsTodoList/internal/store"
	"github.com/jkkim74/bsTodoList/internal/task"
	"github.com/jkkim74/bsTodoList/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the JSON API server.

Examples:
  bstodo serve
  bstodo serve --addr :9000
  BSTODO_DB_PATH=/tmp/dev.db bstodo serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	logger := newLogger(cfg.LogLevel)

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	server := web.NewServer(
		task.NewService(st),
		stats.NewService(st),
		auth.NewService(st, cfg.TokenSecret, cfg.TokenTTL),
		st,
		logger,
	)
	return server.Run(cfg.Addr)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
