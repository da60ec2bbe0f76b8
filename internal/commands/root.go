package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskflow/internal/config"
	"taskflow/internal/storage/postgres"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "TaskFlow task management API",
	Long:  "TaskFlow serves a REST API for creating, filtering and updating tasks backed by PostgreSQL.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("TASKFLOW_CONFIG_DIR", ".")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config",
		v.GetString("TASKFLOW_CONFIG_DIR"),
		"directory containing the optional .env file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openStore loads the configuration and connects to the database, applying the
// schema migrations on the way.
func openStore(ctx context.Context, logger *slog.Logger) (*postgres.Store, config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}

	store, err := postgres.Open(ctx, cfg.DatabaseDSN(), logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return store, cfg, nil
}
