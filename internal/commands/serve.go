package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"taskflow/internal/cache"
	"taskflow/internal/server"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TaskFlow API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	logger.Info("TaskFlow API starting")

	store, cfg, err := openStore(cmd.Context(), logger)
	if err != nil {
		return err
	}
	logger.Info("connected to postgres", slog.String("database", cfg.DBName))

	var taskCache *cache.Cache
	if cfg.RedisAddr != "" {
		taskCache, err = cache.New(cmd.Context(), cfg.RedisAddr, cfg.CacheTTL, logger)
		if err != nil {
			store.Close()
			return err
		}
		logger.Info("task cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	srv := server.New(store, taskCache, logger)
	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"store": func(ctx context.Context) error {
			store.Close()
			return nil
		},
	}
	if taskCache != nil {
		ops["cache"] = func(ctx context.Context) error {
			return taskCache.Close()
		}
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, ops)
	exitCode := <-wait
	logger.Info("server stopped", slog.Int("exit", exitCode))
	return nil
}
