package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kinoflow/kinoflow/internal/config"
	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/adapters/file"
	httpAdapter "github.com/kinoflow/kinoflow/pkg/adapters/http"
	"github.com/kinoflow/kinoflow/pkg/adapters/memory"
	redisAdapter "github.com/kinoflow/kinoflow/pkg/adapters/redis"
	"github.com/kinoflow/kinoflow/pkg/ports"
	"github.com/kinoflow/kinoflow/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Starts the Kinoflow server, exposing graph authoring and conversation playback over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}

		logger := buildLogger(cfg)

		repo := file.NewRepository(filepath.Join(cfg.DataDir, "graphs"))

		var sessionStore ports.SessionStore
		managerOpts := []session.Option{session.WithLogger(logger)}
		if cfg.RedisURL != "" {
			store := redisAdapter.New(cfg.RedisURL, "", cfg.RedisDB)
			defer store.Close()
			sessionStore = store
			managerOpts = append(managerOpts,
				session.WithLocker(redisAdapter.NewLocker(store.Client(), "kinoflow:lock:")))
			logger.Info("using redis session store", "addr", cfg.RedisURL, "db", cfg.RedisDB)
		} else {
			sessionStore = memory.NewStore()
			logger.Info("using in-memory session store")
		}
		sessions := session.NewManager(sessionStore, managerOpts...)

		server := httpAdapter.NewServer(repo, sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRecorder(file.NewRecorder(filepath.Join(cfg.DataDir, "responses"))),
			httpAdapter.WithMetrics(prometheus.NewRegistry()),
		)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("kinoflow server listening", "addr", srv.Addr, "data_dir", cfg.DataDir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("server error", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown signal received", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("kinoflow server stopped gracefully")
		}
	},
}

func buildLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.LogJSON {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
}
