package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/quests/internal/database"
	"github.com/dukerupert/quests/internal/health"
	"github.com/dukerupert/quests/internal/logging"
	"github.com/dukerupert/quests/internal/server"
	"github.com/dukerupert/quests/internal/store"
)

func newServeCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := load(c)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				slog.Error("failed to open database", "error", err)
				return err
			}
			defer db.Close()

			questStore := store.NewQuestStore(db)
			healthCfg := health.Config{
				Version:     cfg.Version,
				Environment: cfg.Env,
				DataDir:     filepath.Dir(cfg.DBPath),
				Database:    questStore,
				Pool:        health.DBPool{DB: db},
			}
			if cfg.RedisURL != "" {
				probe, err := health.NewRedisProbe(cfg.RedisURL)
				if err != nil {
					slog.Error("invalid redis url", "error", err)
					return err
				}
				defer probe.Close()
				healthCfg.Cache = probe
			}

			srv, err := server.New(db, server.Options{
				Secret:       cfg.Secret,
				SecureCookie: cfg.SecureCookie,
				WriteLimit:   cfg.WriteLimit,
				Health:       health.NewChecker(healthCfg),
			}, logger)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			// Background cleanup goroutine
			cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
			defer cleanupCancel()
			go func() {
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						srv.RateLimiter().Cleanup()
					case <-cleanupCtx.Done():
						return
					}
				}
			}()

			serveErr := make(chan error, 1)
			go func() {
				slog.Info("quests starting", "addr", httpServer.Addr, "env", cfg.Env, "version", cfg.Version)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-serveErr:
				slog.Error("server error", "error", err)
				return err
			}

			slog.Info("shutting down")
			cleanupCancel()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("port", "3000", "HTTP listen port")
	cmd.Flags().String("db-path", "quests.db", "SQLite database file")
	cmd.Flags().String("log-level", "info", "debug, info, warn or error")
	cmd.Flags().String("log-format", "text", "text or json")
	cmd.Flags().Int("write-limit", 120, "state-changing requests per minute per client, 0 disables")
	return cmd
}
