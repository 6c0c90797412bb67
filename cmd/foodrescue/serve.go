package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/foodrescue/internal/api"
	"github.com/erazemk/foodrescue/internal/store"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON HTTP API. The database is created on first run, in which
case the export key is printed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			return a.serve()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default :8080)")
	return cmd
}

func (a *app) serve() error {
	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(a.cfg.DBPath); os.IsNotExist(err) {
		exportKey, err := initDatabase(a.cfg.DBPath)
		if err != nil {
			return err
		}
		printInitResult(a.cfg.DBPath, exportKey)
	}

	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", a.cfg.DBPath, "timezone", a.cfg.Timezone)

	ctx := context.Background()
	secret, err := store.GetSessionSecret(ctx, database)
	if err != nil {
		return err
	}
	if n, err := store.PurgeRevokedSessions(ctx, database, time.Now()); err != nil {
		slog.Warn("purging ended sessions", "error", err)
	} else if n > 0 {
		slog.Info("purged ended sessions", "count", n)
	}

	posts := a.postStore(database)
	handler := api.LoggingMiddleware(api.NewRouter(api.Deps{
		DB:            database,
		Posts:         posts,
		Engine:        a.engine(posts),
		SessionSecret: secret,
		TopN:          a.cfg.TopN,
	}))

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", a.cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
