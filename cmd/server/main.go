// Package main provides the wordfreq API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamilpajak/wordfreq/internal/api"
	"github.com/kamilpajak/wordfreq/internal/config"
	"github.com/kamilpajak/wordfreq/internal/database"
	"github.com/kamilpajak/wordfreq/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version info set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath  string
	port        int
	skipMigrate bool
	migrateDown bool
)

var rootCmd = &cobra.Command{
	Use:          "wordfreq-server",
	Short:        "Student records and word-frequency API server",
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply (or roll back) database migrations and exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wordfreq-server %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port (overrides server.port)")
		cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run migrations on startup")
	}
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), err
		}
	}
	return cfg, logging.New(cfg.Log), nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required (set WORDFREQ_DATABASE_URL)")
	}

	if migrateDown {
		logger.Info().Msg("Rolling back database migrations...")
		if err := database.MigrateDown(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("Rollback complete")
		return nil
	}

	logger.Info().Msg("Running database migrations...")
	if err := database.Migrate(cfg.Database.URL); err != nil {
		return err
	}
	logger.Info().Msg("Migrations complete")
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required (set WORDFREQ_DATABASE_URL)")
	}

	if !skipMigrate {
		logger.Info().Msg("Running database migrations...")
		if err := database.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("Migrations complete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := database.New(connectCtx, cfg.Database.URL)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	server := api.NewServer(api.Config{
		Store:          db,
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RootMessage:    cfg.Server.RootMessage,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.KeepAliveTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("version", version).Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("Server stopped")
	return nil
}
