package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"satirewire/internal/blob"
	"satirewire/internal/config"
	"satirewire/internal/logger"
	"satirewire/internal/server"
	"satirewire/internal/store"
)

// NewServeCmd creates the serve command for starting the HTTP server.
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin review API and comment endpoints",
		Long: `Start the HTTP server that backs the review dashboard and the public
comment widgets.

The server provides:
  • Admin endpoints for the pending queue (approve, reject, delete)
  • Public comment reads and writes with anti-spiral caps
  • Health check and login endpoints

Run 'satirewire publish' separately (e.g. via cron) to keep content
fresh.

Examples:
  # Start server on the configured port
  satirewire serve

  # Start on a custom port
  satirewire serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config)")

	return cmd
}

func runServe(port int, host string) error {
	log := logger.Get()
	cfg := config.Get()
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	dir, err := blob.NewDir(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}
	st := store.New(dir, cfg.Publish.PublishedCap, cfg.Publish.PendingCap)

	srv := server.New(st, serverCfg, cfg.Comments)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Info("Server stopped successfully")
	}

	return nil
}
