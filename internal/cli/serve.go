package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/document-chat/internal/router"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
	"github.com/BerylCAtieno/document-chat/internal/watcher"
)

var (
	servePort  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the document chat API under /api/v1. With --watch, documents
written to the given folder are uploaded automatically.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "folder to watch for new documents")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, session, logger, err := setup(utils.NewLogger, "")
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveWatch != "" {
		cfg.WatchDir = serveWatch
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go relayEvents(ctx, session, logger)

	if cfg.WatchDir != "" {
		if err := startWatcher(ctx, cfg.WatchDir, session, logger); err != nil {
			return err
		}
	}

	// Replies can take longer than a typical API call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(session, cfg, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// relayEvents logs session notifications and document set changes, covering
// uploads that arrive through the watched folder as well as the API.
func relayEvents(ctx context.Context, session services.ChatSession, logger *utils.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-session.Notifications():
			logger.Info("Notification",
				"severity", string(n.Severity),
				"message", n.Message,
				"filename", n.FileName)
		case <-session.DocumentsChanged():
			logger.Info("Documents changed", "count", len(session.Documents()))
		}
	}
}

func startWatcher(ctx context.Context, dir string, session services.ChatSession, logger *utils.Logger) error {
	w, err := watcher.New(nil, watcher.DefaultSettle, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	events, err := w.Watch(ctx, dir)
	if err != nil {
		_ = w.Stop()
		return err
	}

	go func() {
		defer w.Stop()
		watcher.Feed(ctx, events, session, time.Second, logger)
	}()

	logger.Info("Watching folder for documents", "dir", dir)
	return nil
}
