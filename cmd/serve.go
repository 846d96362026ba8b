package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/state"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web"
	"github.com/nimbusops/console/internal/widget"
)

// Server timeouts. WriteTimeout must outlast the longest SSE stream.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 6 * time.Minute
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console web server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := platform.NewClient(platform.Config{
		BaseURL:   cfg.BackendURL,
		WSBaseURL: cfg.WSURL,
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	dir, err := stateDir(cfg)
	if err != nil {
		return err
	}
	prefs, err := state.Open(dir, logger)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}

	controllers := map[widget.Surface]*widget.Controller{
		widget.SurfaceInquiry:      widget.New(widget.SurfaceInquiry, client, prefs, logger),
		widget.SurfaceTroubleshoot: widget.New(widget.SurfaceTroubleshoot, client, prefs, logger),
		widget.SurfaceGrafana:      widget.New(widget.SurfaceGrafana, client, prefs, logger),
	}
	defer func() {
		for _, ctrl := range controllers {
			ctrl.Dispose()
		}
	}()

	server, err := web.NewServer(web.ServerConfig{
		Logger:      logger,
		Config:      cfg,
		Client:      client,
		Theme:       theme.NewManager(prefs, logger),
		Artifacts:   artifact.NewStore(logger),
		Controllers: controllers,
	})
	if err != nil {
		return fmt.Errorf("creating web server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("console ready",
		"addr", cfg.ListenAddr,
		"backend", cfg.BackendURL,
		"version", AppVersion,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}
