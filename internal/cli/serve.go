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
	"go.uber.org/zap"

	"github.com/lazypower/recognition/internal/config"
	"github.com/lazypower/recognition/internal/engine"
	"github.com/lazypower/recognition/internal/logging"
	"github.com/lazypower/recognition/internal/metrics"
	"github.com/lazypower/recognition/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout and serve the field over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload layout, view and frame rate settings when the config file changes")
	return cmd
}

func runServe(cmd *cobra.Command, g *globals, watch bool) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogParams())
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, engine.Options{
		Layout:  cfg.LayoutParams(),
		View:    cfg.ViewParams(),
		FPS:     cfg.Layout.FPS,
		Logger:  log.Named("engine"),
		Metrics: metrics.New(),
	})
	if err := eng.Load(); err != nil {
		// Serve an empty field rather than refusing to start.
		log.Warn("initial load failed, starting with an empty graph", zap.Error(err))
	}

	srv := server.New(db, eng, server.Options{
		Version:          VersionString(),
		CORSOrigins:      cfg.Server.CORSOrigins,
		InteractionRPS:   cfg.Server.InteractionRPS,
		InteractionBurst: cfg.Server.InteractionBurst,
		Logger:           log.Named("http"),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng.Start(ctx)
	defer eng.Stop()

	if path := g.configFile(); watch && path != "" {
		go func() {
			err := config.Watch(ctx, path, log.Named("config"), func(next config.Config) {
				reload(eng, next)
			})
			if err != nil {
				log.Error("config watch stopped", zap.Error(err))
			}
		}()
	}

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("recognition serving", zap.String("addr", addr), zap.String("db", db.Path))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	srv.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// reload applies the hot-reloadable parts of cfg to a running engine.
// Server, database and log settings need a restart.
func reload(eng *engine.Engine, cfg config.Config) {
	eng.SetLayoutConfig(cfg.LayoutParams())
	eng.SetViewConfig(cfg.ViewParams())
	eng.SetFPS(cfg.Layout.FPS)
}
