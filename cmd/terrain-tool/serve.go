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

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-editor/internal/config"
	"github.com/Faultbox/midgard-editor/internal/editor"
	"github.com/Faultbox/midgard-editor/internal/history"
	"github.com/Faultbox/midgard-editor/internal/logger"
	"github.com/Faultbox/midgard-editor/internal/tasks"
	"github.com/Faultbox/midgard-editor/internal/tools"
	"github.com/Faultbox/midgard-editor/internal/transport/ws"
)

func cmdServe(args []string) error {
	if _, err := config.ParseFlags(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	g, gat, err := openTerrain(cfg.Terrain.GATFile, cfg.Terrain.Width, cfg.Terrain.Depth,
		cfg.Terrain.WorldScaleVec(), cfg.Terrain.LocalScaleVec())
	if err != nil {
		return err
	}
	width, depth := g.Size()
	logger.Info("terrain ready", zap.Int("width", width), zap.Int("depth", depth), zap.String("gat", cfg.Terrain.GATFile))

	background := tasks.NewWorker("history", cfg.Editor.QueueSize, logger.Named("tasks"))
	defer background.Close()
	foreground := tasks.NewWorker("events", cfg.Editor.QueueSize, logger.Named("tasks"))
	defer foreground.Close()

	opts, err := cfg.EditorOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger.Named("editor")
	ctrl := editor.New(g, history.NewStack(cfg.Editor.UndoDepth), tasks.Queues{Back: background, Front: foreground}, opts)
	for _, k := range tools.Kinds() {
		if err := cfg.ApplyTool(ctrl.Tool(k)); err != nil {
			return err
		}
	}

	bridge := ws.NewServer(ctrl, g, logger.Named("ws"))
	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, bridge)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("path", cfg.Server.Path))
		errCh <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case s := <-sig:
		logger.Info("shutting down", zap.Stringer("signal", s))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bridge.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	ctrl.Wait()

	if cfg.Terrain.GATFile != "" {
		if err := saveTerrain(cfg.Terrain.GATFile, g, gat); err != nil {
			return fmt.Errorf("saving terrain: %w", err)
		}
		logger.Info("terrain saved", zap.String("gat", cfg.Terrain.GATFile))
	}
	return nil
}
