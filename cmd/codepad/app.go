package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/remote"
	"github.com/michaelbrown/codepad/internal/scripting"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/storage/sqlite"
	"github.com/michaelbrown/codepad/internal/workspace"
)

// app is what every workspace command needs: config, logger, storage and
// the restored workspace.
type app struct {
	cfg    *config.Config
	log    logging.Logger
	store  storage.Store
	router *execution.Router
	ws     *workspace.Workspace
}

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFile(configFlag)
	}
	return config.Load()
}

func newRouter(cfg *config.Config, logger *slog.Logger) *execution.Router {
	local := scripting.New(scripting.WithLogger(logger))
	client := remote.NewClient(cfg.Remote.BaseURL,
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithLogger(logger),
	)
	return execution.NewRouter(local, client)
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	lg, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		lg.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	router := newRouter(cfg, lg.Logger)
	ws, err := workspace.Open(ctx, store, cfg.Storage.Key, router, lg.Logger)
	if err != nil {
		store.Close()
		lg.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: lg, store: store, router: router, ws: ws}, nil
}

// Close flushes the workspace before closing storage.
func (a *app) Close() {
	a.ws.Close()
	if err := a.store.Close(); err != nil {
		a.log.Logger.Warn("closing storage", "err", err)
	}
	a.log.Close()
}
