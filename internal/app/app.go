package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireroom-server/internal/config"
	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/store"
	"github.com/vovakirdan/wireroom-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wireroom-server/internal/transport/http"
	"github.com/vovakirdan/wireroom-server/internal/utils"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var st store.Store
	if cfg.DatabasePath != "" {
		sqliteStore, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = sqliteStore
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("mission archive initialized")
	} else {
		logger.Info().Msg("mission archive disabled")
	}

	hub := core.NewHub(HubConfig(cfg), recorder(st), logger)
	server := transporthttp.NewServer(hub, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// HubConfig derives the core settings from cfg, merging configured stage
// overrides into the built-in catalogue.
func HubConfig(cfg *config.Config) core.HubConfig {
	codeLen := cfg.RoomCodeLength
	return core.HubConfig{
		MaxMembers:     cfg.MaxMembers,
		MaxMissionTime: cfg.MaxMissionTime,
		Stages:         core.MergeStages(core.DefaultStages(), StagesFromConfig(cfg.Stages)),
		NewCode:        func() string { return utils.NewRoomCode(codeLen) },
	}
}

// StagesFromConfig converts configured stage overrides.
func StagesFromConfig(stages []config.StageConfig) []core.Stage {
	out := make([]core.Stage, 0, len(stages))
	for _, st := range stages {
		out = append(out, core.Stage{Index: st.Index, Title: st.Title, Answers: st.Answers})
	}
	return out
}

// recorder avoids handing the hub a typed nil interface.
func recorder(st store.Store) core.MissionRecorder {
	if st == nil {
		return nil
	}
	return st
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	// Websocket handlers watch the request context; tie it to ours so they
	// stop on shutdown.
	a.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("starting wireroom server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
