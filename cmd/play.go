package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/player"
	"github.com/desertthunder/libget/internal/player/speaker"
	"github.com/desertthunder/libget/internal/server"
	"github.com/desertthunder/libget/internal/shared"
	"github.com/desertthunder/libget/internal/ui"
)

// Play plays a track in the now playing view. With --events-addr, UI clients can follow
// and drive the same engine over the event hub while the view is open.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	track, err := r.tracks.GetTrackByID(ctx, id)
	if err != nil {
		return err
	}

	// The view owns the terminal from here on.
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, broadcaster, err := r.newPlayer()
	if err != nil {
		return err
	}
	go broadcaster.Run(ctx)
	defer stopEngine(engine, r.logger)

	if addr := cmd.String("events-addr"); addr != "" {
		router, hub := r.newRouter(engine)
		defer hub.Close()
		go func() {
			if err := server.Serve(ctx, addr, router, r.logger, nil); err != nil {
				r.logger.Error("event server failed", "error", err)
			}
		}()
	}

	if err := engine.Play(*track); err != nil {
		return err
	}

	sub := r.bus.Subscribe(events.DefaultBufferSize, events.PlayerState)
	defer sub.Close()

	model := ui.NewModel(engine, sub.C(), r.config.Player.SeekStepSeconds)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running now playing view: %w", err)
	}
	return nil
}

// newPlayer opens the default audio output and builds an engine on it with its state broadcaster.
func (r *Runner) newPlayer() (*player.Engine, *player.Broadcaster, error) {
	logger := shared.WithLogger(r.logger, "component", "player")
	device, err := speaker.New(0, logger)
	if err != nil {
		return nil, nil, err
	}
	engine := player.NewEngine(device, logger)
	broadcaster := player.NewBroadcaster(engine, r.bus, r.config.Player.BroadcastInterval(), logger)
	return engine, broadcaster, nil
}

// newRouter serves the event hub and the command endpoints for engine.
func (r *Runner) newRouter(engine *player.Engine) (*server.BasicRouter, *events.Hub) {
	logger := shared.WithLogger(r.logger, "component", "server")

	router := server.NewBasicRouter()
	router.Use(server.Recoverer(logger), server.RequestLogger(logger))

	hub := events.NewHub(r.bus, shared.WithLogger(r.logger, "component", "hub"))
	router.Handler(hub)

	server.NewCommands(server.CommandsOpts{
		Player:    engine,
		Tracks:    r.tracks,
		Lyrics:    r.resolver,
		Lookup:    r.lrclib(),
		Publisher: r.publisher(r.bus),
		Logger:    logger,
	}).Register(router)

	return router, hub
}

func stopEngine(engine *player.Engine, logger *log.Logger) {
	if err := engine.Stop(); err != nil {
		logger.Warn("failed to stop playback", "error", err)
	}
}
