package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/libget/internal/server"
)

// Serve runs the player without a terminal view. UI clients drive it through the command
// endpoints and follow it through the event hub at /events until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, broadcaster, err := r.newPlayer()
	if err != nil {
		return err
	}
	defer stopEngine(engine, r.logger)

	router, hub := r.newRouter(engine)
	defer hub.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		broadcaster.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return server.Serve(ctx, addr, router, r.logger, nil)
	})

	r.logger.Info("serving player", "addr", addr, "broadcast_interval", r.config.Player.BroadcastInterval())
	r.logger.Debug("registered routes", "routes", router.Routes())
	return g.Wait()
}
