package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/maestro/internal/health"
	"github.com/nadzzz/maestro/internal/repl"
	httptransport "github.com/nadzzz/maestro/internal/transport/http"
)

const readyGreeting = "Maestro is ready. What would you like to hear?"

// auxiliary wraps an optional server so that its failure is logged and never
// ends the session.
func auxiliary(name string, serve func() error) func() error {
	return func() error {
		if err := serve(); err != nil {
			slog.Error(name+" failed", "error", err)
		}
		return nil
	}
}

func runSession(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := wireApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("closing session resources", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var hs *health.Server
	if cfg.Server.HealthPort != 0 {
		hs = health.New(cfg.Server.HealthPort, cfg.Server.GRPCHealthPort)
		g.Go(auxiliary("health server", func() error {
			return hs.ListenAndServe(gctx)
		}))
	}

	// Without a token no command can succeed, so the session does not start.
	if _, err := a.tokens.AccessToken(ctx); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("authorizing with spotify: %w", err)
	}
	if hs != nil {
		hs.SetReady(true)
	}

	if cfg.Remote.HTTP.Enabled {
		t := httptransport.New(cfg.Remote.HTTP.Port)
		g.Go(auxiliary("remote transport", func() error {
			slog.Info("starting transport", "name", t.Name())
			return t.Listen(gctx, a.dispatcher.Handle)
		}))
	}

	loop := &repl.Loop{
		In:      cmd.InOrStdin(),
		Out:     cmd.OutOrStdout(),
		Console: a.sink,
		Session: a.session,
		Handler: a.dispatcher,
		Spinner: cfg.UI.Spinner,
	}
	if a.capture != nil {
		loop.Capture = a.capture
	}

	a.sink.Say(gctx, readyGreeting)
	slog.Info("maestro started", "version", version, "voice", opts.voice, "remote_http", cfg.Remote.HTTP.Enabled)

	g.Go(func() error {
		// The session ends with the console; background servers follow.
		defer cancel()
		return loop.Run(gctx, opts.voice)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("maestro stopped")
	return nil
}
