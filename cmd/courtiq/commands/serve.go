package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"courtiq-landing/internal/logging"
	"courtiq-landing/internal/notifier"
	"courtiq-landing/internal/ratelimit"
	"courtiq-landing/internal/router"
	"courtiq-landing/internal/server"
	"courtiq-landing/internal/store"
	"courtiq-landing/internal/web"
)

const pruneEvery = time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page over HTTP and SSH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runServe(ctx); err != nil {
				logger.Error("serve_failed", "err", err)
				return err
			}
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	opts := cfg.NotifierOptions()
	opts.Logger = logging.Component(logger, "notifier")
	client, err := notifier.New(opts)
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}

	limiter := ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	handler, err := web.NewHandler(web.Options{
		Notifier: client,
		Limiter:  limiter,
		Logger:   logger,
		Pretty:   cfg.PrettyHTML,
	})
	if err != nil {
		return fmt.Errorf("build web handler: %w", err)
	}

	var runtime *server.Runtime
	if cfg.SSHEnabled {
		repo, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open preference store: %w", err)
		}
		defer repo.Close()

		runtime, err = server.New(cfg, server.Deps{
			Prefs:    repo,
			Notifier: client,
			Logger:   logger,
			Chain:    router.DefaultChain(limiter, logging.Component(logger, "ssh")),
		})
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.NewServer(cfg.HTTPAddress(), handler.Routes(), logger).Run(gctx)
	})
	if runtime != nil {
		g.Go(func() error { return runtime.Run(gctx) })
	}

	g.Go(func() error {
		ticker := time.NewTicker(pruneEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if n := limiter.Prune(now); n > 0 {
					logger.Debug("rate_limit_pruned", "buckets", n)
				}
			}
		}
	})

	logger.Info("serving",
		"http_addr", cfg.HTTPAddress(),
		"ssh_enabled", cfg.SSHEnabled,
		"delivery_mode", client.Mode(),
	)
	return g.Wait()
}
