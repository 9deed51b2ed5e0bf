package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
	"github.com/devricklin/jina-sum-bridge/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive gewechat callbacks and answer in chats",
		Long: `Start the callback server for the gewechat gateway. Shared links
and commands are processed one at a time by a single event loop.

Examples:
  jinasum serve
  jinasum serve --config ./config.json --listen :9919`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "override listen_addr")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}

	logger := newLogger(cmd, cfg)

	gewe := gewechat.NewClient(cfg.GewechatBaseURL, cfg.GewechatToken, cfg.GewechatAppID)
	a, err := newApp(cfg, gewe, logger)
	if err != nil {
		return err
	}

	srv := server.NewGewechatServer(server.Options{
		Addr:         cfg.ListenAddr,
		CallbackPath: cfg.CallbackPath,
	}, a.svc, a.metrics, logger)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting jinasum",
		"listen", cfg.ListenAddr,
		"callback", cfg.CallbackPath,
		"auto_sum", cfg.AutoSum,
		"key_strategy", cfg.CacheKeyStrategy)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.svc.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shut down")
	return nil
}
