package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kompox/tmpcluster/adapters/host/fswatch"
	"github.com/kompox/tmpcluster/adapters/httpapi"
	"github.com/kompox/tmpcluster/config/opscfg"
	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newCmdServe() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cluster operations over HTTP and reload settings and templates on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(cmd, requireNone)
			if err != nil {
				return err
			}
			opts := rt.cfg.ServerOptions()
			if listen != "" {
				opts.Listen = listen
			}
			ctx, cleanup := withCmdRunLogger(ctx, "serve", opts.Listen)
			defer func() { cleanup(err) }()
			logger := logging.FromContext(ctx)

			watcher, err := fswatch.New(opts.ReloadDebounce)
			if err != nil {
				return err
			}
			if err := watcher.Add(rt.configPath, func(ctx context.Context) {
				cfg, err := opscfg.Load(rt.configPath)
				if err == nil {
					err = cfg.Validate()
				}
				if err != nil {
					logger.Warn(ctx, "config reload skipped", "path", rt.configPath, "err", err)
					return
				}
				// Provider, retry and server sections apply on restart only.
				_, _ = rt.store.RebuildSettings(ctx, cfg.RawSettings())
			}); err != nil {
				return err
			}
			files := rt.cfg.TemplateFiles()
			if err := watcher.Add(files.Dir, func(ctx context.Context) {
				_, _ = rt.store.RebuildTemplates(ctx, files)
			}); err != nil {
				return err
			}
			rt.store.Subscribe(func(snap *model.Snapshot) {
				logger.Info(ctx, "snapshot published", "generation", snap.Generation, "ready", snap.Ready())
			})

			srv := &http.Server{
				Addr: opts.Listen,
				Handler: httpapi.NewHandler(httpapi.Options{
					Clusters:       rt.clusters,
					Ready:          func() bool { return rt.store.Current().Ready() },
					Metrics:        rt.metrics.Handler(),
					Logger:         logger,
					RequestTimeout: opts.RequestTimeout,
				}),
				BaseContext:       func(net.Listener) context.Context { return ctx },
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return watcher.Run(gctx) })
			g.Go(func() error {
				logger.Info(gctx, "listening", "addr", opts.Listen)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve %s: %w", opts.Listen, err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(sctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}
