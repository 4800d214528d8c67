package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zombie-scanner/internal/api"
	"zombie-scanner/internal/observability"
	"zombie-scanner/internal/scheduler"
	"zombie-scanner/internal/solana"
	"zombie-scanner/internal/watcher"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with background maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log = log.WithField("component", "server")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics := observability.NewMetrics("", nil)
			a, err := newApp(ctx, cfg, log, metrics)
			if err != nil {
				return err
			}
			defer a.Close()

			deps := api.Deps{
				Network:  cfg.Network(),
				Scanner:  a.scanner,
				Sessions: a.tracker,
				Points:   a.points,
				Claims:   a.claimer,
				Metrics:  observability.Handler(nil),
				Log:      log,
			}

			// Wallet activity evicts cached scans; the API still works without it.
			if cfg.Solana.WSEndpoint != "" {
				ws, err := solana.NewWSClient(ctx, cfg.Solana.WSEndpoint, nil, log)
				if err != nil {
					log.WithError(err).Warnf("websocket unavailable, cache invalidation on activity disabled")
				} else {
					w := watcher.New(ctx, ws, a.scanner, watcher.Hooks{
						Notified:      func(string) { metrics.WSNotifications.Inc() },
						Subscriptions: func(n int) { metrics.WSSubscriptions.Set(float64(n)) },
					}, log)
					a.tracker.AddListener(w)
					deps.Watching = w.Watching
					defer ws.Close()
					defer w.Close()
				}
			}

			sched := scheduler.NewMaintenanceScheduler(a.cache, a.tracker, scheduler.Config{
				CacheSweepCron: cfg.Scheduler.CacheSweepCron,
				HousekeepCron:  cfg.Scheduler.HousekeepCron,
				SessionMaxIdle: cfg.Scheduler.SessionMaxIdle,
			}, log)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			server := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      api.NewServer(deps),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Infof("Starting HTTP server on %s (network %s)", cfg.Server.Addr, cfg.Network())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				// A second signal terminates immediately.
				stop()
				log.Infof("Received shutdown signal, draining connections...")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warnf("HTTP server shutdown incomplete")
			}
			log.Infof("Shutdown complete")
			return nil
		},
	}
	command.Flags().StringVarP(&addr, "addr", "a", "", "HTTP listen address (overrides config)")
	return command
}
