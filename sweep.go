package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/deadside-tools/deadside-ingest/internal/config"
)

func newSweepCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Ingest new telemetry from every registered server",
		Long: `Sweep all registered servers once: discover their telemetry paths,
read lines appended since the last sweep, and fold them into player
statistics. With --watch, keep sweeping on the configured poll interval
until interrupted; edits to the config file are picked up live.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := shutdownContext(cmd.Context(), a.logger)

			if !watch {
				return sweepOnce(ctx, a)
			}

			return sweepLoop(ctx, a)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "sweep continuously on the poll interval")

	return cmd
}

func sweepOnce(ctx context.Context, a *app) error {
	report, err := a.sweeper.SweepAll(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Printf("Swept %d servers: %d death events, %d log events, %d failures\n",
		report.Servers, report.DeathEvents, report.LogEvents, report.Failures)

	return nil
}

// sweepLoop runs sweeps on the poll interval until the context cancels.
// The config file is watched so a changed poll interval takes effect
// without a restart.
func sweepLoop(ctx context.Context, a *app) error {
	interval := cfg.PollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reload := watchConfig(ctx, a)

	if err := sweepOnce(ctx, a); err != nil {
		a.logger.Warn("sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("sweep loop stopped")
			return nil

		case <-ticker.C:
			if err := sweepOnce(ctx, a); err != nil {
				a.logger.Warn("sweep failed", "error", err)
			}

		case newInterval := <-reload:
			if newInterval == interval {
				continue
			}

			a.logger.Info("poll interval changed",
				"old", interval.String(),
				"new", newInterval.String(),
			)
			interval = newInterval
			ticker.Reset(interval)
		}
	}
}

// watchConfig watches the config file and emits the new poll interval on
// every valid rewrite. Watch setup failure only disables live reload.
func watchConfig(ctx context.Context, a *app) <-chan time.Duration {
	reload := make(chan time.Duration, 1)

	path := flagConfigPath
	if path == "" {
		path = defaultConfigPath
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		a.logger.Warn("config watch unavailable", "error", err)
		return reload
	}

	if err := watcher.Add(path); err != nil {
		a.logger.Debug("config file not watchable, live reload disabled",
			"path", path,
			"error", err,
		)
		watcher.Close()

		return reload
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				fresh, err := config.Load(path)
				if err != nil {
					a.logger.Warn("config reload failed, keeping previous settings",
						"path", path,
						"error", err,
					)

					continue
				}

				cfg = fresh

				select {
				case reload <- fresh.PollInterval():
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				a.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return reload
}
