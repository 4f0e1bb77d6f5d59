package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/sports-edge/internal/health"
	"github.com/yourusername/sports-edge/internal/metrics"
	"github.com/yourusername/sports-edge/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep ratings fresh on a schedule and expose health and metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := predictor.RefreshAll(ctx); err != nil {
			return fmt.Errorf("initial rating refresh failed: %w", err)
		}

		sched := scheduler.NewScheduler(predictor, log)
		if cfg.Schedule.RatingRefresh != "" {
			if _, err := sched.ScheduleRatingRefresh(cfg.Schedule.RatingRefresh); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		hc := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Metrics.Port,
			Checks: map[string]health.Checker{
				"database": health.CheckerFunc(db.HealthCheck),
			},
			Logger: log,
		}
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			hc.MetricsPath = cfg.Metrics.Path
			hc.MetricsHandler = metrics.Handler()
		}
		server := health.NewServer(hc)
		if err := server.Start(ctx); err != nil {
			return err
		}
		server.SetReady(true)

		log.WithField("next_refresh", sched.GetNextRun()).Info("Edge service running")
		<-ctx.Done()
		server.SetReady(false)
		log.Info("Edge service stopping")
		return nil
	},
}
