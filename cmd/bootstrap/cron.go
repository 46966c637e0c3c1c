package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"roomstay/internal/pkg/config"
	"roomstay/internal/usecase/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

var CronModule = fx.Module("cron",
	fx.Provide(
		NewCron,
	),
	fx.Invoke(registerSweepJob),
)

func NewCron() *cron.Cron {
	return cron.New()
}

// registerSweepJob schedules the reaper. The cron pass is the primary cleanup
// path; the admin sweep endpoint exists for forcing a pass during incidents.
func registerSweepJob(lc fx.Lifecycle, c *cron.Cron, cfg config.Config, reaper commands.ReaperCommands) error {
	_, err := c.AddFunc(cfg.Booking.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := reaper.SweepAbandoned(ctx); err != nil {
			slog.Error("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			<-c.Stop().Done()
			return nil
		},
	})
	return nil
}
