package trigger

import (
	"context"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	"github.com/robfig/cron/v3"
)

// passTimeout bounds one in-process pass; the HTTP trigger relies on the
// request deadline instead.
const passTimeout = time.Minute

// StartCron runs a lifecycle pass on the given cron spec (standard five
// fields, or descriptors such as "@every 1m"). The returned cron must be
// stopped on shutdown.
func StartCron(spec string, scheduler ports.SchedulerService) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		RunOnce(context.Background(), scheduler, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info().Str("spec", spec).Msg("lifecycle scheduler cron started")
	return c, nil
}

// RunOnce executes a single pass and logs its outcome.
func RunOnce(ctx context.Context, scheduler ports.SchedulerService, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, passTimeout)
	defer cancel()

	result, err := scheduler.RunPass(ctx, now)
	if err != nil {
		event := logger.Error().Err(err)
		if result != nil {
			event = event.Int("failed", len(result.Failed))
		}
		event.Msg("scheduled lifecycle pass failed")
	}
}
