package application

import (
	"context"
	"fmt"

	"tgscout/internal/components/chrono"
)

const report_application_watch = "application.watch"

// Watch runs right away and then on every tick of the cron spec until ctx is done. A channel
// is notified at most once per Watch call.
func (r *Ranker) Watch(ctx context.Context, cron chrono.CronAPI, spec string, opts Options) error {
	notified := make(map[string]struct{})
	runs := make(chan struct{}, 1)

	err := cron.Cron(spec, func() {
		select {
		case runs <- struct{}{}:
		default:
			// a run is already queued
		}
	})
	if err != nil {
		return err
	}
	defer func() { <-cron.Stop().Done() }()

	count := 0
	runOnce := func() {
		count++
		fmt.Fprintf(r.out, "Run #%d\n", count)
		outcome := r.run(ctx, opts, notified)
		r.tel.ReportCount(report_application_watch, int64(len(outcome.Crawl.Records)))
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runs:
			if ctx.Err() != nil {
				return nil
			}
			runOnce()
		}
	}
}
