// Package application runs a whole crawl: fetch the listing, score and rank what was found,
// then hand the result to every configured sink.
package application

import (
	"context"
	"fmt"
	"io"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/chrono"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/notify"
	"tgscout/internal/quality"
	"tgscout/internal/ranking"
	"tgscout/internal/report"
	"tgscout/internal/scrapers/tgstat"
	"tgscout/internal/store"
)

const (
	report_application_csv    = "application.write-csv"
	report_application_store  = "application.save-crawl"
	report_application_notify = "application.notify"
	report_application_run    = "application.run"
)

type Crawler interface {
	Run(ctx context.Context, seedUrl string, maxPages int) tgstat.CrawlResult
}

type History interface {
	SaveCrawl(ctx context.Context, run store.Run) (int64, error)
}

type Options struct {
	SeedURL          string
	MaxPages         int
	ThresholdPercent float64
	// CSVPath is where the csv export goes, empty disables it.
	CSVPath string
	// Top is how many channels the console table shows.
	Top int
	// Notify sends every flagged channel to every notifier.
	Notify bool
}

// Outcome is what a single run produced.
type Outcome struct {
	Crawl      tgstat.CrawlResult
	Evaluation ranking.Evaluation
	// CrawlID is the history id, 0 when nothing was saved.
	CrawlID  int64
	Notified []string
	// Errors are the sink failures, they never stop the other sinks.
	Errors []error
}

type Deps struct {
	// History may be nil.
	History   History
	Notifiers []notify.Notifier
	Clock     chrono.API
	Out       io.Writer
}

type Ranker struct {
	crawler   Crawler
	history   History
	notifiers []notify.Notifier
	clock     chrono.API
	out       io.Writer
	tel       telemetry.API
}

func NewRanker(crawler Crawler, deps Deps, tel telemetry.API) *Ranker {
	assert.NotNil(crawler)
	assert.NotNil(deps.Out)
	assert.NotNil(tel)

	if deps.Clock == nil {
		deps.Clock = chrono.StandardImpl{}
	}
	return &Ranker{
		crawler:   crawler,
		history:   deps.History,
		notifiers: deps.Notifiers,
		clock:     deps.Clock,
		out:       deps.Out,
		tel:       telemetry.NewScopedAPI("application", tel),
	}
}

// Run crawls, ranks and delivers the result. Once the crawl returned, sinks run to
// completion even if ctx was cancelled.
func (r *Ranker) Run(ctx context.Context, opts Options) Outcome {
	return r.run(ctx, opts, nil)
}

// run skips notifying channels whose url is in notified and adds the ones it notified.
func (r *Ranker) run(ctx context.Context, opts Options, notified map[string]struct{}) Outcome {
	assert.NotEmptyStr(opts.SeedURL)

	started := r.clock.Now()
	crawl := r.crawler.Run(ctx, opts.SeedURL, opts.MaxPages)
	finished := r.clock.Now()

	evaluation := ranking.Evaluate(quality.ScoreAll(crawl.Records), opts.ThresholdPercent)
	outcome := Outcome{Crawl: crawl, Evaluation: evaluation}
	r.tel.ReportDebug(report_application_run, opts.SeedURL, string(crawl.Mode), len(crawl.Records))

	sinkCtx := context.WithoutCancel(ctx)

	r.print(crawl, evaluation, opts.Top)

	if opts.CSVPath != "" && len(evaluation.Sorted) > 0 {
		err := report.WriteCSVFile(opts.CSVPath, evaluation.Sorted)
		if err != nil {
			r.tel.ReportBroken(report_application_csv, err)
			outcome.Errors = append(outcome.Errors, err)
		} else {
			fmt.Fprintf(r.out, "Saved %d channels to %s\n", len(evaluation.Sorted), opts.CSVPath)
		}
	}

	if r.history != nil {
		id, err := r.history.SaveCrawl(sinkCtx, store.Run{
			SeedURL:    opts.SeedURL,
			Mode:       string(crawl.Mode),
			StartedAt:  started,
			FinishedAt: finished,
			Cancelled:  crawl.Cancelled,
			Evaluation: evaluation,
		})
		if err != nil {
			r.tel.ReportBroken(report_application_store, err)
			outcome.Errors = append(outcome.Errors, err)
		} else {
			outcome.CrawlID = id
			fmt.Fprintf(r.out, "Saved crawl #%d to history\n", id)
		}
	}

	if opts.Notify {
		outcome.Notified, outcome.Errors = r.notify(sinkCtx, evaluation.Flagged, notified, outcome.Errors)
	}

	return outcome
}

func (r *Ranker) print(crawl tgstat.CrawlResult, evaluation ranking.Evaluation, top int) {
	for _, warning := range crawl.Warnings {
		fmt.Fprintf(r.out, "Warning: %v\n", warning)
	}
	if crawl.Cancelled {
		fmt.Fprintln(r.out, "Crawl interrupted, continuing with partial results")
	}
	if len(evaluation.Sorted) == 0 {
		fmt.Fprintln(r.out, "No channels found")
		return
	}

	fmt.Fprintf(r.out, "Crawl mode: %s\n", crawl.Mode)
	report.Summary(r.out, evaluation)
	report.Top(r.out, evaluation.Sorted, top)
	report.Flagged(r.out, evaluation.Flagged)
}

func (r *Ranker) notify(
	ctx context.Context,
	flagged []ranking.Flagged,
	notified map[string]struct{},
	errs []error,
) ([]string, []error) {
	var sent []string
	for _, channel := range flagged {
		if _, ok := notified[channel.URL]; ok {
			continue
		}

		delivered := false
		for _, notifier := range r.notifiers {
			err := notifier.Notify(ctx, channel)
			if err != nil {
				r.tel.ReportBroken(report_application_notify, err, channel.URL)
				errs = append(errs, err)
				continue
			}
			delivered = true
		}
		if !delivered {
			continue
		}

		sent = append(sent, channel.URL)
		if notified != nil {
			notified[channel.URL] = struct{}{}
		}
		fmt.Fprintf(r.out, "Notification sent for high-quality channel: %s\n", channel.Text)
	}
	return sent, errs
}
