package cmd

import (
	"context"
	"io"
	"log/slog"

	"tgscout/internal/application"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/config"
	"tgscout/internal/notify"
	"tgscout/internal/scrapers/tgstat"
	"tgscout/internal/store"
	"tgscout/lib/restyutil"
	"tgscout/lib/serviceutil"
)

func newNotifiers(cfg config.Config, tel telemetry.API) []notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegram(notify.TelegramOptions{
			Token:      cfg.Telegram.Token,
			ChatID:     cfg.Telegram.ChatID,
			APIBaseURL: cfg.Telegram.APIBaseURL,
		}, tel))
	}
	if cfg.Email.Enabled {
		notifiers = append(notifiers, notify.NewEmail(notify.EmailOptions{
			Server:   cfg.Email.Server,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		}, tel))
	}
	return notifiers
}

type pipeline struct {
	ranker    *application.Ranker
	notifiers int
	close     func()
}

// newPipeline builds the ranker from the config. Configuration and store failures are fatal.
func newPipeline(ctx context.Context, cfg config.Config, tel telemetry.API, out io.Writer) pipeline {
	err := cfg.Validate()
	if err != nil {
		serviceutil.Fatal("invalid configuration", err)
	}

	clientOpts := tgstat.ClientOptions{
		UserAgent:         cfg.Crawl.UserAgent,
		Timeout:           cfg.Crawl.Timeout(),
		RequestsPerSecond: cfg.Crawl.RequestsPerSecond,
		CloudflareBypass:  cfg.Crawl.CloudflareBypass,
	}
	if cfg.Crawl.DumpDir != "" {
		dump, err := restyutil.NewDirOutput(cfg.Crawl.DumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create dump directory", err)
		}
		clientOpts.Dump = dump
	}

	crawler := tgstat.NewCrawler(
		tgstat.NewClient(clientOpts, tel),
		tgstat.Options{
			APIBaseURL: cfg.Crawl.APIBaseURL,
			Delay:      cfg.Crawl.Delay(),
		},
		tel,
	)

	deps := application.Deps{
		Notifiers: newNotifiers(cfg, tel),
		Out:       out,
	}

	closeStore := func() {}
	if cfg.Store.DSN != "" {
		history, err := store.Open(ctx, cfg.Store.DSN, tel)
		if err != nil {
			serviceutil.Fatal("failed to open history store", err)
		}
		deps.History = history
		closeStore = func() {
			err := history.Close()
			if err != nil {
				slog.Warn("failed to close history store", "err", err)
			}
		}
	}

	return pipeline{
		ranker:    application.NewRanker(crawler, deps, tel),
		notifiers: len(deps.Notifiers),
		close:     closeStore,
	}
}

func (p pipeline) options(seed string, cfg config.Config, sendNotifications bool) application.Options {
	if sendNotifications && p.notifiers == 0 {
		slog.Warn("--notify was given but neither telegram nor email is enabled in the config")
	}
	return application.Options{
		SeedURL:          seed,
		MaxPages:         cfg.Crawl.MaxPages,
		ThresholdPercent: cfg.Crawl.ThresholdPercent,
		CSVPath:          cfg.Output.CSVPath,
		Top:              cfg.Output.Top,
		Notify:           sendNotifications,
	}
}
