package application

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tgscout/internal/channel"
	"tgscout/internal/components/chrono"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/notify"
	"tgscout/internal/ranking"
	"tgscout/internal/scrapers/tgstat"
	"tgscout/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	mutex  sync.Mutex
	result tgstat.CrawlResult
	calls  int
}

func (f *fakeCrawler) Run(ctx context.Context, seedUrl string, maxPages int) tgstat.CrawlResult {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
	return f.result
}

func (f *fakeCrawler) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

type fakeNotifier struct {
	err  error
	sent []string
}

func (f *fakeNotifier) Notify(ctx context.Context, channel ranking.Flagged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, channel.URL)
	return nil
}

type failingHistory struct{}

func (failingHistory) SaveCrawl(context.Context, store.Run) (int64, error) {
	return 0, errors.New("disk full")
}

func crawlResult() tgstat.CrawlResult {
	return tgstat.CrawlResult{
		Mode: tgstat.ModeAPI,
		Records: []channel.Record{
			{
				URL:          "https://t.me/big",
				Text:         "Big",
				Members:      channel.MembersOf(150000),
				AvgPostReach: 30000,
				Citations:    1200,
				Description:  strings.Repeat("x", 250),
				Source:       "api",
			},
			{URL: "https://t.me/small", Text: "Small", Members: channel.ParseMembers("900"), Source: "api"},
			{URL: "https://t.me/tiny", Text: "Tiny", Source: "api"},
		},
	}
}

func TestRankerRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out.csv")

	history, err := store.Open(ctx, ":memory:", telemetry.NewRecorderAPI())
	require.NoError(t, err)
	defer history.Close()

	notifier := &fakeNotifier{}
	var out bytes.Buffer
	tel := telemetry.NewRecorderAPI()
	ranker := NewRanker(&fakeCrawler{result: crawlResult()}, Deps{
		History:   history,
		Notifiers: []notify.Notifier{notifier},
		Clock:     chrono.FixedImpl{Time: time.Unix(1_700_000_000, 0)},
		Out:       &out,
	}, tel)

	outcome := ranker.Run(ctx, Options{
		SeedURL:          "https://tgstat.ru/crypto",
		MaxPages:         50,
		ThresholdPercent: 20,
		CSVPath:          csvPath,
		Top:              10,
		Notify:           true,
	})

	require.Empty(t, outcome.Errors)
	require.Len(t, outcome.Evaluation.Sorted, 3)
	require.Equal(t, 75, outcome.Evaluation.Sorted[0].Score)
	// 75, 5 and 5 average to 28.33, only the big channel clears +20%
	require.Len(t, outcome.Evaluation.Flagged, 1)
	require.Equal(t, []string{"https://t.me/big"}, notifier.sent)
	require.Equal(t, []string{"https://t.me/big"}, outcome.Notified)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "https://t.me/big,Big,150000,")

	require.NotZero(t, outcome.CrawlID)
	crawl, err := history.Crawl(ctx, outcome.CrawlID)
	require.NoError(t, err)
	require.Equal(t, int64(1_700_000_000), crawl.StartedAt)
	require.Equal(t, 3, crawl.ChannelCount)
	require.Equal(t, "api", crawl.Mode)

	printed := out.String()
	require.Contains(t, printed, "Average quality score: 28.3")
	require.Contains(t, printed, "Notification sent for high-quality channel: Big")
}

func TestRankerSinkFailuresDoNotStopOthers(t *testing.T) {
	ctx := context.Background()

	failing := &fakeNotifier{err: errors.New("telegram is down")}
	working := &fakeNotifier{}
	tel := telemetry.NewRecorderAPI()
	var out bytes.Buffer
	ranker := NewRanker(&fakeCrawler{result: crawlResult()}, Deps{
		History:   failingHistory{},
		Notifiers: []notify.Notifier{failing, working},
		Out:       &out,
	}, tel)

	outcome := ranker.Run(ctx, Options{
		SeedURL:          "https://tgstat.ru/crypto",
		ThresholdPercent: 20,
		CSVPath:          filepath.Join(t.TempDir(), "missing", "out.csv"),
		Notify:           true,
	})

	require.Len(t, outcome.Errors, 3)
	require.Equal(t, []string{"https://t.me/big"}, working.sent)
	require.Zero(t, outcome.CrawlID)
	require.True(t, tel.Has(telemetry.REPORT_BROKEN, report_application_csv))
	require.True(t, tel.Has(telemetry.REPORT_BROKEN, report_application_store))
	require.True(t, tel.Has(telemetry.REPORT_BROKEN, report_application_notify))
}

func TestRankerCancelledCrawlStillDelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := crawlResult()
	result.Cancelled = true

	notifier := &fakeNotifier{}
	var out bytes.Buffer
	ranker := NewRanker(&fakeCrawler{result: result}, Deps{
		Notifiers: []notify.Notifier{notifier},
		Out:       &out,
	}, telemetry.NewRecorderAPI())

	outcome := ranker.Run(ctx, Options{SeedURL: "tgstat.ru/crypto", ThresholdPercent: 20, Notify: true})

	require.Empty(t, outcome.Errors)
	require.Equal(t, []string{"https://t.me/big"}, notifier.sent)
	require.Contains(t, out.String(), "Crawl interrupted")
}

func TestRankerNothingFound(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")
	var out bytes.Buffer
	ranker := NewRanker(&fakeCrawler{result: tgstat.CrawlResult{
		Mode:     tgstat.ModeHTML,
		Warnings: []error{errors.New("fetch page 1: status 503")},
	}}, Deps{Out: &out}, telemetry.NewRecorderAPI())

	outcome := ranker.Run(context.Background(), Options{SeedURL: "tgstat.ru/x", CSVPath: csvPath, Notify: true})

	require.Empty(t, outcome.Evaluation.Sorted)
	require.Empty(t, outcome.Notified)
	require.Contains(t, out.String(), "Warning: fetch page 1: status 503")
	require.Contains(t, out.String(), "No channels found")
	_, err := os.Stat(csvPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

type manualCron struct {
	mutex    sync.Mutex
	callback func()
	stopped  bool
}

func (m *manualCron) Cron(spec string, callback func()) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.callback = callback
	return nil
}

func (m *manualCron) Stop() context.Context {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stopped = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func (m *manualCron) tick() {
	m.mutex.Lock()
	callback := m.callback
	m.mutex.Unlock()
	callback()
}

func TestWatchNotifiesOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	crawler := &fakeCrawler{result: crawlResult()}
	notifier := &fakeNotifier{}
	cron := &manualCron{}
	ranker := NewRanker(crawler, Deps{
		Notifiers: []notify.Notifier{notifier},
		Out:       &bytes.Buffer{},
	}, telemetry.NewRecorderAPI())

	done := make(chan error)
	go func() {
		done <- ranker.Watch(ctx, cron, "@hourly", Options{
			SeedURL:          "tgstat.ru/crypto",
			ThresholdPercent: 20,
			Notify:           true,
		})
	}()

	require.Eventually(t, func() bool { return crawler.Calls() == 1 }, 5*time.Second, 5*time.Millisecond)
	cron.tick()
	require.Eventually(t, func() bool { return crawler.Calls() == 2 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.True(t, cron.stopped)
	require.Equal(t, []string{"https://t.me/big"}, notifier.sent)
}
