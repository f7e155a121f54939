package chrono

import (
	"context"
	"fmt"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// CronAPI is the interface that anything depending on things to happen on a cron job should use.
type CronAPI interface {
	Cron(spec string, callback func()) error
	Stop() context.Context
}

// StandardCron is the standard implementation of CronAPI using `github.com/robfig/cron/v3`.
// Callbacks never overlap, a run that is still going when the next one is due delays it.
type StandardCron struct {
	cron *cron.Cron
}

// NewStandardCron is the constructor of StandardCron, the scheduler starts right away.
func NewStandardCron(tel telemetry.API) StandardCron {
	assert.NotNil(tel)
	logger := cronLogger{tel: telemetry.NewScopedAPI("cron", tel)}

	cronner := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.DelayIfStillRunning(logger)),
	)
	cronner.Start()

	return StandardCron{cron: cronner}
}

// Cron schedules callback, spec is a standard 5 field cron spec or a descriptor such as
// "@hourly" or "@every 6h".
func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Stop stops scheduling, the returned context is done once running callbacks return.
func (s StandardCron) Stop() context.Context {
	return s.cron.Stop()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[i], keysAndValues[i+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(msg, l.formatParams(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)
	l.tel.ReportBroken("cron.run", params...)
}
