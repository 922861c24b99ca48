package chrono

import (
	"context"
	"fmt"

	"rollcall-backend/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named jobs on cron specs.
type Scheduler interface {
	Schedule(name, spec string, job func()) error
}

// CronScheduler implements Scheduler with `github.com/robfig/cron/v3` in the
// Brussels timezone. A job whose previous run has not finished is skipped.
type CronScheduler struct {
	cron *cron.Cron
	tel  telemetry.API
}

// NewCronScheduler starts the scheduler right away.
func NewCronScheduler(tel telemetry.API) CronScheduler {
	tel = telemetry.NewScopedAPI("cron", tel)
	logger := cronLogger{tel: tel}

	cronner := cron.New(
		cron.WithLogger(logger),
		cron.WithLocation(brussels),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	cronner.Start()

	return CronScheduler{
		cron: cronner,
		tel:  tel,
	}
}

func (s CronScheduler) Schedule(name, spec string, job func()) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.tel.ReportDebug("job started", telemetry.KV{Key: "job", Value: name})
		job()
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.tel.ReportDebug(
		"job scheduled",
		telemetry.KV{Key: "job", Value: name},
		telemetry.KV{Key: "next", Value: s.cron.Entry(id).Next},
	)
	return nil
}

// Stop stops scheduling new runs and waits for running jobs until ctx is
// done.
func (s CronScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.tel.ReportWarning("stop", "gave up waiting for running jobs", ctx.Err())
	}
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) params(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, telemetry.KV{
			Key:   fmt.Sprint(keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(msg, l.params(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, l.params(keysAndValues)...)
	l.tel.ReportBroken("job", params...)
}
