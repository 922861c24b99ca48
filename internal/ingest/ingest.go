package ingest

import (
	"context"
	"errors"
	"net/url"
	"time"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/scrapers/howtheyvote"
	"rollcall-backend/internal/store"
	"rollcall-backend/internal/votes"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_run         = "run"
	report_known_ids   = "known-ids"
	report_fetch_vote  = "fetch-vote"
	report_insert_vote = "insert-vote"
	report_run_ledger  = "run-ledger"
)

// Source is where listing pages and records come from.
type Source interface {
	BaseUrl() *url.URL
	ListingPage(ctx context.Context, page int) ([]byte, error)
	Vote(ctx context.Context, id int64) (howtheyvote.Vote, []byte, error)
}

// Store is where normalized records go.
type Store interface {
	KnownVoteIds(ctx context.Context) (map[int64]struct{}, error)
	InsertVote(ctx context.Context, rec votes.Record) (bool, error)
	StartRun(ctx context.Context, id string, startedAt time.Time) error
	FinishRun(ctx context.Context, run store.Run) error
}

type Options struct {
	MaxPages int
	Order    howtheyvote.Order
}

// Report summarizes one run.
type Report struct {
	RunID      string
	Discovered int
	Ingested   int
	// Skipped counts records that were already stored.
	Skipped     int
	Failed      int
	Interrupted bool
	Started     time.Time
	Finished    time.Time
}

type Pipeline struct {
	source Source
	store  Store
	opts   Options
	time   chrono.TimeAPI
	tel    telemetry.API
	tracer trace.Tracer
}

func NewPipeline(
	source Source,
	store Store,
	opts Options,
	time chrono.TimeAPI,
	tel telemetry.API,
) Pipeline {
	assert.NotNil(source)
	assert.NotNil(store)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.Positive(opts.MaxPages)

	return Pipeline{
		source: source,
		store:  store,
		opts:   opts,
		time:   time,
		tel:    telemetry.NewScopedAPI("ingest", tel),
		tracer: telemetry.Tracer("rollcall.ingest"),
	}
}

// Run discovers new vote ids, fetches and stores every one of them. Failures
// are reported and counted, they never abort the run. Cancelling ctx stops
// the run after the record in flight.
func (p Pipeline) Run(ctx context.Context) Report {
	report := Report{
		RunID:   uuid.NewString(),
		Started: p.time.Now(),
	}

	ctx, span := p.tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run_id", report.RunID),
	))
	defer span.End()

	err := p.store.StartRun(ctx, report.RunID, report.Started)
	if err != nil {
		p.tel.ReportBroken(report_run_ledger, err, report.RunID)
	}

	known, err := p.store.KnownVoteIds(ctx)
	if err != nil {
		// inserts are still idempotent, discovery just has to walk further
		p.tel.ReportBroken(report_known_ids, err)
		known = map[int64]struct{}{}
	}

	ids := howtheyvote.Discover(
		ctx,
		p.source.ListingPage,
		func(id int64) bool {
			_, ok := known[id]
			return ok
		},
		howtheyvote.DiscoverOptions{
			MaxPages: p.opts.MaxPages,
			Order:    p.opts.Order,
			Base:     p.source.BaseUrl(),
		},
		p.tel,
	)
	report.Discovered = len(ids)
	p.tel.ReportDebug("discovered", telemetry.KV{Key: "count", Value: len(ids)})

	for _, id := range ids {
		if ctx.Err() != nil {
			report.Interrupted = true
			p.tel.ReportWarning(report_run, ctx.Err(), report.RunID)
			break
		}
		p.ingestOne(ctx, id, &report)
	}

	report.Finished = p.time.Now()
	span.SetAttributes(
		attribute.Int("discovered", report.Discovered),
		attribute.Int("ingested", report.Ingested),
		attribute.Int("skipped", report.Skipped),
		attribute.Int("failed", report.Failed),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, "some records failed")
	}

	p.tel.ReportCount("run.ingested", int64(report.Ingested))
	p.tel.ReportCount("run.failed", int64(report.Failed))

	finished := report.Finished
	err = p.store.FinishRun(context.WithoutCancel(ctx), store.Run{
		ID:          report.RunID,
		FinishedAt:  &finished,
		Discovered:  report.Discovered,
		Ingested:    report.Ingested,
		Skipped:     report.Skipped,
		Failed:      report.Failed,
		Interrupted: report.Interrupted,
	})
	if err != nil {
		p.tel.ReportBroken(report_run_ledger, err, report.RunID)
	}

	return report
}

func (p Pipeline) ingestOne(ctx context.Context, id int64, report *Report) {
	ctx, span := p.tracer.Start(ctx, "ingestOne", trace.WithAttributes(
		attribute.Int64("vote_id", id),
	))
	defer span.End()

	vote, raw, err := p.source.Vote(ctx, id)
	if err != nil {
		report.Failed++
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		if errors.Is(err, howtheyvote.ErrNotFound) {
			p.tel.ReportDebug(report_fetch_vote, "not found, retried next run", id)
		} else {
			p.tel.ReportWarning(report_fetch_vote, err, id)
		}
		return
	}

	rec := votes.Normalize(vote, raw)
	// a fetched record is always stored, even if the run was cancelled meanwhile
	inserted, err := p.store.InsertVote(context.WithoutCancel(ctx), rec)
	if err != nil {
		report.Failed++
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		p.tel.ReportBroken(report_insert_vote, err, id)
		return
	}
	if !inserted {
		report.Skipped++
		return
	}
	report.Ingested++
}
