package store

import (
	"context"
	"database/sql"
	"time"

	"rollcall-backend/internal/components/db"
)

// Run is one row of the ingestion ledger.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Discovered  int
	Ingested    int
	Skipped     int
	Failed      int
	Interrupted bool
}

func (s Store) StartRun(ctx context.Context, id string, startedAt time.Time) error {
	err := s.db.CreateIngestRun(ctx, db.CreateIngestRunParams{
		ID:        id,
		StartedAt: startedAt,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateIngestRun", id)
	}
	return err
}

func (s Store) FinishRun(ctx context.Context, run Run) error {
	finished := sql.NullTime{}
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}
	err := s.db.FinishIngestRun(ctx, db.FinishIngestRunParams{
		ID:          run.ID,
		FinishedAt:  finished,
		Discovered:  int64(run.Discovered),
		Ingested:    int64(run.Ingested),
		Skipped:     int64(run.Skipped),
		Failed:      int64(run.Failed),
		Interrupted: run.Interrupted,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "FinishIngestRun", run.ID)
	}
	return err
}

// Runs returns the most recent runs first.
func (s Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.ListIngestRuns(ctx, int64(limit))
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListIngestRuns")
		return nil, err
	}

	runs := make([]Run, len(rows))
	for i, row := range rows {
		runs[i] = Run{
			ID:          row.ID,
			StartedAt:   row.StartedAt,
			Discovered:  int(row.Discovered),
			Ingested:    int(row.Ingested),
			Skipped:     int(row.Skipped),
			Failed:      int(row.Failed),
			Interrupted: row.Interrupted,
		}
		if row.FinishedAt.Valid {
			finished := row.FinishedAt.Time
			runs[i].FinishedAt = &finished
		}
	}
	return runs, nil
}
