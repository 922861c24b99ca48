package commands

import (
	"context"
	"os"

	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/ingest"
	"rollcall-backend/internal/scrapers/howtheyvote"
	"rollcall-backend/internal/store"
	"rollcall-backend/pkg/migrations"

	"github.com/jedib0t/go-pretty/v6/table"
)

var tel telemetry.API = telemetry.SlogAPI{}

func openStore(ctx context.Context, allowRebuild bool) (store.Store, error) {
	sqldb, err := migrations.OpenDB(cfg.Database.File)
	if err != nil {
		return store.Store{}, err
	}
	s, err := store.Open(
		ctx,
		sqldb,
		store.Options{AllowRebuild: allowRebuild || cfg.Database.AllowRebuild},
		chrono.NewStandardTime(),
		tel,
	)
	if err != nil {
		sqldb.Close()
		return store.Store{}, err
	}
	return s, nil
}

func newPipeline(s store.Store, source SourceConfig) (ingest.Pipeline, error) {
	order, err := source.ParsedOrder()
	if err != nil {
		return ingest.Pipeline{}, err
	}
	client, err := howtheyvote.NewClient(source.ClientOptions(), tel)
	if err != nil {
		return ingest.Pipeline{}, err
	}
	return ingest.NewPipeline(
		client,
		s,
		ingest.Options{
			MaxPages: source.MaxPages,
			Order:    order,
		},
		chrono.NewStandardTime(),
		tel,
	), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
