package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/db"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/pkg/migrations"
)

const (
	report_db_query      = "db.query"
	report_schema_drift  = "schema.drift"
	report_schema_export = "schema.export"
	report_insert_vote   = "insert-vote"
)

var (
	// ErrSchemaDrift is returned by Open when the database was created by an
	// incompatible schema and rebuilding was not allowed.
	ErrSchemaDrift  = errors.New("store: schema drift detected")
	ErrVoteNotFound = errors.New("store: vote not found")
)

type Options struct {
	// AllowRebuild lets Open move drifted tables aside and rebuild the schema.
	AllowRebuild bool
}

type Store struct {
	sql    *sql.DB
	db     *db.Queries
	makeTx db.MakeTx
	time   chrono.TimeAPI
	tel    telemetry.API
}

// Open checks the database for schema drift and migrates it to the latest
// schema version.
func Open(
	ctx context.Context,
	sqldb *sql.DB,
	opts Options,
	time chrono.TimeAPI,
	tel telemetry.API,
) (Store, error) {
	assert.NotNil(sqldb)
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("store", tel)

	drifted, reason, err := DetectDrift(ctx, sqldb)
	if err != nil {
		tel.ReportBroken(report_db_query, err, "DetectDrift")
		return Store{}, err
	}
	if drifted {
		if !opts.AllowRebuild {
			tel.ReportWarning(
				report_schema_drift,
				reason,
				"refusing to rebuild, rerun with rebuilding allowed to move the old tables aside",
			)
			return Store{}, fmt.Errorf("%w: %s", ErrSchemaDrift, reason)
		}

		suffix := fmt.Sprintf("_legacy_%d", time.Now().Unix())
		exported, err := migrations.ExportTables(ctx, sqldb, db.Tables, suffix)
		if err != nil {
			tel.ReportBroken(report_schema_export, err, suffix)
			return Store{}, fmt.Errorf("export drifted tables: %w", err)
		}
		tel.ReportWarning(
			report_schema_drift,
			reason,
			"rebuilding schema, previous tables were renamed",
			telemetry.KV{Key: "tables", Value: exported},
		)
	}

	version, err := migrations.Migrate(ctx, sqldb, db.Migrations())
	if err != nil {
		tel.ReportBroken(report_db_query, err, "Migrate")
		return Store{}, err
	}
	tel.ReportDebug("schema ready", telemetry.KV{Key: "version", Value: version})

	return Store{
		sql:    sqldb,
		db:     db.New(sqldb),
		makeTx: db.NewMakeTx(sqldb),
		time:   time,
		tel:    tel,
	}, nil
}

// DetectDrift reports whether the database holds tables the migrations did
// not create: a primary table without the raw payload column, or tables
// without any recorded schema version.
func DetectDrift(ctx context.Context, sqldb *sql.DB) (bool, string, error) {
	exists, err := migrations.TableExists(ctx, sqldb, db.PrimaryTable)
	if err != nil {
		return false, "", err
	}
	if exists {
		hasRaw, err := migrations.HasColumn(ctx, sqldb, db.PrimaryTable, db.RawJsonColumn)
		if err != nil {
			return false, "", err
		}
		if !hasRaw {
			return true, fmt.Sprintf("table %s has no %s column", db.PrimaryTable, db.RawJsonColumn), nil
		}
	}

	version, err := migrations.Version(ctx, sqldb)
	if err != nil {
		return false, "", err
	}
	if version > 0 {
		return false, "", nil
	}
	for _, table := range db.Tables {
		exists, err := migrations.TableExists(ctx, sqldb, table)
		if err != nil {
			return false, "", err
		}
		if exists {
			return true, fmt.Sprintf("table %s exists without a schema version", table), nil
		}
	}
	return false, "", nil
}

func (s Store) SchemaVersion(ctx context.Context) (int, error) {
	return migrations.Version(ctx, s.sql)
}

func (s Store) Close() error {
	return s.sql.Close()
}
