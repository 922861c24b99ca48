package db

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"rollcall-backend/pkg/migrations"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Tables lists every table owned by the schema, children after parents.
var Tables = []string{
	"votes",
	"vote_geo_areas",
	"stats",
	"stats_by_group",
	"stats_by_country",
	"member_votes",
	"ingest_runs",
}

// PrimaryTable is the table whose `raw_json` column marks a current schema.
const (
	PrimaryTable  = "votes"
	RawJsonColumn = "raw_json"
)

// Migrations returns the ordered schema migrations, the migration at index i
// upgrades version i to i+1.
func Migrations() []migrations.Migration {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		panic(fmt.Sprintf("list embedded migrations: %v", err))
	}
	sort.Strings(names)

	out := make([]migrations.Migration, len(names))
	for i, name := range names {
		contents, err := migrationFiles.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("read embedded migration %s: %v", name, err))
		}
		out[i] = migrations.SQL(name, string(contents))
	}
	return out
}
