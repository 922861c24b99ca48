package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens (and creates if needed) the sqlite database at path with
// foreign keys enabled.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

// Migration upgrades a schema from version N to N+1, where N is its index in
// the list given to Migrate.
type Migration struct {
	Name string
	Up   func(ctx context.Context, tx *sql.Tx) error
}

// SQL creates a migration that executes a fixed set of statements.
func SQL(name, statements string) Migration {
	return Migration{
		Name: name,
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, statements)
			return err
		},
	}
}

// Version returns the schema version stored in the database header.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration after the current schema version, each one
// in its own transaction together with the version bump. It returns the
// resulting version.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	current, err := Version(ctx, db)
	if err != nil {
		return 0, err
	}
	if current > len(migrations) {
		return current, fmt.Errorf(
			"schema version %d is newer than the latest known version %d",
			current, len(migrations),
		)
	}

	for v := current; v < len(migrations); v++ {
		m := migrations[v]
		err := apply(ctx, db, v+1, m)
		if err != nil {
			return v, fmt.Errorf("migrate to version %d (%s): %w", v+1, m.Name, err)
		}
	}
	return len(migrations), nil
}

func apply(ctx context.Context, db *sql.DB, target int, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = m.Up(ctx, tx)
	if err != nil {
		return err
	}
	// pragma arguments cannot be bound
	_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// TableExists reports whether a table with the given name exists.
func TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRowContext(
		ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		table,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return count > 0, nil
}

// HasColumn reports whether table has a column with the given name.
func HasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRowContext(
		ctx,
		"SELECT count(*) FROM pragma_table_info(?) WHERE name = ?",
		table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect column %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

// ExportTables moves every existing table out of the way by renaming it to
// `<table><suffix>`, drops their explicit indexes (so the names can be reused)
// and resets the schema version to 0. Nothing is deleted. It returns the new
// table names.
func ExportTables(ctx context.Context, db *sql.DB, tables []string, suffix string) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exported []string
	for _, table := range tables {
		var count int
		err := tx.QueryRowContext(
			ctx,
			"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(&count)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			continue
		}

		indexes, err := explicitIndexes(ctx, tx, table)
		if err != nil {
			return nil, err
		}
		for _, idx := range indexes {
			_, err = tx.ExecContext(ctx, fmt.Sprintf("DROP INDEX %s", quoteIdent(idx)))
			if err != nil {
				return nil, fmt.Errorf("drop index %s: %w", idx, err)
			}
		}

		target := table + suffix
		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			"ALTER TABLE %s RENAME TO %s",
			quoteIdent(table), quoteIdent(target),
		))
		if err != nil {
			return nil, fmt.Errorf("rename %s: %w", table, err)
		}
		exported = append(exported, target)
	}

	_, err = tx.ExecContext(ctx, "PRAGMA user_version = 0")
	if err != nil {
		return nil, err
	}
	return exported, tx.Commit()
}

func explicitIndexes(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	rows, err := tx.QueryContext(
		ctx,
		"SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL",
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
