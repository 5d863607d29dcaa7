package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO)
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens (or creates) the SQLite DB with pragmatic defaults for a
// single-file embedded store: WAL journal, one writer connection,
// foreign keys on.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path +
		"?_pragma=foreign_keys(ON)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite is happiest with a very small pool; a single writer
	// connection gives us the "writers serialized" guarantee of §4.1
	// for free.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// OpenReadOnly opens a second connection to an existing SQLite file in
// read-only mode (used by the GOG adapter to read an external catalog
// DB without taking the write lock).
func OpenReadOnly(path string) (*sql.DB, error) {
	dsn := path + "?mode=ro&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Migrate runs every embedded *.sql file in lexicographic order, each
// in its own transaction, then brings any additive column migrations
// up to date. Every statement in migrations/*.sql must already be
// idempotent (CREATE TABLE/INDEX IF NOT EXISTS) — see DESIGN.md for
// why this repo never drops or renames a column.
func Migrate(ctx context.Context, db *sql.DB) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sqlBytes, readErr := fs.ReadFile(migrationsFS, "migrations/"+name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}

		tx, beginErr := db.BeginTx(ctx, nil)
		if beginErr != nil {
			return fmt.Errorf("begin tx for %s: %w", name, beginErr)
		}
		if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec %s: %w", name, execErr)
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("commit %s: %w", name, commitErr)
		}
	}

	return addMissingColumns(ctx, db)
}

// columnMigration is one additive "ALTER TABLE ADD COLUMN" that must
// be applied only if the column is absent — SQLite has no
// "ADD COLUMN IF NOT EXISTS", so we check pragma_table_info first.
type columnMigration struct {
	table  string
	column string
	ddl    string
}

// Future schema growth is appended here, never as a destructive ALTER
// and never by editing 0001_init.sql once it has shipped.
var columnMigrations = []columnMigration{}

func addMissingColumns(ctx context.Context, db *sql.DB) error {
	for _, m := range columnMigrations {
		exists, err := columnExists(ctx, db, m.table, m.column)
		if err != nil {
			return fmt.Errorf("check column %s.%s: %w", m.table, m.column, err)
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN %s", m.table, m.ddl)); err != nil {
			return fmt.Errorf("add column %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
