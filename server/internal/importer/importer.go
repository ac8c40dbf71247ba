package importer

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/store"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Table is the table the importer writes.
const Table = "launches"

// Open connects to the SQLite file at path and applies pending migrations.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("importer: connect %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("importer: set dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("importer: apply migrations: %w", err)
	}
	return db, nil
}

// Write replaces the contents of the launches table with records.
func Write(ctx context.Context, db *sqlx.DB, records []types.LaunchRecord) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("importer: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+Table); err != nil {
		return fmt.Errorf("importer: clear table: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO `+Table+`
		(launch_site, payload_mass_kg, class, booster_category)
		VALUES (:launch_site, :payload_mass_kg, :class, :booster_category)`)
	if err != nil {
		return fmt.Errorf("importer: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r); err != nil {
			return fmt.Errorf("importer: insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("importer: commit: %w", err)
	}
	return nil
}

// Import loads src (any CSV format the store understands) and writes it to
// the SQLite database at dbPath. It returns the number of rows written.
func Import(ctx context.Context, src store.Source, dbPath string) (int, error) {
	st, err := store.Load(ctx, src)
	if err != nil {
		return 0, err
	}

	db, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := Write(ctx, db, st.Records()); err != nil {
		return 0, err
	}

	slog.Info("importer: rows written", "source", src.Path, "db", dbPath, "rows", st.Len())
	return st.Len(), nil
}
