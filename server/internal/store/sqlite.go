package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/launchdash/launchdash/pkg/types"
)

// SQLite column names matching the CSV columns.
var sqliteColumns = []string{"launch_site", "payload_mass_kg", "class", "booster_category"}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTable reports whether name can be used as an unquoted table name.
func ValidTable(name string) bool { return tableName.MatchString(name) }

func readSQLite(ctx context.Context, path, table string) ([]types.LaunchRecord, error) {
	if !ValidTable(table) {
		return nil, loadErr(path, ErrMalformed, "invalid table name %q", table)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open sqlite: %w", err)}
	}
	defer db.Close()

	var present []string
	if err := db.SelectContext(ctx, &present,
		`SELECT name FROM pragma_table_info(?)`, table); err != nil {
		return nil, loadErr(path, ErrMalformed, "inspect table %s: %v", table, err)
	}
	have := make(map[string]bool, len(present))
	for _, c := range present {
		have[c] = true
	}
	for _, want := range sqliteColumns {
		if !have[want] {
			return nil, loadErr(path, ErrMissingColumn, "%s.%s", table, want)
		}
	}

	query := fmt.Sprintf(
		`SELECT launch_site, payload_mass_kg, class, booster_category FROM %s ORDER BY rowid`, table)
	records := make([]types.LaunchRecord, 0, 64)
	if err := db.SelectContext(ctx, &records, query); err != nil {
		return nil, loadErr(path, ErrMalformed, "read table %s: %v", table, err)
	}
	return records, nil
}
