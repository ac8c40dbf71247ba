package store

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/launchdash/launchdash/pkg/types"
)

// Source formats accepted by Load.
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatBrotli = "csv.br"
	FormatSQLite = "sqlite"
)

// DefaultTable is the SQLite table read when Source.Table is empty.
const DefaultTable = "launches"

// Source describes where the dataset lives.
type Source struct {
	Path   string
	Format string // one of the Format* constants; "" means auto
	Table  string // sqlite only
}

// Store is the frozen, in-memory launch table.
type Store struct {
	records []types.LaunchRecord
	sites   []string
	index   *payloadIndex
}

// Load reads the dataset described by src and freezes it.
func Load(ctx context.Context, src Source) (*Store, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, loadErr(src.Path, ErrMissingSource, "")
		}
		return nil, &LoadError{Path: src.Path, Err: err}
	}
	if info.IsDir() {
		return nil, loadErr(src.Path, ErrMalformed, "is a directory")
	}

	format, err := resolveFormat(src)
	if err != nil {
		return nil, err
	}

	var records []types.LaunchRecord
	switch format {
	case FormatCSV:
		records, err = readCSVFile(src.Path, false)
	case FormatBrotli:
		records, err = readCSVFile(src.Path, true)
	case FormatSQLite:
		table := src.Table
		if table == "" {
			table = DefaultTable
		}
		records, err = readSQLite(ctx, src.Path, table)
	default:
		return nil, loadErr(src.Path, ErrMalformed, "unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := validate(src.Path, records); err != nil {
		return nil, err
	}

	st := FromRecords(records)
	slog.Info("store: dataset loaded",
		"path", src.Path,
		"format", format,
		"size", humanize.Bytes(uint64(info.Size())),
		"records", st.Len(),
		"sites", len(st.sites),
	)
	return st, nil
}

// validate rejects rows the selector or the payload index cannot represent:
// a site that reads as the all-sites sentinel, and a non-finite payload.
func validate(path string, records []types.LaunchRecord) error {
	for i, r := range records {
		if types.SiteSelection(r.Site).IsAll() {
			return loadErr(path, ErrMalformed, "row %d: reserved launch site %q", i+1, r.Site)
		}
		if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) {
			return loadErr(path, ErrMalformed, "row %d: payload %v is not finite", i+1, r.PayloadMassKg)
		}
	}
	return nil
}

// FromRecords builds a Store from an in-memory table. The slice is copied.
func FromRecords(records []types.LaunchRecord) *Store {
	frozen := make([]types.LaunchRecord, len(records))
	copy(frozen, records)

	seen := make(map[string]struct{})
	sites := make([]string, 0)
	for _, r := range frozen {
		if _, ok := seen[r.Site]; ok {
			continue
		}
		seen[r.Site] = struct{}{}
		sites = append(sites, r.Site)
	}

	return &Store{
		records: frozen,
		sites:   sites,
		index:   newPayloadIndex(frozen),
	}
}

// Records returns the loaded table in source order. Callers must not modify it.
func (s *Store) Records() []types.LaunchRecord { return s.records }

// Len returns the number of loaded records.
func (s *Store) Len() int { return len(s.records) }

// DistinctSites returns each launch site once, in first-occurrence order.
func (s *Store) DistinctSites() []string {
	out := make([]string, len(s.sites))
	copy(out, s.sites)
	return out
}

// HasSite reports whether site appears in the dataset.
func (s *Store) HasSite(site string) bool {
	for _, v := range s.sites {
		if v == site {
			return true
		}
	}
	return false
}

// PayloadDomain returns the smallest and largest payload mass in the table.
// ok is false for an empty table.
func (s *Store) PayloadDomain() (lo, hi float64, ok bool) {
	return s.index.bounds()
}

// Query returns the records matching sel and rng in source order, answered
// from the payload index rather than a full scan.
func (s *Store) Query(sel types.SiteSelection, rng types.PayloadRange) []types.LaunchRecord {
	rng = rng.Normalize()
	positions := s.index.between(rng.Min, rng.Max)
	out := make([]types.LaunchRecord, 0, len(positions))
	for _, pos := range positions {
		if r := s.records[pos]; sel.Matches(r.Site) {
			out = append(out, r)
		}
	}
	return out
}

func resolveFormat(src Source) (string, error) {
	switch strings.ToLower(src.Format) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatBrotli:
		return FormatBrotli, nil
	case FormatSQLite:
		return FormatSQLite, nil
	case FormatAuto, "":
	default:
		return "", loadErr(src.Path, ErrMalformed, "unknown format %q", src.Format)
	}

	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".br":
		return FormatBrotli, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}

	mt, err := mimetype.DetectFile(src.Path)
	if err != nil {
		return "", &LoadError{Path: src.Path, Err: fmt.Errorf("detect content type: %w", err)}
	}
	switch {
	case mt.Is("application/vnd.sqlite3"):
		return FormatSQLite, nil
	case mt.Is("text/csv"), strings.HasPrefix(mt.String(), "text/"):
		return FormatCSV, nil
	}
	return "", loadErr(src.Path, ErrMalformed, "unsupported content type %s", mt.String())
}
