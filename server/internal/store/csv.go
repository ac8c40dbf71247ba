package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/edsrzf/mmap-go"

	"github.com/launchdash/launchdash/pkg/types"
)

// Required source columns.
const (
	ColumnSite     = "Launch Site"
	ColumnPayload  = "Payload Mass (kg)"
	ColumnClass    = "class"
	ColumnCategory = "Booster Version Category"
)

var requiredColumns = []string{ColumnSite, ColumnPayload, ColumnClass, ColumnCategory}

// readCSVFile maps path read-only and parses it, decompressing with brotli
// first when compressed is set.
func readCSVFile(path string, compressed bool) ([]types.LaunchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	// mmap rejects zero-length mappings.
	if info.Size() == 0 {
		return nil, loadErr(path, ErrMalformed, "empty file")
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("mmap: %w", err)}
	}
	defer data.Unmap() //nolint:errcheck

	var r io.Reader = bytes.NewReader(data)
	if compressed {
		r = brotli.NewReader(r)
	}
	return ParseCSV(r, path)
}

// ParseCSV decodes a launch table from r. name is only used in errors.
// Columns beyond the required ones are ignored; their order is free.
func ParseCSV(r io.Reader, name string) ([]types.LaunchRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, loadErr(name, ErrMalformed, "no header row")
	}
	if err != nil {
		return nil, loadErr(name, ErrMalformed, "read header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, loadErr(name, ErrMissingColumn, "%q", want)
		}
	}
	iSite, iPayload := cols[ColumnSite], cols[ColumnPayload]
	iClass, iCategory := cols[ColumnClass], cols[ColumnCategory]

	records := make([]types.LaunchRecord, 0, 64)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loadErr(name, ErrMalformed, "line %d: %v", line, err)
		}

		payload, err := strconv.ParseFloat(strings.TrimSpace(row[iPayload]), 64)
		if err == nil && (math.IsNaN(payload) || math.IsInf(payload, 0)) {
			err = errNonFinite
		}
		if err != nil {
			return nil, loadErr(name, ErrMalformed, "line %d: %s %q is not a number", line, ColumnPayload, row[iPayload])
		}
		class, err := parseClass(row[iClass])
		if err != nil {
			return nil, loadErr(name, ErrMalformed, "line %d: %s %q is not an integer", line, ColumnClass, row[iClass])
		}

		records = append(records, types.LaunchRecord{
			Site:            strings.TrimSpace(row[iSite]),
			PayloadMassKg:   payload,
			OutcomeClass:    class,
			BoosterCategory: strings.TrimSpace(row[iCategory]),
		})
	}
	return records, nil
}

var errNonFinite = errors.New("not finite")

// parseClass accepts "1" as well as spreadsheet-style "1.0".
func parseClass(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
