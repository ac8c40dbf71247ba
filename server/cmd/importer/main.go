// Command launchdash-importer converts a launch CSV (plain or brotli) into
// the SQLite dataset the server can load with dataset.format: sqlite.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchdash/launchdash/server/internal/importer"
	"github.com/launchdash/launchdash/server/internal/store"
)

func main() {
	in := flag.String("in", "spacex_launch_dash.csv", "source CSV file (.csv or .csv.br)")
	format := flag.String("format", store.FormatAuto, "source format: auto|csv|csv.br")
	out := flag.String("out", "launches.db", "destination SQLite file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := importer.Import(ctx, store.Source{Path: *in, Format: *format}, *out)
	if err != nil {
		slog.Error("import failed", "in", *in, "out", *out, "err", err)
		os.Exit(1)
	}
	slog.Info("import complete", "rows", n, "out", *out)
}
