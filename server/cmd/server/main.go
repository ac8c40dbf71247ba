package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/launchdash/launchdash/server/internal/aggregate"
	"github.com/launchdash/launchdash/server/internal/api"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/store"
	"github.com/launchdash/launchdash/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty uses defaults and LAUNCHDASH_* variables")
	uiDir := flag.String("ui-dir", "", "serve static UI files from this directory (overrides server.ui_dir); leave empty to disable")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("launchdash-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.Level())
	if *uiDir == "" {
		*uiDir = cfg.Server.UIDir
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"dataset", cfg.Dataset.Path,
		"format", cfg.Dataset.Format,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Record store is loaded once and never mutated afterwards.
	st, err := store.Load(ctx, cfg.Dataset.Source())
	if err != nil {
		var le *store.LoadError
		if errors.As(err, &le) {
			slog.Error("failed to load dataset", "path", le.Path, "err", le.Err)
		} else {
			slog.Error("failed to load dataset", "err", err)
		}
		os.Exit(1)
	}

	m := metrics.New()
	m.SetRecords(st.Len())
	labeler := aggregate.NewLabeler(cfg.Dataset.OutcomeLabels)

	// Session hub: one reactive controller per connected dashboard.
	hub := ws.New(st, ws.Options{
		Labeler:    labeler,
		Range:      cfg.Controls.Range(),
		PingPeriod: cfg.Session.PingPeriod,
		SendBuffer: cfg.Session.SendBuffer,
		Observer:   m,
	})
	go hub.Run(ctx)

	// Only the log level is applied on reload; everything else needs a restart.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				level.Set(c.Server.Level())
			})
			if err != nil {
				slog.Warn("config watch disabled", "path", *configPath, "err", err)
			}
		}()
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", m.Instrument("api", api.New(st, labeler, cfg.Controls)))
	httpMux.Handle("/ws/session", hub)
	httpMux.Handle("/metrics", m)

	// Optional: serve a pre-built UI from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		dir := *uiDir
		fs := http.FileServer(http.Dir(dir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(dir, "index.html"))
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", dir)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("launchdash-server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
