package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/launchdash/launchdash/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `server: {}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Level() != slog.LevelInfo {
		t.Errorf("log level: got %v, want info", cfg.Server.Level())
	}
	if cfg.Dataset.Path != DefaultDatasetPath {
		t.Errorf("dataset.path: got %q, want %q", cfg.Dataset.Path, DefaultDatasetPath)
	}
	if got := cfg.Controls.Range(); got != types.DefaultPayloadRange() {
		t.Errorf("controls range: got %v, want %v", got, types.DefaultPayloadRange())
	}
	if cfg.Controls.PayloadStep != 100 {
		t.Errorf("payload_step: got %v, want 100", cfg.Controls.PayloadStep)
	}
	if cfg.Session.SendBuffer != DefaultSendBuffer {
		t.Errorf("send_buffer: got %d, want %d", cfg.Session.SendBuffer, DefaultSendBuffer)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  log_level: debug
  ui_dir: ui/dist
dataset:
  path: data/launches.db
  format: sqlite
  table: launches_2024
  outcome_labels:
    1: Landed
    0: Lost
controls:
  payload_min: 0
  payload_max: 16000
  payload_step: 250
  mark_every: 2000
session:
  ping_period: 20s
  send_buffer: 4
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Level() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Server.Level())
	}
	src := cfg.Dataset.Source()
	if src.Path != "data/launches.db" || src.Format != "sqlite" || src.Table != "launches_2024" {
		t.Errorf("dataset source: got %+v", src)
	}
	if cfg.Dataset.OutcomeLabels[1] != "Landed" {
		t.Errorf("outcome_labels[1]: got %q, want Landed", cfg.Dataset.OutcomeLabels[1])
	}
	if cfg.Controls.PayloadMax != 16000 || cfg.Controls.PayloadStep != 250 {
		t.Errorf("controls: got %+v", cfg.Controls)
	}
	if cfg.Session.PingPeriod != 20*time.Second {
		t.Errorf("ping_period: got %v, want 20s", cfg.Session.PingPeriod)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LAUNCHDASH_SERVER_HTTP_PORT", "7000")
	t.Setenv("LAUNCHDASH_DATASET_PATH", "/srv/launches.csv.br")
	t.Setenv("LAUNCHDASH_SERVER_LOG_LEVEL", "warn")
	p := writeConfig(t, `server:
  http_port: 9091
dataset:
  path: data/launches.csv
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("http_port: got %d, want 7000", cfg.Server.HTTPPort)
	}
	if cfg.Dataset.Path != "/srv/launches.csv.br" {
		t.Errorf("dataset.path: got %q", cfg.Dataset.Path)
	}
	if cfg.Server.Level() != slog.LevelWarn {
		t.Errorf("log level: got %v, want warn", cfg.Server.Level())
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"port":       "server:\n  http_port: 70000\n",
		"log level":  "server:\n  log_level: chatty\n",
		"format":     "dataset:\n  format: parquet\n",
		"table":      "dataset:\n  table: \"launches; DROP\"\n",
		"range":      "controls:\n  payload_min: 500\n  payload_max: 100\n",
		"negative":   "controls:\n  payload_min: -1\n",
		"step":       "controls:\n  payload_step: 0\n",
		"buffer":     "session:\n  send_buffer: 0\n",
		"empty path": "dataset:\n  path: \"\"\n",
		"yaml":       "server: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(p, []byte("server:\n  log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// A truncate-then-write can surface as two events; wait for the final one.
	deadline := time.After(2 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case c := <-got:
			reloaded = c.Server.Level() == slog.LevelDebug
		case <-deadline:
			t.Fatal("timed out waiting for reload with log_level debug")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_ReloadsOnAtomicRename(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	go Watch(ctx, p, func(c *Config) { //nolint:errcheck
		select {
		case got <- c:
		default:
		}
	})
	time.Sleep(50 * time.Millisecond)

	tmp := filepath.Join(filepath.Dir(p), ".config.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("server:\n  log_level: warn\n"), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case c := <-got:
		if c.Server.Level() != slog.LevelWarn {
			t.Errorf("log level: got %v, want warn", c.Server.Level())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload after rename")
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {})
	if err == nil {
		t.Fatal("expected error watching a missing file, got nil")
	}
}
