// Package metrics exposes launchdash's own Prometheus metrics: view
// recomputations, discarded stale results, WebSocket sessions, dataset size
// and HTTP requests. Metrics live in a private registry and are served
// through promhttp.
package metrics

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/launchdash/launchdash/server/internal/view"
)

const namespace = "launchdash"

// Metrics holds every collector. It implements view.Observer.
type Metrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	recomputes       *prometheus.CounterVec
	discards         *prometheus.CounterVec
	recomputeSeconds *prometheus.HistogramVec
	sessions         prometheus.Gauge
	records          prometheus.Gauge
	requests         *prometheus.CounterVec
}

var _ view.Observer = (*Metrics)(nil)

// New registers all collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{
		reg: reg,
		recomputes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_recomputes_total",
			Help:      "Output cells recomputed, by output.",
		}, []string{"output"}),
		discards: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_discarded_total",
			Help:      "Recomputed outputs dropped because a newer input write superseded them.",
		}, []string{"output"}),
		recomputeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_recompute_seconds",
			Help:      "Time spent filtering and aggregating one output.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"output"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_sessions",
			Help:      "Open WebSocket dashboard sessions.",
		}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Launch records loaded at startup.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by handler and status code.",
		}, []string{"handler", "code"}),
	}
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      slogErrorLog{},
		ErrorHandling: promhttp.ContinueOnError,
	})
	return m
}

// Recomputed records one output recomputation.
func (m *Metrics) Recomputed(out view.Output, took time.Duration) {
	m.recomputes.WithLabelValues(out.String()).Inc()
	m.recomputeSeconds.WithLabelValues(out.String()).Observe(took.Seconds())
}

// Discarded records one stale result dropped by a controller.
func (m *Metrics) Discarded(out view.Output) {
	m.discards.WithLabelValues(out.String()).Inc()
}

// SessionOpened increments the open session gauge.
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

// SessionClosed decrements the open session gauge.
func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// SetRecords records the dataset size.
func (m *Metrics) SetRecords(n int) { m.records.Set(float64(n)) }

// Gather returns the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) { return m.reg.Gather() }

// Instrument counts requests served by h under the given handler name.
func (m *Metrics) Instrument(name string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(sw, r)
		m.requests.WithLabelValues(name, strconv.Itoa(sw.code)).Inc()
	})
}

// ServeHTTP serves the registry through promhttp, which negotiates the
// exposition format from the Accept header.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.handler.ServeHTTP(w, r)
}

// slogErrorLog adapts slog to promhttp.Logger.
type slogErrorLog struct{}

func (slogErrorLog) Println(v ...interface{}) {
	slog.Error("metrics: exposition failed", "err", fmt.Sprint(v...))
}

// statusWriter remembers the status code written through it. Hijack is
// forwarded so WebSocket upgrades still work behind Instrument.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (s *statusWriter) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (s *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer cannot hijack")
	}
	return h.Hijack()
}
