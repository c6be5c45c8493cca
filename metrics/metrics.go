/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package metrics holds the Prometheus collectors for the game server.
// Every method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizroyale"

type Metrics struct {
	registry *prometheus.Registry

	Rooms             prometheus.Gauge
	RoomsCreated      prometheus.Counter
	RoomsClosed       *prometheus.CounterVec
	Connections       prometheus.Gauge
	Answers           *prometheus.CounterVec
	Resolutions       *prometheus.CounterVec
	Eliminations      prometheus.Counter
	GamesFinished     *prometheus.CounterVec
	BroadcastFailures prometheus.Counter
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New registers every collector on a private registry, alongside the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Rooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_open",
			Help:      "Number of rooms currently open",
		}),
		RoomsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of rooms created",
		}),
		RoomsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_closed_total",
			Help:      "Total number of rooms closed, by reason",
		}, []string{"reason"}),
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_open",
			Help:      "Number of attached realtime connections",
		}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answer submissions, by result code",
		}, []string{"result"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_resolutions_total",
			Help:      "Resolved questions, by trigger",
		}, []string{"trigger"}),
		Eliminations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_eliminations_total",
			Help:      "Total number of teams eliminated",
		}),
		GamesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games, by reason",
		}, []string{"reason"}),
		BroadcastFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_failures_total",
			Help:      "Sends that failed and dropped a connection",
		}),
		RequestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Registry exposes the underlying registry for tests and custom gatherers.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() httprouter.Handle {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

func (m *Metrics) RoomOpened() {
	if m == nil {
		return
	}
	m.Rooms.Inc()
	m.RoomsCreated.Inc()
}

func (m *Metrics) RoomClosed(reason string) {
	if m == nil {
		return
	}
	m.Rooms.Dec()
	m.RoomsClosed.WithLabelValues(reason).Inc()
}

func (m *Metrics) ConnectionAttached() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) ConnectionDetached() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

// AnswerRecorded counts one submission; result is "ACCEPTED" or an error code.
func (m *Metrics) AnswerRecorded(result string) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(result).Inc()
}

func (m *Metrics) QuestionResolved(trigger string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(trigger).Inc()
}

func (m *Metrics) TeamEliminated() {
	if m == nil {
		return
	}
	m.Eliminations.Inc()
}

func (m *Metrics) GameFinished(reason string) {
	if m == nil {
		return
	}
	m.GamesFinished.WithLabelValues(reason).Inc()
}

func (m *Metrics) BroadcastFailed() {
	if m == nil {
		return
	}
	m.BroadcastFailures.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack passes through to the wrapped writer so websocket upgrades work.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols

	return h.Hijack()
}

// Instrument wraps an httprouter handle with request counting and timing.
func (m *Metrics) Instrument(route string, next httprouter.Handle) httprouter.Handle {
	if m == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r, p)

		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	}
}
