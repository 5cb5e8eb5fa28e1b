package telemetry

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

const namespace = "tartan"

// Update outcomes reported by RecordUpdate.
const (
	OutcomeOK        = "ok"
	OutcomeViolation = "invariant_violation"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cycles      *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	clamps      *prometheus.CounterVec
	updates     *prometheus.CounterVec
	temperature *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
	alarmActive *prometheus.GaugeVec
	doorOpen    *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Committed update cycles by house and lock rule.",
		}, []string{"house", "rule"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected fields and requests recorded in the event log.",
		}, []string{"house"}),
		clamps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intruder_clamps_total",
			Help:      "Cycles where the intruder clamp held the lock open.",
		}, []string{"house"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Update requests by source and outcome.",
		}, []string{"source", "outcome"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_fahrenheit",
			Help:      "Current indoor temperature.",
		}, []string{"house"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_percent",
			Help:      "Current indoor relative humidity.",
		}, []string{"house"}),
		alarmActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarm_active",
			Help:      "1 while the alarm is sounding.",
		}, []string{"house"}),
		doorOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "door_open",
			Help:      "1 while the door is open.",
		}, []string{"house"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cycles,
		m.rejections,
		m.clamps,
		m.updates,
		m.temperature,
		m.humidity,
		m.alarmActive,
		m.doorOpen,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// OnCommit implements house.Observer.
func (m *Metrics) OnCommit(c house.Commit) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(c.House, string(c.Rule)).Inc()
	if n := len(c.Notes); n > 0 {
		m.rejections.WithLabelValues(c.House).Add(float64(n))
	}
	if c.Clamped {
		m.clamps.WithLabelValues(c.House).Inc()
	}
	m.temperature.WithLabelValues(c.House).Set(float64(c.Next.Climate.CurrentTemp))
	m.humidity.WithLabelValues(c.House).Set(float64(c.Next.Climate.Humidity))
	m.alarmActive.WithLabelValues(c.House).Set(boolGauge(c.Next.Alarm.Active))
	m.doorOpen.WithLabelValues(c.House).Set(boolGauge(c.Next.Access.Door == house.DoorOpen))
}

// RecordUpdate counts one update request from source ("api", "mqtt",
// "script", "tick") by the error ApplyUpdate returned.
func (m *Metrics) RecordUpdate(source string, err error) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(source, Outcome(err)).Inc()
}

// Outcome classifies an ApplyUpdate error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, house.ErrInvariantViolation):
		return OutcomeViolation
	default:
		return OutcomeError
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler records request count and duration for route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
