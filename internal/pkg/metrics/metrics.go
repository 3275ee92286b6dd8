package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "field_attendance"

// Metrics holds the agent's collectors. A nil *Metrics records nothing.
type Metrics struct {
	transitions  *prometheus.CounterVec
	readings     *prometheus.CounterVec
	rollovers    prometheus.Counter
	remoteCalls  *prometheus.HistogramVec
	eventStreams prometheus.Gauge
}

// New registers the collectors on reg along with the Go runtime and process collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Attendance transitions by kind and outcome.",
		}, []string{"transition", "outcome"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_readings_total",
			Help:      "Location readings by geofence result.",
		}, []string{"geofence"}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_rollovers_total",
			Help:      "Records reset because the day changed.",
		}),
		remoteCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of HRIS backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "code"}),
		eventStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_streams",
			Help:      "Open server-sent event streams.",
		}),
	}

	reg.MustRegister(
		m.transitions,
		m.readings,
		m.rollovers,
		m.remoteCalls,
		m.eventStreams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Transition(transition string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) LocationReading(configured, inside bool) {
	if m == nil {
		return
	}
	switch {
	case !configured:
		m.readings.WithLabelValues("unconfigured").Inc()
	case inside:
		m.readings.WithLabelValues("inside").Inc()
	default:
		m.readings.WithLabelValues("outside").Inc()
	}
}

func (m *Metrics) Rollover() {
	if m == nil {
		return
	}
	m.rollovers.Inc()
}

// RemoteCall observes a backend call. code is the HTTP status, 0 when unreachable.
func (m *Metrics) RemoteCall(endpoint string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "unreachable"
	if code > 0 {
		label = strconv.Itoa(code/100) + "xx"
	}
	m.remoteCalls.WithLabelValues(endpoint, label).Observe(d.Seconds())
}

// StreamOpened tracks an event stream until the returned func is called.
func (m *Metrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.eventStreams.Inc()
	return m.eventStreams.Dec
}
