package server

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"io"
	"strconv"
	"time"
)

// Metrics collects per-database request counters and latencies.
// Every Dispatcher owns its own set so tests do not share state.
type Metrics struct {
	set *metrics.Set
}

func NewMetrics() *Metrics {
	return &Metrics{set: metrics.NewSet()}
}

// observe records one finished request. Only known databases are used as
// label value, so unknown names in request paths do not create new series.
func (m *Metrics) observe(route Route, status int, start time.Time) {
	op := route.Kind.String()
	code := strconv.Itoa(status)

	if route.Handle == nil {
		m.set.GetOrCreateCounter(fmt.Sprintf(`kvapp_requests_total{op=%q,status=%q}`, op, code)).Inc()
		m.set.GetOrCreateHistogram(fmt.Sprintf(`kvapp_request_duration_seconds{op=%q}`, op)).UpdateDuration(start)
		return
	}

	m.set.GetOrCreateCounter(fmt.Sprintf(`kvapp_requests_total{db=%q,op=%q,status=%q}`, route.Database, op, code)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`kvapp_request_duration_seconds{db=%q,op=%q}`, route.Database, op)).UpdateDuration(start)
}

// observeValueSize records the size of a value that was written
func (m *Metrics) observeValueSize(database string, size int) {
	m.set.GetOrCreateHistogram(fmt.Sprintf(`kvapp_value_size_bytes{db=%q}`, database)).Update(float64(size))
}

// WritePrometheus writes all request metrics followed by the process metrics
// in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}
