// Package metrics exposes Prometheus instrumentation for socialnet.
//
// Collectors are registered on a private registry owned by Metrics so that
// several networks (and tests) can coexist in one process.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Operation results used as label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the socialnet collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Operations counts core operations, labeled by operation and result.
	Operations *prometheus.CounterVec

	// Duration measures core operation latency.
	Duration *prometheus.HistogramVec

	// Users tracks the number of registered users.
	Users prometheus.Gauge

	// Friendships tracks the number of friendships.
	Friendships prometheus.Gauge

	// Communities holds the community count of the last detection.
	Communities prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialnet_operations_total",
				Help: "Total number of core operations processed",
			},
			[]string{"operation", "result"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "socialnet_operation_duration_seconds",
				Help: "Duration of core operations in seconds",
				// Microseconds for lookups up to tens of milliseconds for a
				// full ranking at the user bound.
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"operation"},
		),
		Users: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socialnet_users",
			Help: "Number of registered users",
		}),
		Friendships: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socialnet_friendships",
			Help: "Number of friendships",
		}),
		Communities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socialnet_communities",
			Help: "Number of communities found by the last detection",
		}),
	}
}

// Observe records one operation that started at start and ended with err.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(operation, result).Inc()
	m.Duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetSize updates the graph size gauges.
func (m *Metrics) SetSize(users, friendships int) {
	if m == nil {
		return
	}
	m.Users.Set(float64(users))
	m.Friendships.Set(float64(friendships))
}

// SetCommunities updates the community gauge.
func (m *Metrics) SetCommunities(n int) {
	if m == nil {
		return
	}
	m.Communities.Set(float64(n))
}

// Snapshot gathers every sample as "name{labels}" -> value. Histograms
// contribute their _count and _sum series.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	if m == nil {
		return map[string]float64{}, nil
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	samples := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName() + formatLabels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				samples[key] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				samples[key] = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				labels := formatLabels(metric.GetLabel())
				samples[mf.GetName()+"_count"+labels] = float64(metric.GetHistogram().GetSampleCount())
				samples[mf.GetName()+"_sum"+labels] = metric.GetHistogram().GetSampleSum()
			}
		}
	}
	return samples, nil
}

// Format renders a snapshot one sample per line, sorted by key.
func Format(samples map[string]float64) string {
	keys := make([]string, 0, len(samples))
	for k := range samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %g\n", k, samples[k])
	}
	return b.String()
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
