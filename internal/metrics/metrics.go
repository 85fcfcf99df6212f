// Package metrics exposes run counters on a private prometheus registry.
// huct is a one-shot CLI, so the registry is written once to a textfile for
// node_exporter's textfile collector instead of being served.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	APIRequestsTotal      *prometheus.CounterVec
	RateLimitRetriesTotal *prometheus.CounterVec
	CatalogItems          *prometheus.GaugeVec
	UnflaggedItems        *prometheus.GaugeVec
	Members               prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		APIRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "huct_api_requests_total",
			Help: "Total number of API requests sent, by logical endpoint and HTTP status code",
		}, []string{"endpoint", "code"}),
		RateLimitRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "huct_rate_limit_retries_total",
			Help: "Total number of throttled responses that triggered a wait and retry",
		}, []string{"endpoint"}),
		CatalogItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "huct_catalog_items",
			Help: "Number of catalog items registered in the last run, by kind",
		}, []string{"kind"}),
		UnflaggedItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "huct_unflagged_items",
			Help: "Number of catalog items no organization member has solved, by kind",
		}, []string{"kind"}),
		Members: factory.NewGauge(prometheus.GaugeOpts{
			Name: "huct_organization_members",
			Help: "Number of organization members fetched in the last run",
		}),
	}
}

// The methods below are nil-safe so callers can run without metrics.

func (m *Metrics) ObserveRequest(endpoint string, code int) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveRateLimit(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimitRetriesTotal.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) SetCatalogItems(kind string, count int) {
	if m == nil {
		return
	}
	m.CatalogItems.WithLabelValues(kind).Set(float64(count))
}

func (m *Metrics) SetUnflaggedItems(kind string, count int) {
	if m == nil {
		return
	}
	m.UnflaggedItems.WithLabelValues(kind).Set(float64(count))
}

func (m *Metrics) SetMembers(count int) {
	if m == nil {
		return
	}
	m.Members.Set(float64(count))
}

// WriteTextfile writes every collected metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
