package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for a scrape run.
type Metrics struct {
	IssuesFetched       *prometheus.CounterVec // labels: source
	IssuesEnvironmental *prometheus.CounterVec // labels: source, category
	ClustersFormed      *prometheus.CounterVec // labels: source, category
	EventsCreated       *prometheus.CounterVec // labels: source, category
	ComposeFallbacks    prometheus.Counter
	StoreErrors         prometheus.Counter
	SourceErrors        *prometheus.CounterVec // labels: source

	FetchDuration   *prometheus.HistogramVec // labels: host
	ComposeDuration prometheus.Histogram
}

// NewMetrics creates and registers all scraper metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IssuesFetched,
		m.IssuesEnvironmental,
		m.ClustersFormed,
		m.EventsCreated,
		m.ComposeFallbacks,
		m.StoreErrors,
		m.SourceErrors,
		m.FetchDuration,
		m.ComposeDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so parallel
// tests do not hit "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		IssuesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "issues_fetched_total",
			Help:      "Environmental issues fetched per source after filtering.",
		}, []string{"source"}),
		IssuesEnvironmental: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "issues_categorized_total",
			Help:      "Issues by source and assigned category.",
		}, []string{"source", "category"}),
		ClustersFormed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "clusters_formed_total",
			Help:      "Geographic clusters formed per source and category.",
		}, []string{"source", "category"}),
		EventsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "events_created_total",
			Help:      "Events persisted per source and category.",
		}, []string{"source", "category"}),
		ComposeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "compose_fallbacks_total",
			Help:      "Event copy drafts that fell back to templates.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "store_errors_total",
			Help:      "Failed marker or event inserts.",
		}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Name:      "source_errors_total",
			Help:      "Fetch failures per source.",
		}, []string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verdant",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream portal request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"host"}),
		ComposeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "verdant",
			Name:      "compose_duration_seconds",
			Help:      "Duration of one event copy composition, both model calls included.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}
