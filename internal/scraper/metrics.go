package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry             *prometheus.Registry
	PagesFetchedTotal    *prometheus.CounterVec
	OrdersCollectedTotal prometheus.Counter
	ItemsScrapedTotal    prometheus.Counter
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec
	ScrapeDuration       prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_pages_fetched_total",
			Help: "Total browser page loads by page type.",
		},
		[]string{"page_type"},
	)
	orders := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grocery_orders_collected_total",
			Help: "Total order references harvested from the listing.",
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grocery_items_scraped_total",
			Help: "Total line items extracted from order detail pages.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grocery_cache_hits_total",
			Help: "Detail fetches short-circuited by the date-key cache.",
		},
	)
	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grocery_cache_misses_total",
			Help: "Detail fetches that had to open a page.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_scrape_errors_total",
			Help: "Total scrape failures by error type.",
		},
		[]string{"error_type"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grocery_scrape_duration_seconds",
			Help:    "Wall-clock duration of full scrape runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	registry.MustRegister(pages, orders, items, cacheHits, cacheMisses, errorsTotal, duration)

	return &Metrics{
		Registry:             registry,
		PagesFetchedTotal:    pages,
		OrdersCollectedTotal: orders,
		ItemsScrapedTotal:    items,
		CacheHitsTotal:       cacheHits,
		CacheMissesTotal:     cacheMisses,
		ErrorsTotal:          errorsTotal,
		ScrapeDuration:       duration,
	}
}

// IncPage increments the page-load counter for a page type.
func (m *Metrics) IncPage(pageType string) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(pageType).Inc()
}

// AddOrders adds to the collected-orders counter.
func (m *Metrics) AddOrders(n int) {
	if m == nil {
		return
	}
	m.OrdersCollectedTotal.Add(float64(n))
}

// AddItems adds to the scraped-items counter.
func (m *Metrics) AddItems(n int) {
	if m == nil {
		return
	}
	m.ItemsScrapedTotal.Add(float64(n))
}

// IncCacheHit increments the cache-hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncCacheMiss increments the cache-miss counter.
func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// IncError increments the error counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveRun records a full run's duration.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}
