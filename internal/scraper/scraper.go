// Package scraper drives a headless browser through the retailer's
// authenticated order-history workflow and keeps a durable, date-indexed
// cache of everything it has seen. One logical worker per invocation; the
// whole run is fail-fast and cooperatively cancellable.
package scraper

import (
	"context"
	"encoding/json"
	"time"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/internal/aggregate"
	"jmichaud/grocerytracker/logger"
	"jmichaud/grocerytracker/pkg/errors"
	"jmichaud/grocerytracker/services/cache"
)

// Scraper is the run orchestrator: freshness gate, session lifecycle,
// collection, detail fetching, aggregation.
type Scraper struct {
	cfg     config.Config
	store   *cache.FileStore
	meta    *cache.MetadataStore
	factory BrowserFactory
	metrics *Metrics
	log     *logger.Logger

	// now is swappable for tests
	now func() time.Time
}

// New creates a scraper, opening the cache directory and reconciling the
// metadata index against what is actually on disk.
func New(cfg config.Config) (*Scraper, error) {
	store, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, errors.NewCache("startup", "opening cache failed", err)
	}
	meta := cache.NewMetadataStore(cfg.CacheDir, cfg.FreshnessWindow)
	if err := meta.Reconcile(store); err != nil {
		return nil, errors.NewCache("startup", "reconciling cache index failed", err)
	}
	return &Scraper{
		cfg:     cfg,
		store:   store,
		meta:    meta,
		factory: NewChromeBrowser,
		metrics: NewMetrics(),
		log:     logger.ForScraper(),
		now:     time.Now,
	}, nil
}

// Metrics exposes the scraper's collector registry for serving.
func (s *Scraper) Metrics() *Metrics {
	return s.metrics
}

// Run produces the category report: purely from cache when the last full
// fetch is inside the freshness window, otherwise via a full
// login-collect-fetch pipeline. Typed errors propagate to the caller, which
// is expected to substitute fallback data; session teardown happens on every
// exit path before the error does.
func (s *Scraper) Run(ctx context.Context, creds Credentials) ([]aggregate.CategoryRecord, error) {
	start := s.now()
	records, err := s.run(ctx, creds)
	s.metrics.ObserveRun(time.Since(start))
	if err != nil {
		s.metrics.IncError(string(errors.TypeOf(err)))
		return nil, err
	}
	return records, nil
}

func (s *Scraper) run(ctx context.Context, creds Credentials) ([]aggregate.CategoryRecord, error) {
	if s.meta.IsFresh() {
		s.log.Info().Msg("Last fetch within freshness window, serving from cache")
		purchases, err := s.purchasesFromCache()
		if err != nil {
			return nil, err
		}
		return aggregate.Aggregate(purchases), nil
	}

	session := NewSession(s.cfg, s.factory)
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	if err := session.Login(ctx, creds); err != nil {
		return nil, err
	}

	page := session.Page()
	s.metrics.IncPage("listing")
	if err := page.Navigate(ctx, s.cfg.OrdersURL, s.cfg.NavigationTimeout); err != nil {
		return nil, errors.NewNavigationTimeout("orders", err)
	}

	collector := NewCollector(s.cfg)
	collector.now = s.now
	refs, err := collector.Collect(ctx, page)
	if err != nil {
		return nil, err
	}
	s.metrics.AddOrders(len(refs))
	s.log.Info().Int("orders", len(refs)).Msg("Collected order references")

	fetcher := NewDetailFetcher(s.cfg, s.store, s.meta, session.browser, s.metrics)
	purchases, err := fetcher.Fetch(ctx, refs)
	if err != nil {
		return nil, err
	}

	if err := s.meta.MarkFetched(); err != nil {
		return nil, errors.NewCache("finish", "recording fetch timestamp failed", err)
	}
	s.log.Info().Int("purchases", len(purchases)).Msg("Scrape complete")

	return aggregate.Aggregate(purchases), nil
}

// purchasesFromCache reconstructs purchases for the current year from the
// metadata index and the cache alone. Indexed dates whose entry is missing
// or unreadable are skipped, not errored.
func (s *Scraper) purchasesFromCache() ([]aggregate.Purchase, error) {
	year := s.now().Format("2006")

	var purchases []aggregate.Purchase
	for _, dateKey := range s.meta.CachedDates(year) {
		date, err := time.Parse("2006-01-02", dateKey)
		if err != nil {
			continue
		}
		data, err := s.store.Get(dateKey)
		if err != nil {
			s.log.Warn().Str("date_key", dateKey).Msg("Indexed cache entry missing, skipping")
			continue
		}
		var items []orderItem
		if err := json.Unmarshal(data, &items); err != nil {
			s.log.Warn().Str("date_key", dateKey).Err(err).Msg("Unreadable cache entry, skipping")
			continue
		}
		for _, item := range items {
			if item.Name == "" || item.Quantity <= 0 {
				continue
			}
			purchases = append(purchases, aggregate.Purchase{
				ItemName:  item.Name,
				UnitPrice: item.Price,
				Quantity:  item.Quantity,
				Date:      date,
			})
		}
	}
	return purchases, nil
}
