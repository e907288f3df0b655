package scraper

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/internal/aggregate"
	"jmichaud/grocerytracker/logger"
	"jmichaud/grocerytracker/pkg/errors"
	"jmichaud/grocerytracker/services/cache"
)

// DetailFetcher resolves order references into purchases. Orders whose
// date-key is already cached never touch the network; misses open one
// transient page at a time, paced by a rate limiter so the target site is
// not hammered.
type DetailFetcher struct {
	cfg     config.Config
	store   cache.Store
	meta    *cache.MetadataStore
	browser Browser
	limiter *rate.Limiter
	metrics *Metrics
	log     *logger.Logger
}

// NewDetailFetcher creates a detail fetcher bound to an authenticated
// browser session.
func NewDetailFetcher(cfg config.Config, store cache.Store, meta *cache.MetadataStore, browser Browser, metrics *Metrics) *DetailFetcher {
	return &DetailFetcher{
		cfg:     cfg,
		store:   store,
		meta:    meta,
		browser: browser,
		// Every(<=0) is an infinite rate, so a zero delay disables pacing
		limiter: rate.NewLimiter(rate.Every(cfg.DetailFetchDelay), 1),
		metrics: metrics,
		log:     logger.ForScraper(),
	}
}

// Fetch processes references in collection order, emitting one purchase per
// retained raw item with the order's date attached. A date-key cache hit
// short-circuits the fetch for that date entirely, so multiple orders on one
// calendar day collapse onto the first order's cached item list.
func (f *DetailFetcher) Fetch(ctx context.Context, refs []OrderRef) ([]aggregate.Purchase, error) {
	var purchases []aggregate.Purchase
	processed := map[string]struct{}{}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("detail", err)
		}
		if _, dup := processed[ref.DetailURL]; dup {
			continue
		}

		dateKey := ref.DateKey()
		items, hit, err := f.itemsFor(ctx, ref, dateKey)
		if err != nil {
			return nil, err
		}
		if hit {
			f.metrics.IncCacheHit()
		} else {
			f.metrics.IncCacheMiss()
			f.metrics.AddItems(len(items))
		}

		processed[ref.DetailURL] = struct{}{}

		for _, item := range items {
			if item.Name == "" || item.Quantity <= 0 {
				continue
			}
			purchases = append(purchases, aggregate.Purchase{
				ItemName:  item.Name,
				UnitPrice: item.Price,
				Quantity:  item.Quantity,
				Date:      ref.Date,
			})
		}
	}
	return purchases, nil
}

// itemsFor returns the item list for one order, from cache when present.
func (f *DetailFetcher) itemsFor(ctx context.Context, ref OrderRef, dateKey string) ([]orderItem, bool, error) {
	if f.store.Has(dateKey) {
		data, err := f.store.Get(dateKey)
		if err != nil {
			return nil, false, errors.NewCache("detail", "reading cached order failed", err)
		}
		var items []orderItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, false, errors.NewCache("detail", "decoding cached order failed", err)
		}
		f.log.Debug().Str("date_key", dateKey).Msg("Cache hit, skipping detail fetch")
		return items, true, nil
	}

	items, err := f.fetchDetail(ctx, ref)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, false, errors.NewCache("detail", "encoding order failed", err)
	}
	// The entry lands as one complete file before the index learns about it;
	// a crash in between heals via reconcile on the next startup.
	if err := f.store.Set(dateKey, data); err != nil {
		return nil, false, errors.NewCache("detail", "writing order cache failed", err)
	}
	if err := f.meta.RecordDate(dateKey); err != nil {
		return nil, false, errors.NewCache("detail", "indexing order date failed", err)
	}
	return items, false, nil
}

// fetchDetail opens a transient page for one order and extracts its items.
func (f *DetailFetcher) fetchDetail(ctx context.Context, ref OrderRef) ([]orderItem, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, errors.NewCancelled("detail", err)
	}

	page, err := f.browser.NewPage(ctx)
	if err != nil {
		return nil, errors.NewScrape("detail", "opening detail page failed", err)
	}
	defer page.Close()

	f.metrics.IncPage("detail")

	if err := page.Navigate(ctx, ref.DetailURL, f.cfg.NavigationTimeout); err != nil {
		return nil, errors.NewNavigationTimeout("detail", err)
	}
	if err := page.WaitVisible(ctx, f.cfg.Selectors.ItemRow, f.cfg.DetailTimeout); err != nil {
		return nil, errors.NewNavigationTimeout("detail", err)
	}

	html, err := page.HTML(ctx, f.cfg.DetailTimeout)
	if err != nil {
		return nil, errors.NewScrape("detail", "reading detail page failed", err)
	}

	items := extractOrderItems(html, f.cfg.Selectors)
	f.log.Debug().
		Str("date_key", ref.DateKey()).
		Int("items", len(items)).
		Msg("Fetched order detail")
	return items, nil
}
