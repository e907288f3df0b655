package scraper

import (
	"context"
	"time"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/logger"
	"jmichaud/grocerytracker/pkg/errors"
)

// loadMorePollInterval is how often the row count is re-checked after the
// "load more" control has been triggered.
const loadMorePollInterval = 250 * time.Millisecond

// Collector paginates the authenticated order-history listing, harvesting
// (date, detail URL) pairs until the lookback boundary is crossed or
// pagination is exhausted. Listings are assumed reverse-chronological.
type Collector struct {
	cfg config.Config
	log *logger.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewCollector creates an order collector.
func NewCollector(cfg config.Config) *Collector {
	return &Collector{
		cfg: cfg,
		log: logger.ForScraper(),
		now: time.Now,
	}
}

// Collect walks the rendered listing. Cancellation is checked at the top of
// every iteration; any selector or wait failure aborts the run with a typed
// error, no retries.
func (c *Collector) Collect(ctx context.Context, page Page) ([]OrderRef, error) {
	sel := c.cfg.Selectors
	boundary := c.now().AddDate(0, 0, -c.cfg.LookbackDays)

	var refs []OrderRef
	seen := map[string]struct{}{}
	consumed := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("collector", err)
		}

		if err := page.WaitVisible(ctx, sel.OrderRow, c.cfg.ListingTimeout); err != nil {
			return nil, errors.NewListingNotFound("collector", err)
		}

		html, err := page.HTML(ctx, c.cfg.ListingTimeout)
		if err != nil {
			return nil, errors.NewScrape("collector", "reading listing page failed", err)
		}
		rows, err := extractListingRows(html, sel)
		if err != nil {
			return nil, errors.NewScrape("collector", "parsing listing page failed", err)
		}

		// "Load more" appends to the already rendered rows, so only rows
		// beyond the previously consumed count are new.
		for _, row := range rows[min(consumed, len(rows)):] {
			consumed++

			date, ok := parseOrderDate(row.DateText)
			if !ok {
				c.log.Warn().Str("date_text", row.DateText).Msg("Skipping row with unparseable date")
				continue
			}
			if date.Before(boundary) {
				c.log.Debug().
					Str("order_date", date.Format("2006-01-02")).
					Msg("Lookback boundary crossed, stopping collection")
				return refs, nil
			}
			if row.DetailURL == "" {
				// A row without a detail link cannot be individually
				// resolved; nothing past it can be trusted either.
				c.log.Warn().Msg("Row without detail link, stopping collection")
				return refs, nil
			}

			detailURL := resolveURL(c.cfg.BaseURL, row.DetailURL)
			if _, dup := seen[detailURL]; dup {
				continue
			}
			seen[detailURL] = struct{}{}
			refs = append(refs, OrderRef{DetailURL: detailURL, Date: date})
		}

		moreCount, err := page.Count(ctx, sel.LoadMore, c.cfg.ListingTimeout)
		if err != nil {
			return nil, errors.NewScrape("collector", "counting load-more control failed", err)
		}
		if moreCount == 0 {
			return refs, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("collector", err)
		}
		if err := page.Click(ctx, sel.LoadMore, c.cfg.LoadMoreTimeout); err != nil {
			return nil, errors.NewNavigationTimeout("collector", err)
		}
		if err := c.waitForMoreRows(ctx, page, len(rows)); err != nil {
			return nil, err
		}
	}
}

// waitForMoreRows blocks until the rendered row count strictly exceeds
// previous, within the load-more bound.
func (c *Collector) waitForMoreRows(ctx context.Context, page Page, previous int) error {
	deadline := time.Now().Add(c.cfg.LoadMoreTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return errors.NewCancelled("collector", err)
		}
		n, err := page.Count(ctx, c.cfg.Selectors.OrderRow, c.cfg.LoadMoreTimeout)
		if err == nil && n > previous {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.NewNavigationTimeout("collector", err)
		}
		select {
		case <-time.After(loadMorePollInterval):
		case <-ctx.Done():
			return errors.NewCancelled("collector", ctx.Err())
		}
	}
}
