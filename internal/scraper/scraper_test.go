package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmichaud/grocerytracker/config"
	scrapeerrors "jmichaud/grocerytracker/pkg/errors"
)

func testScraper(t *testing.T, browser *fakeBrowser) *Scraper {
	t.Helper()
	cfg := config.LoadConfig()
	cfg.CacheDir = t.TempDir()
	cfg.SettleDelay = time.Millisecond
	cfg.LoginDoneTimeout = 100 * time.Millisecond
	cfg.DetailFetchDelay = 0

	s, err := New(cfg)
	require.NoError(t, err)
	s.factory = fakeFactory(browser)
	return s
}

func TestRunCancelledBeforeCollection(t *testing.T) {
	browser := &fakeBrowser{}
	s := testScraper(t, browser)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, Credentials{})
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsCancelled(err))
}

func TestRunTeardownExactlyOnceOnFailure(t *testing.T) {
	// Login never succeeds: the form never renders
	browser := &fakeBrowser{}
	s := testScraper(t, browser)
	s.cfg.LoginFormTimeout = 50 * time.Millisecond

	_, err := s.Run(context.Background(), Credentials{})
	require.Error(t, err)
	assert.ErrorIs(t, err, scrapeerrors.ErrFormNotFound)
	assert.Equal(t, 1, browser.closedCount)
}

func TestRunFullPipeline(t *testing.T) {
	cfg := config.LoadConfig()
	sel := cfg.Selectors

	listing := newFakePage()
	listing.visible[sel.UsernameField] = true
	listing.visible[sel.OrderRow] = true
	listing.countFunc = func(selector string) int {
		if selector == sel.LoggedInMarker[0] {
			return 1
		}
		return 0
	}
	listing.htmlFunc = func() string {
		return `<html><body>
			<div class="order-history-row">
				<span class="order-date">2024-06-10</span>
				<a class="view-order-details" href="/orders/1">View</a>
			</div>
		</body></html>`
	}

	first := true
	browser := &fakeBrowser{newPage: func() *fakePage {
		if first {
			first = false
			return listing
		}
		return detailPage(milkRow)
	}}

	s := testScraper(t, browser)
	s.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	records, err := s.Run(context.Background(), Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dairy", records[0].Category)
	assert.Equal(t, 4.99, records[0].TotalSpent)

	// The run was a full success: browser torn down, order cached and
	// indexed, fetch timestamp recorded
	assert.Equal(t, 1, browser.closedCount)
	assert.True(t, s.store.Has("2024-06-10"))
	assert.True(t, s.meta.IsFresh())
}

func TestRunFreshPathServesFromCacheOnly(t *testing.T) {
	browser := &fakeBrowser{}
	s := testScraper(t, browser)
	s.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, s.store.Set("2024-06-10",
		[]byte(`[{"name":"Whole Milk","price":4.99,"quantity":1}]`)))
	require.NoError(t, s.meta.RecordDate("2024-06-10"))
	// An indexed date whose entry is gone is skipped, not fatal
	require.NoError(t, s.meta.RecordDate("2024-06-11"))
	require.NoError(t, s.meta.MarkFetched())

	records, err := s.Run(context.Background(), Credentials{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dairy", records[0].Category)

	// Fresh path never launches a browser
	assert.Equal(t, 0, browser.pagesOpened)
	assert.Equal(t, 0, browser.closedCount)
}

func TestRunFreshPathMatchesFullScrape(t *testing.T) {
	// A full scrape followed by a fresh-path run over the same cache must
	// produce the same records
	cfg := config.LoadConfig()
	sel := cfg.Selectors

	listing := newFakePage()
	listing.visible[sel.UsernameField] = true
	listing.visible[sel.OrderRow] = true
	listing.countFunc = func(selector string) int {
		if selector == sel.LoggedInMarker[0] {
			return 1
		}
		return 0
	}
	listing.htmlFunc = func() string {
		return `<html><body>
			<div class="order-history-row">
				<span class="order-date">2024-06-10</span>
				<a class="view-order-details" href="/orders/1">View</a>
			</div>
			<div class="order-history-row">
				<span class="order-date">2024-05-02</span>
				<a class="view-order-details" href="/orders/2">View</a>
			</div>
		</body></html>`
	}

	first := true
	browser := &fakeBrowser{newPage: func() *fakePage {
		if first {
			first = false
			return listing
		}
		return detailPage(milkRow)
	}}

	s := testScraper(t, browser)
	s.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	scraped, err := s.Run(context.Background(), Credentials{})
	require.NoError(t, err)
	// The lookback boundary follows the injected clock, so both listed
	// orders are in range no matter when this runs
	require.NotEmpty(t, scraped)

	// Second run is inside the freshness window
	cached, err := s.Run(context.Background(), Credentials{})
	require.NoError(t, err)

	assert.Equal(t, scraped, cached)
}

func TestNewReconcilesIndexFromDisk(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.CacheDir = t.TempDir()

	// Seed an orphan cache entry with no index, as left by an interrupted run
	store, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, store.store.Set("2024-04-04", []byte(`[]`)))

	s, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-04"}, s.meta.CachedDates("2024"))
}
