package scraper

import "time"

// Credentials are the two opaque strings the login surface needs. They are
// sourced externally and never persisted by the core.
type Credentials struct {
	Username string
	Password string
}

// OrderRef points at one order in the history listing. Held in memory only
// during a run; discarded once translated into cache lookups.
type OrderRef struct {
	DetailURL string
	Date      time.Time
}

// orderItem is the raw per-item shape written to the cache, one entry per
// line item on an order.
type orderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// DateKey returns the cache partition key for the order's calendar day.
func (r OrderRef) DateKey() string {
	return r.Date.Format("2006-01-02")
}
