package config

import "strings"

// DefaultPrices backfills items the order history reports at $0. Lookup is a
// case-insensitive substring match against the raw item name.
var DefaultPrices = map[string]float64{
	"Asparagus": 3.99,
	"Angus Beef Top Round London Broil Steak": 8,
	"Beef Top Round Steak for London Broil":   8,
	"Bananas": 0.79,
}

// FindDefaultPrice returns the default price for an item name, or 0 and false
// when no entry matches.
func FindDefaultPrice(itemName string) (float64, bool) {
	normalized := strings.ToLower(itemName)
	for key, price := range DefaultPrices {
		if strings.Contains(normalized, strings.ToLower(key)) {
			return price, true
		}
	}
	return 0, false
}
