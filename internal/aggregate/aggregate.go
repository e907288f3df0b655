// Package aggregate turns raw scraped purchases into category-level spending
// records. Everything in here is pure computation; malformed input is dropped
// or left as-is, never errored on.
package aggregate

import (
	"sort"
	"time"

	"jmichaud/grocerytracker/config"
)

// Purchase is one scraped line item.
type Purchase struct {
	ItemName  string    `json:"itemName"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	Date      time.Time `json:"date"`
}

// PriceRange tracks the observed positive unit prices for a category.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CategoryRecord is the aggregation output for one category.
type CategoryRecord struct {
	Category         string             `json:"category"`
	TopCategory      string             `json:"topCategory"`
	UnitPrice        float64            `json:"unitPrice"`
	PriceRange       PriceRange         `json:"priceRange"`
	TimesPurchased   int                `json:"timesPurchased"`
	MonthlyBreakdown map[string]int     `json:"monthlyBreakdown"`
	MonthlySpent     map[string]float64 `json:"monthlySpent"`
	TotalSpent       float64            `json:"totalSpent"`
	SpentPerMonth    float64            `json:"spentPerMonth"`
	IncludedItems    []string           `json:"includedItems"`
}

type accumulator struct {
	record   CategoryRecord
	items    map[string]struct{}
	hasPrice bool
}

// Aggregate maps purchases to categories, backfills zero prices from the
// default-price table, and computes the per-category summary. The result is
// sorted descending by spend per month; equal categories keep encounter order.
func Aggregate(purchases []Purchase) []CategoryRecord {
	byCategory := map[string]*accumulator{}
	var order []string

	for _, p := range purchases {
		if p.ItemName == "" || p.Quantity <= 0 {
			continue
		}

		category := config.CategoryFor(p.ItemName)

		price := p.UnitPrice
		if price == 0 {
			if backfilled, ok := config.FindDefaultPrice(p.ItemName); ok {
				price = backfilled
			}
		}

		acc, ok := byCategory[category]
		if !ok {
			acc = &accumulator{
				record: CategoryRecord{
					Category:         category,
					TopCategory:      config.TopCategoryFor(category),
					MonthlyBreakdown: map[string]int{},
					MonthlySpent:     map[string]float64{},
				},
				items: map[string]struct{}{},
			}
			byCategory[category] = acc
			order = append(order, category)
		}

		// Month names collapse across years: every January counts together.
		month := p.Date.Month().String()

		acc.record.TimesPurchased += p.Quantity
		acc.record.MonthlyBreakdown[month] += p.Quantity
		spend := price * float64(p.Quantity)
		acc.record.MonthlySpent[month] += spend
		acc.record.TotalSpent += spend
		acc.items[p.ItemName] = struct{}{}

		// Zero-and-unbackfilled prices stay out of the range and the
		// representative unit price.
		if price > 0 {
			if !acc.hasPrice {
				acc.record.PriceRange = PriceRange{Min: price, Max: price}
				acc.record.UnitPrice = price
				acc.hasPrice = true
			} else {
				if price < acc.record.PriceRange.Min {
					acc.record.PriceRange.Min = price
					acc.record.UnitPrice = price
				}
				if price > acc.record.PriceRange.Max {
					acc.record.PriceRange.Max = price
				}
			}
		}
	}

	records := make([]CategoryRecord, 0, len(order))
	for _, category := range order {
		acc := byCategory[category]

		if months := len(acc.record.MonthlySpent); months > 0 {
			var total float64
			for _, spend := range acc.record.MonthlySpent {
				total += spend
			}
			acc.record.SpentPerMonth = total / float64(months)
		}

		included := make([]string, 0, len(acc.items))
		for item := range acc.items {
			included = append(included, item)
		}
		sort.Strings(included)
		acc.record.IncludedItems = included

		records = append(records, acc.record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SpentPerMonth > records[j].SpentPerMonth
	})
	return records
}
