package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateGroundBeefExample(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "Ground Beef", UnitPrice: 5, Quantity: 2, Date: day(2024, time.January, 10)},
		{ItemName: "Ground Beef", UnitPrice: 6, Quantity: 1, Date: day(2024, time.February, 12)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Ground Beef", r.Category)
	assert.Equal(t, 3, r.TimesPurchased)
	assert.Equal(t, PriceRange{Min: 5, Max: 6}, r.PriceRange)
	assert.Equal(t, 5.0, r.UnitPrice)
	assert.Equal(t, 16.0, r.TotalSpent)
	assert.Equal(t, map[string]int{"January": 2, "February": 1}, r.MonthlyBreakdown)
	assert.Equal(t, map[string]float64{"January": 10, "February": 6}, r.MonthlySpent)
	// Average over months with activity, not over 12
	assert.Equal(t, 8.0, r.SpentPerMonth)
	assert.Equal(t, []string{"Ground Beef"}, r.IncludedItems)
	assert.Equal(t, "Meat", r.TopCategory)
}

func TestAggregatePriceBackfill(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "Organic Bananas", UnitPrice: 0, Quantity: 1, Date: day(2024, time.March, 1)},
		{ItemName: "Unlisted Widget", UnitPrice: 0, Quantity: 1, Date: day(2024, time.March, 2)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 2)

	var bananas, widget *CategoryRecord
	for i := range records {
		switch records[i].Category {
		case "Produce":
			bananas = &records[i]
		case "Unlisted Widget":
			widget = &records[i]
		}
	}

	require.NotNil(t, bananas)
	assert.Equal(t, 0.79, bananas.TotalSpent)
	assert.Equal(t, PriceRange{Min: 0.79, Max: 0.79}, bananas.PriceRange)

	// No default-price match: price stays 0 and out of the range
	require.NotNil(t, widget)
	assert.Equal(t, 0.0, widget.TotalSpent)
	assert.Equal(t, PriceRange{}, widget.PriceRange)
	assert.Equal(t, 1, widget.TimesPurchased)
}

func TestAggregateMonthsCollapseAcrossYears(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "Whole Milk", UnitPrice: 4, Quantity: 1, Date: day(2023, time.January, 5)},
		{ItemName: "Whole Milk", UnitPrice: 4, Quantity: 1, Date: day(2024, time.January, 5)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]int{"January": 2}, records[0].MonthlyBreakdown)
	assert.Equal(t, 8.0, records[0].SpentPerMonth)
}

func TestAggregateSortsBySpentPerMonthDescending(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "Cheap Thing", UnitPrice: 1, Quantity: 1, Date: day(2024, time.April, 1)},
		{ItemName: "Costly Thing", UnitPrice: 100, Quantity: 1, Date: day(2024, time.April, 1)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 2)
	assert.Equal(t, "Costly Thing", records[0].Category)
	assert.Equal(t, "Cheap Thing", records[1].Category)
}

func TestAggregateStableTieBreak(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "First Same", UnitPrice: 5, Quantity: 1, Date: day(2024, time.May, 1)},
		{ItemName: "Second Same", UnitPrice: 5, Quantity: 1, Date: day(2024, time.May, 2)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 2)
	assert.Equal(t, "First Same", records[0].Category)
	assert.Equal(t, "Second Same", records[1].Category)
}

func TestAggregateDropsMalformedInput(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "", UnitPrice: 5, Quantity: 1, Date: day(2024, time.June, 1)},
		{ItemName: "Ok Item", UnitPrice: 5, Quantity: 0, Date: day(2024, time.June, 1)},
		{ItemName: "Ok Item", UnitPrice: 5, Quantity: 1, Date: day(2024, time.June, 1)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].TimesPurchased)
}

func TestAggregateDistinctIncludedItemsSorted(t *testing.T) {
	purchases := []Purchase{
		{ItemName: "Vine Tomato", UnitPrice: 2, Quantity: 1, Date: day(2024, time.July, 1)},
		{ItemName: "Red Apple", UnitPrice: 1, Quantity: 1, Date: day(2024, time.July, 2)},
		{ItemName: "Vine Tomato", UnitPrice: 2, Quantity: 3, Date: day(2024, time.July, 9)},
	}

	records := Aggregate(purchases)
	require.Len(t, records, 1)
	assert.Equal(t, "Produce", records[0].Category)
	assert.Equal(t, []string{"Red Apple", "Vine Tomato"}, records[0].IncludedItems)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
