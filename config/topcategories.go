package config

// TopCategoryGroups rolls normalized categories up into report-level
// super-categories. Categories not listed anywhere fall into "Other".
var TopCategoryGroups = map[string][]string{
	"Meat":            {"Ground Beef", "Meat", "Hot Dogs", "Pepperoni", "Steak"},
	"Dairy & Eggs":    {"Dairy", "Eggs"},
	"Pantry":          {"Pasta & Rice", "Baking", "Canned Goods", "Condiments"},
	"Snacks & Sweets": {"Snacks", "Breakfast"},
	"Beverages":       {"Beverages"},
	"Fresh Produce":   {"Produce"},
	"Household":       {"Cleaning"},
}

// TopCategoryFor returns the super-category for a normalized category.
func TopCategoryFor(category string) string {
	for top, subs := range TopCategoryGroups {
		for _, sub := range subs {
			if sub == category {
				return top
			}
		}
	}
	return "Other"
}
