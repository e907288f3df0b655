package config

import "strings"

// CategoryRule maps an item-name pattern to a category. Rules are applied in
// order; the first match wins.
type CategoryRule struct {
	Pattern  string
	Category string
}

// CategoryRules is the ordered rule table used to normalize raw item names
// into categories. Matching is case-insensitive substring.
var CategoryRules = []CategoryRule{
	// Pasta & Rice
	{"BARILLA PASTA", "Pasta & Rice"},
	{"RONZONI PASTA", "Pasta & Rice"},
	{"MINUTE RICE", "Pasta & Rice"},
	{"RICE", "Pasta & Rice"},

	// Dairy
	{"MILK", "Dairy"},
	{"YOGURT", "Dairy"},
	{"CHEESE", "Dairy"},
	{"CREAM", "Dairy"},
	{"BUTTER", "Dairy"},
	{"EGGS", "Dairy"},

	// Meat
	{"GROUND BEEF", "Ground Beef"},
	{"CHICKEN", "Meat"},
	{"BEEF", "Meat"},
	{"PORK", "Meat"},
	{"TURKEY", "Meat"},
	{"FISH", "Meat"},
	{"SALMON", "Meat"},
	{"BACON", "Meat"},

	// Produce
	{"BANANA", "Produce"},
	{"APPLE", "Produce"},
	{"ORANGE", "Produce"},
	{"LETTUCE", "Produce"},
	{"TOMATO SAUCE", "Canned Goods"},
	{"TOMATO", "Produce"},
	{"POTATO", "Produce"},
	{"ONION", "Produce"},
	{"CARROT", "Produce"},
	{"ASPARAGUS", "Produce"},

	// Snacks
	{"CHIPS", "Snacks"},
	{"COOKIE", "Snacks"},
	{"CRACKERS", "Snacks"},

	// Beverages
	{"SODA", "Beverages"},
	{"JUICE", "Beverages"},
	{"WATER", "Beverages"},
	{"COFFEE", "Beverages"},
	{"TEA", "Beverages"},

	// Canned Goods
	{"SOUP", "Canned Goods"},
	{"BEANS", "Canned Goods"},

	// Breakfast
	{"CEREAL", "Breakfast"},
	{"OATMEAL", "Breakfast"},
	{"PANCAKE", "Breakfast"},

	// Condiments
	{"KETCHUP", "Condiments"},
	{"MUSTARD", "Condiments"},
	{"MAYONNAISE", "Condiments"},
	{"SAUCE", "Condiments"},

	// Baking
	{"FLOUR", "Baking"},
	{"SUGAR", "Baking"},
	{"BAKING", "Baking"},

	// Cleaning
	{"DETERGENT", "Cleaning"},
	{"CLEANER", "Cleaning"},
	{"SOAP", "Cleaning"},
	{"PAPER TOWEL", "Cleaning"},
	{"TISSUE", "Cleaning"},
}

// CategoryFor returns the category for a raw item name via the first matching
// rule. Names that match no rule become their own category.
func CategoryFor(itemName string) string {
	upper := strings.ToUpper(itemName)
	for _, rule := range CategoryRules {
		if strings.Contains(upper, rule.Pattern) {
			return rule.Category
		}
	}
	return itemName
}
