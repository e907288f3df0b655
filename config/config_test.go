package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	cfg := LoadConfig()
	assert.Equal(t, "https://www.hannaford.com/login", cfg.LoginURL)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Equal(t, 24*time.Hour, cfg.FreshnessWindow)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.Headless)
	assert.NotEmpty(t, cfg.Selectors.OrderRow)
	assert.NotEmpty(t, cfg.Selectors.LoggedInMarker)

	// Test with environment variables
	os.Setenv("GROCERY_LOGIN_URL", "https://example.com/login")
	os.Setenv("LOOKBACK_DAYS", "30")
	os.Setenv("FRESHNESS_WINDOW_HOURS", "1")
	os.Setenv("NAVIGATION_TIMEOUT_SECONDS", "5")
	os.Setenv("BROWSER_HEADLESS", "false")
	os.Setenv("SEL_LOGGED_IN_MARKERS", ".a, .b")

	cfg = LoadConfig()
	assert.Equal(t, "https://example.com/login", cfg.LoginURL)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 1*time.Hour, cfg.FreshnessWindow)
	assert.Equal(t, 5*time.Second, cfg.NavigationTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, []string{".a", ".b"}, cfg.Selectors.LoggedInMarker)

	// Clean up
	os.Unsetenv("GROCERY_LOGIN_URL")
	os.Unsetenv("LOOKBACK_DAYS")
	os.Unsetenv("FRESHNESS_WINDOW_HOURS")
	os.Unsetenv("NAVIGATION_TIMEOUT_SECONDS")
	os.Unsetenv("BROWSER_HEADLESS")
	os.Unsetenv("SEL_LOGGED_IN_MARKERS")
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.LookbackDays = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LoginURL = ""
	assert.Error(t, bad.Validate())
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, "Dairy", CategoryFor("Hood Whole Milk Gallon"))
	assert.Equal(t, "Ground Beef", CategoryFor("80/20 Ground Beef 1lb"))
	// First-match ordering: "TOMATO SAUCE" wins over "TOMATO" and "SAUCE"
	assert.Equal(t, "Canned Goods", CategoryFor("Hunt's Tomato Sauce"))
	assert.Equal(t, "Produce", CategoryFor("Vine Tomato"))
	// Unmatched names become their own category
	assert.Equal(t, "Mystery Item", CategoryFor("Mystery Item"))
}

func TestFindDefaultPrice(t *testing.T) {
	price, ok := FindDefaultPrice("Fresh Asparagus Bunch")
	assert.True(t, ok)
	assert.Equal(t, 3.99, price)

	_, ok = FindDefaultPrice("Unlisted Item")
	assert.False(t, ok)
}

func TestTopCategoryFor(t *testing.T) {
	assert.Equal(t, "Meat", TopCategoryFor("Ground Beef"))
	assert.Equal(t, "Dairy & Eggs", TopCategoryFor("Dairy"))
	assert.Equal(t, "Other", TopCategoryFor("Mystery Item"))
}
