package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Cache configuration
	CacheDir string

	// Target site URLs
	LoginURL  string
	OrdersURL string
	BaseURL   string

	// Credentials (sourced externally, never persisted by the core)
	Username string
	Password string

	// Selectors describe the pieces of the third-party pages the scraper
	// reads. The site DOM is an untrusted external schema; when the site
	// changes, these change, not the code.
	Selectors Selectors

	// Scrape behavior
	LookbackDays     int
	FreshnessWindow  time.Duration
	DetailFetchDelay time.Duration

	// Bounded waits. Every suspension point in the scraper takes one of
	// these; exceeding it surfaces as a typed timeout error.
	NavigationTimeout time.Duration
	LoginFormTimeout  time.Duration
	LoginDoneTimeout  time.Duration
	ListingTimeout    time.Duration
	LoadMoreTimeout   time.Duration
	DetailTimeout     time.Duration
	SettleDelay       time.Duration

	// Browser
	Headless bool

	// HTTP server
	ListenAddr string

	// Environment
	Environment string
}

// Selectors contains CSS selectors and page hooks for the order-history workflow
type Selectors struct {
	// Login page
	UsernameField  string
	PasswordField  string
	SubmitScript   string
	LoggedInMarker []string

	// Order listing page
	OrderRow   string
	OrderDate  string
	DetailLink string
	LoadMore   string

	// Order detail page
	ItemRow      string
	ItemName     string
	ItemPrice    string
	ItemQuantity string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	lookbackDays, _ := strconv.Atoi(getEnv("LOOKBACK_DAYS", "365"))
	freshnessHours, _ := strconv.Atoi(getEnv("FRESHNESS_WINDOW_HOURS", "24"))
	detailDelayMs, _ := strconv.Atoi(getEnv("DETAIL_FETCH_DELAY_MS", "1500"))

	cacheDir := getEnv("CACHE_DIR", "")
	if cacheDir == "" {
		cwd, _ := os.Getwd()
		cacheDir = filepath.Join(cwd, ".cache")
	}

	return Config{
		CacheDir: cacheDir,

		LoginURL:  getEnv("GROCERY_LOGIN_URL", "https://www.hannaford.com/login"),
		OrdersURL: getEnv("GROCERY_ORDERS_URL", "https://www.hannaford.com/account/my-orders"),
		BaseURL:   getEnv("GROCERY_BASE_URL", "https://www.hannaford.com"),

		Username: getEnv("GROCERY_USERNAME", ""),
		Password: getEnv("GROCERY_PASSWORD", ""),

		Selectors: Selectors{
			UsernameField: getEnv("SEL_USERNAME_FIELD", "#userName"),
			PasswordField: getEnv("SEL_PASSWORD_FIELD", "#passwordId6"),
			SubmitScript:  getEnv("SEL_SUBMIT_SCRIPT", "invokeLogin(document.getElementById('registered_user_login'))"),
			LoggedInMarker: splitList(getEnv("SEL_LOGGED_IN_MARKERS",
				".account-dashboard,.my-account-nav,#accountMenu,.welcome-user")),

			OrderRow:   getEnv("SEL_ORDER_ROW", ".order-history-row"),
			OrderDate:  getEnv("SEL_ORDER_DATE", ".order-date"),
			DetailLink: getEnv("SEL_DETAIL_LINK", "a.view-order-details"),
			LoadMore:   getEnv("SEL_LOAD_MORE", "button.load-more-orders"),

			ItemRow:      getEnv("SEL_ITEM_ROW", ".order-item-row"),
			ItemName:     getEnv("SEL_ITEM_NAME", ".item-name"),
			ItemPrice:    getEnv("SEL_ITEM_PRICE", ".item-price"),
			ItemQuantity: getEnv("SEL_ITEM_QTY", ".item-qty"),
		},

		LookbackDays:     lookbackDays,
		FreshnessWindow:  time.Duration(freshnessHours) * time.Hour,
		DetailFetchDelay: time.Duration(detailDelayMs) * time.Millisecond,

		NavigationTimeout: durationEnv("NAVIGATION_TIMEOUT_SECONDS", 30*time.Second),
		LoginFormTimeout:  durationEnv("LOGIN_FORM_TIMEOUT_SECONDS", 15*time.Second),
		LoginDoneTimeout:  durationEnv("LOGIN_DONE_TIMEOUT_SECONDS", 20*time.Second),
		ListingTimeout:    durationEnv("LISTING_TIMEOUT_SECONDS", 20*time.Second),
		LoadMoreTimeout:   durationEnv("LOAD_MORE_TIMEOUT_SECONDS", 10*time.Second),
		DetailTimeout:     durationEnv("DETAIL_TIMEOUT_SECONDS", 20*time.Second),
		SettleDelay:       durationEnv("SETTLE_DELAY_SECONDS", 1*time.Second),

		Headless: getEnv("BROWSER_HEADLESS", "true") != "false",

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		Environment: getEnv("GROCERY_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for required values
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache directory must be set")
	}
	if c.LoginURL == "" || c.OrdersURL == "" {
		return fmt.Errorf("login and orders URLs must be set")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive, got %d", c.LookbackDays)
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive, got %s", c.FreshnessWindow)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// durationEnv reads a whole-second environment variable into a duration
func durationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
