package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jmichaud/grocerytracker/config"
)

// listingRow is what the listing-page extractor yields per rendered order
// row. DetailURL may be empty when the site renders a row without a link.
type listingRow struct {
	DateText  string
	DetailURL string
}

// orderDateFormats covers the date renderings the order history has been
// seen to use.
var quantityPattern = regexp.MustCompile(`\d+`)

var orderDateFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
}

// extractListingRows parses the rendered order-history HTML into rows. Rows
// are returned in page order; field presence is checked downstream.
func extractListingRows(html string, sel config.Selectors) ([]listingRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var rows []listingRow
	doc.Find(sel.OrderRow).Each(func(_ int, s *goquery.Selection) {
		row := listingRow{
			DateText: strings.TrimSpace(s.Find(sel.OrderDate).First().Text()),
		}
		if href, ok := s.Find(sel.DetailLink).First().Attr("href"); ok {
			row.DetailURL = strings.TrimSpace(href)
		}
		rows = append(rows, row)
	})
	return rows, nil
}

// extractOrderItems parses a rendered order-detail page into raw items.
// Entries missing a name, a parseable price, or a parseable quantity are
// dropped, not errored.
func extractOrderItems(html string, sel config.Selectors) []orderItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []orderItem
	doc.Find(sel.ItemRow).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(sel.ItemName).First().Text())
		if name == "" {
			return
		}
		price, ok := parsePrice(s.Find(sel.ItemPrice).First().Text())
		if !ok {
			return
		}
		qty, ok := parseQuantity(s.Find(sel.ItemQuantity).First().Text())
		if !ok {
			return
		}
		items = append(items, orderItem{Name: name, Price: price, Quantity: qty})
	})
	return items
}

// parseOrderDate parses a listing date string, trying known formats in order.
func parseOrderDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, format := range orderDateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parsePrice parses a rendered price like "$4.99". A legitimately zero price
// parses fine; it gets backfilled during aggregation.
func parsePrice(text string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

// parseQuantity pulls the first integer out of a quantity cell ("Qty: 2").
func parseQuantity(text string) (int, bool) {
	digits := quantityPattern.FindString(text)
	if digits == "" {
		return 0, false
	}
	qty, err := strconv.Atoi(digits)
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// resolveURL resolves a possibly relative href against the site base URL.
func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
