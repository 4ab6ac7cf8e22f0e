package scrape

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/homelens/housepricer/internal/features"
)

// Listing is one scraped sold-property record. FlatType is empty when the
// source listing omitted it.
type Listing struct {
	Address     string
	Price       float64
	SaleDate    time.Time
	FlatType    string
	LeaseType   string
	BuildStatus string
}

// ParseListings extracts listings from one page of HTML. The four per-page
// record fragments (address, price, characteristics, sale date) appear at
// matching list positions; a count mismatch means the page markup changed
// and the whole page is rejected rather than misaligned.
func ParseListings(html []byte) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	var addresses []string
	doc.Find("strong.street-details-head-row a").Each(func(_ int, s *goquery.Selection) {
		addresses = append(addresses, cleanText(s.Text()))
	})

	var prices []float64
	var priceErr error
	doc.Find("strong.street-details-price-row").Each(func(_ int, s *goquery.Selection) {
		p, err := ParsePrice(s.Text())
		if err != nil && priceErr == nil {
			priceErr = err
		}
		prices = append(prices, p)
	})
	if priceErr != nil {
		return nil, priceErr
	}

	var characteristics [][]string
	doc.Find("div.street-details-row").Each(func(_ int, s *goquery.Selection) {
		characteristics = append(characteristics, splitCharacteristics(s.Text()))
	})

	var dates []time.Time
	var dateErr error
	doc.Find("tr.sold_price_row").Each(func(_ int, s *goquery.Selection) {
		raw := s.Find("td").Last().Text()
		d, err := ParseSaleDate(raw)
		if err != nil && dateErr == nil {
			dateErr = err
		}
		dates = append(dates, d)
	})
	if dateErr != nil {
		return nil, dateErr
	}

	n := len(addresses)
	if len(prices) != n || len(characteristics) != n || len(dates) != n {
		return nil, eris.Errorf(
			"scrape: fragment counts diverge: %d addresses, %d prices, %d characteristics, %d dates",
			n, len(prices), len(characteristics), len(dates),
		)
	}

	listings := make([]Listing, n)
	for i := range listings {
		flat, lease, build := ParseCharacteristics(characteristics[i])
		listings[i] = Listing{
			Address:     addresses[i],
			Price:       prices[i],
			SaleDate:    dates[i],
			FlatType:    flat,
			LeaseType:   lease,
			BuildStatus: build,
		}
	}
	return listings, nil
}

// ParseCharacteristics splits a listing's characteristics into flat type,
// lease type, and build status. The lease type is recognized by its closed
// vocabulary token and everything else is read positionally around it, so a
// listing that omits the flat type still parses correctly.
func ParseCharacteristics(parts []string) (flatType, leaseType, buildStatus string) {
	for i, p := range parts {
		if !isLeaseType(p) {
			continue
		}
		leaseType = p
		flatType = strings.Join(parts[:i], ", ")
		if i+1 < len(parts) {
			buildStatus = strings.Join(parts[i+1:], ", ")
		}
		return flatType, leaseType, buildStatus
	}

	// No recognizable lease token: fall back to position.
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return "", parts[0], parts[1]
	case 1:
		return "", parts[0], ""
	default:
		return "", "", ""
	}
}

// ParsePrice converts a displayed price like "£1,250,000" to a float.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer("£", "", ",", "", " ", "", " ", "").Replace(strings.TrimSpace(s))
	p, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "scrape: parse price %q", s)
	}
	return p, nil
}

// ParseSaleDate converts a displayed sale date like "3rd March 2019" to a
// time.Time by stripping the day's ordinal suffix.
func ParseSaleDate(s string) (time.Time, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return time.Time{}, eris.Errorf("scrape: empty sale date")
	}

	var day strings.Builder
	for _, r := range fields[0] {
		if r >= '0' && r <= '9' {
			day.WriteRune(r)
		}
	}
	fields[0] = day.String()

	d, err := time.Parse("2 January 2006", strings.Join(fields, " "))
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "scrape: parse sale date %q", s)
	}
	return d, nil
}

// splitCharacteristics splits a comma-separated characteristics string into
// trimmed tokens, dropping empties.
func splitCharacteristics(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// cleanText normalizes scraped text: non-breaking spaces become plain spaces
// and surrounding whitespace is trimmed.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}

// isLeaseType checks against the encoder's closed lease vocabulary so page
// parsing and feature validation cannot drift apart.
func isLeaseType(s string) bool {
	for _, lt := range features.LeaseTypes {
		if s == lt {
			return true
		}
	}
	return false
}
