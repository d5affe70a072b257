// Package listing turns raw spreadsheet rows into the property records the
// bot shows to users. A Listing lives only for the duration of one reply.
package listing

import (
	"fmt"
	"strings"
)

// MinFields is how many columns a row needs before it can be rendered:
// price, location, size, bedrooms, details and the image URL column.
const MinFields = 6

// Listing is one property record derived from a spreadsheet row.
type Listing struct {
	Price     string
	Location  string
	Size      string
	Bedrooms  string
	Details   string
	ImageURLs []string
}

// FromRow builds a Listing from one spreadsheet row. Rows with fewer than
// MinFields columns are rejected; callers log and skip those.
func FromRow(row []string) (Listing, bool) {
	if len(row) < MinFields {
		return Listing{}, false
	}
	return Listing{
		Price:     row[0],
		Location:  row[1],
		Size:      row[2],
		Bedrooms:  row[3],
		Details:   row[4],
		ImageURLs: splitImageURLs(row[5]),
	}, true
}

// splitImageURLs splits the comma-separated URL column, trimming whitespace
// and dropping empty fragments so a blank column yields no URLs.
func splitImageURLs(field string) []string {
	parts := strings.Split(field, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if u := strings.TrimSpace(p); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Caption renders the listing as the message text shown to the user.
func (l Listing) Caption() string {
	return fmt.Sprintf("💰 Price: %s\n📍 Location: %s\n📐 Size: %s\n🛏️ Bedrooms: %s\nℹ️ Details: %s",
		l.Price, l.Location, l.Size, l.Bedrooms, l.Details)
}

// FallbackText is the plain-text rendering used when sending images fails:
// the caption followed by the image URLs inline.
func (l Listing) FallbackText() string {
	return l.Caption() + "\n\nImages: " + strings.Join(l.ImageURLs, ", ")
}
