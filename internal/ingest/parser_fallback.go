package ingest

import (
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Selector-based board extraction, used when no chat model is configured.
// Korean agency boards are almost always a table or list of linked titles
// with a posting date somewhere in the same row.

var boardDateRe = regexp.MustCompile(`(\d{4})[.\-/]\s?(\d{1,2})[.\-/]\s?(\d{1,2})`)

func fallbackParse(site Site, html string, lookbackDays int, now time.Time) ([]RawBid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -lookbackDays)
	seen := make(map[string]bool)
	var bids []RawBid

	doc.Find("table tbody tr, ul.board-list li, div.board-list li, ul.list li").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href]").First()
		title := normalizeSpace(link.Text())
		if title == "" {
			title = normalizeSpace(row.Find("a").First().Text())
		}
		// Short anchor text is pagination or an attachment icon.
		if len([]rune(title)) < 6 {
			return
		}

		if m := boardDateRe.FindStringSubmatch(row.Text()); m != nil {
			posted, err := time.ParseInLocation("2006-1-2", m[1]+"-"+m[2]+"-"+m[3], now.Location())
			if err == nil && posted.Before(cutoff) {
				return
			}
		}

		bidURL := canonicalizeURL(resolveLink(site.URL, link.AttrOr("href", "")))
		key := title + "|" + bidURL
		if seen[key] {
			return
		}
		seen[key] = true

		bids = append(bids, RawBid{
			Title:  title,
			Agency: site.Agency,
			URL:    bidURL,
			Source: "crawl:" + site.ID,
		})
	})

	log.Printf("[BoardParser] %s: %d rows via selector fallback", site.ID, len(bids))
	return bids, nil
}

// canonicalizeURL lowercases the host and strips tracking parameters so the
// same announcement fetched twice keys identically.
func canonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
		}
	}
	for _, p := range []string{"fbclid", "gclid", "ref", "session"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
