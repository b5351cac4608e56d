package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/wkmg/rfp-radar/internal/ai"
)

// BoardParser extracts announcement rows from an agency notice board using
// the chat model. Boards differ too much for selector-based scraping; the
// model reads the rendered text instead.
type BoardParser struct {
	AI *ai.OpenAIClient
}

type boardRow struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Link  string `json:"link"`
}

const boardSystemPrompt = `You extract procurement announcements from Korean agency notice boards.`

const boardUserPromptFmt = `The text below is a notice board listing page. Extract every row that looks
like a bid or RFP announcement (입찰, 공고, 모집, 용역, 제안요청).

Return ONLY a JSON array. For each announcement:
- "title": the announcement title, verbatim.
- "date": the posting date as YYYY-MM-DD, or "" if not shown.
- "link": the row's URL or href value, "" if none.

Skip navigation rows, attachment markers and pinned general notices. Do NOT
invent rows. No markdown, no explanation.

BOARD TEXT:
%s`

// Parse extracts announcement rows from a fetched board page. Rows older
// than the lookback window are dropped; undated rows are kept. Relative
// links are resolved against the page URL.
func (p *BoardParser) Parse(ctx context.Context, site Site, html string, lookbackDays int, now time.Time) ([]RawBid, error) {
	if p.AI == nil {
		return fallbackParse(site, html, lookbackDays, now)
	}

	text := PrepareBoardText(html)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty board page")
	}

	log.Printf("[BoardParser] %s: sending %d chars to %s", site.ID, len(text), p.AI.ChatModel)

	reply, err := p.AI.Complete(ctx, boardSystemPrompt, fmt.Sprintf(boardUserPromptFmt, text))
	if err != nil {
		return nil, fmt.Errorf("board extraction: %w", err)
	}
	rows, err := parseBoardRows(reply)
	if err != nil {
		return nil, fmt.Errorf("board extraction for %s: %w", site.ID, err)
	}

	cutoff := now.AddDate(0, 0, -lookbackDays)
	var bids []RawBid
	for _, row := range rows {
		title := normalizeSpace(row.Title)
		if title == "" {
			continue
		}
		if row.Date != "" {
			if posted, err := time.ParseInLocation("2006-01-02", row.Date, now.Location()); err == nil && posted.Before(cutoff) {
				continue
			}
		}
		bids = append(bids, RawBid{
			Title:  title,
			Agency: site.Agency,
			URL:    resolveLink(site.URL, row.Link),
			Source: "crawl:" + site.ID,
		})
	}
	log.Printf("[BoardParser] %s: %d rows extracted, %d within window", site.ID, len(rows), len(bids))
	return bids, nil
}

func parseBoardRows(reply string) ([]boardRow, error) {
	raw := ai.ExtractJSON(reply)
	if raw == "" {
		return nil, fmt.Errorf("no JSON in reply")
	}
	var rows []boardRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Announcements []boardRow `json:"announcements"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 == nil && len(wrapped.Announcements) > 0 {
			return wrapped.Announcements, nil
		}
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return rows, nil
}

// resolveLink resolves a possibly relative href against the board page URL.
// An unusable link falls back to the board page itself.
func resolveLink(pageURL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "javascript:") || link == "#" {
		return pageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return pageURL
	}
	return base.ResolveReference(ref).String()
}
