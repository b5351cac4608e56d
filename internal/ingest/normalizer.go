package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wkmg/rfp-radar/internal/models"
)

// deadlineFormats covers the notations seen across the API and agency
// boards, longest first so prefixes do not shadow fuller forms.
var deadlineFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"200601021504",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
}

// Normalize turns an untrusted raw record into a Bid. It never rejects:
// missing budget and deadline stay zero-valued and the scorer deals with
// them. Site metadata fills the partner flag and priority.
func Normalize(raw RawBid, site Site, now time.Time) models.Bid {
	return models.Bid{
		ID:           uuid.New(),
		Title:        cleanTitle(raw.Title),
		Agency:       normalizeSpace(raw.Agency),
		BudgetRaw:    strings.TrimSpace(raw.BudgetRaw),
		Budget:       ParseBudget(raw.BudgetRaw),
		Deadline:     NormalizeDeadline(raw.Deadline, now.Location()),
		BidNo:        strings.TrimSpace(raw.BidNo),
		BidSeq:       strings.TrimSpace(raw.BidSeq),
		Source:       raw.Source,
		URL:          strings.TrimSpace(raw.URL),
		WKMGPartner:  site.WKMGPartner,
		SitePriority: site.Priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeDeadline reduces a source deadline string to YYYY-MM-DD, or ""
// when it cannot be read.
func NormalizeDeadline(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range deadlineFormats {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// cleanTitle strips board decorations that leak into extracted titles:
// "[공고]" style prefixes, new-post markers and surplus whitespace.
func cleanTitle(s string) string {
	s = normalizeSpace(s)
	for _, marker := range []string{"new", "NEW", "공지"} {
		s = strings.TrimSuffix(s, marker)
	}
	return strings.TrimSpace(s)
}
