package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a normalized public-procurement announcement, ready for scoring.
type Bid struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Agency       string    `json:"agency"`
	BudgetRaw    string    `json:"budget_raw"` // original estimated-price string from the source
	Budget       int64     `json:"budget"`     // parsed value in won; 0 means unspecified
	Deadline     string    `json:"deadline"`   // YYYY-MM-DD, empty when the source gave none
	BidNo        string    `json:"bid_no"`
	BidSeq       string    `json:"bid_seq"`
	Source       string    `json:"source"`
	URL          string    `json:"url"`
	WKMGPartner  bool      `json:"wkmg_partner"`
	SitePriority string    `json:"site_priority"`
	Fingerprint  string    `json:"fingerprint"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BudgetLabel renders the budget the way the daily digest shows it.
func (b Bid) BudgetLabel() string {
	if b.Budget <= 0 {
		return "미정"
	}
	return formatManwon(b.Budget)
}
