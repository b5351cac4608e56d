package ingest

import (
	"testing"
	"time"
)

func TestNormalizeDeadline(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		in   string
		want string
	}{
		{"2026-04-01 14:00", "2026-04-01"},
		{"2026-04-01 14:00:00", "2026-04-01"},
		{"2026-04-01", "2026-04-01"},
		{"2026.04.01", "2026-04-01"},
		{"2026/04/01", "2026-04-01"},
		{"20260401", "2026-04-01"},
		{"202604011400", "2026-04-01"},
		{"", ""},
		{"추후 공지", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDeadline(tt.in, loc); got != tt.want {
			t.Errorf("NormalizeDeadline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	raw := RawBid{
		Title:     "  2026년 소상공인   브랜드 개발 지원 용역  ",
		Agency:    " 소상공인시장진흥공단 ",
		BudgetRaw: "80,000,000",
		Deadline:  "2026-04-01 14:00",
		BidNo:     "20260310001",
		BidSeq:    "01",
		URL:       "https://example.org/bid/1",
		Source:    "koneps",
	}
	site := Site{ID: "smba-market", Agency: "소상공인시장진흥공단", Priority: "high", WKMGPartner: true}

	bid := Normalize(raw, site, now)
	if bid.Title != "2026년 소상공인 브랜드 개발 지원 용역" {
		t.Errorf("Title = %q", bid.Title)
	}
	if bid.Agency != "소상공인시장진흥공단" {
		t.Errorf("Agency = %q", bid.Agency)
	}
	if bid.Budget != 80_000_000 || bid.BudgetRaw != "80,000,000" {
		t.Errorf("Budget = %d raw %q", bid.Budget, bid.BudgetRaw)
	}
	if bid.Deadline != "2026-04-01" {
		t.Errorf("Deadline = %q", bid.Deadline)
	}
	if !bid.WKMGPartner || bid.SitePriority != "high" {
		t.Errorf("site metadata not applied: %+v", bid)
	}
	if bid.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("ID not assigned")
	}
}
