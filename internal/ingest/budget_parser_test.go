package ingest

import "testing"

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"123456789", 123_456_789},
		{"123456789.00", 123_456_789},
		{"80,000,000", 80_000_000},
		{"80,000,000원", 80_000_000},
		{"8,000만원", 80_000_000},
		{"1억 2,000만원", 120_000_000},
		{"3.5억", 350_000_000},
		{"350백만원", 350_000_000},
		{"1억원 (VAT 포함)", 100_000_000},
		{"약 5,000만원", 50_000_000},
		{"미정", 0},
		{"추후 공고", 0},
		{"", 0},
		{"협의 후 결정", 0},
	}
	for _, tt := range tests {
		if got := ParseBudget(tt.in); got != tt.want {
			t.Errorf("ParseBudget(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
