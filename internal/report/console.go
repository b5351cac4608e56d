package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wkmg/rfp-radar/internal/scoring"
)

// WriteTable prints scored bids as a console table, best first.
func WriteTable(w io.Writer, scored []scoring.ScoredBid) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"등급", "점수", "공고명", "발주기관", "예산", "마감", "도메인"})
	for _, s := range scored {
		deadline := s.Bid.Deadline
		if deadline == "" {
			deadline = "-"
		}
		t.AppendRow(table.Row{
			s.Result.Grade, s.Result.Total, truncate(s.Bid.Title, 48),
			s.Bid.Agency, s.Bid.BudgetLabel(), deadline, s.Result.Domain,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// CSV renders scored bids as a UTF-8 CSV with a BOM so spreadsheet apps
// pick up the Korean text correctly.
func CSV(scored []scoring.ScoredBid) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	header := []string{"grade", "total", "title", "agency", "budget", "deadline", "domain",
		"matched_keywords", "penalty", "adjustment", "verdict", "url", "source"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range scored {
		row := []string{
			s.Result.Grade,
			fmt.Sprintf("%d", s.Result.Total),
			s.Bid.Title,
			s.Bid.Agency,
			fmt.Sprintf("%d", s.Bid.Budget),
			s.Bid.Deadline,
			s.Result.Domain,
			strings.Join(s.Result.MatchedKeywords, ";"),
			fmt.Sprintf("%d", s.Result.Penalty),
			fmt.Sprintf("%d", s.Result.Adjustment),
			s.Result.Verdict,
			s.Bid.URL,
			s.Bid.Source,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
