package report

import (
	"strings"
	"testing"
	"time"

	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/models"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

func sampleReport() *ingest.RunReport {
	priority := scoring.ScoredBid{
		Bid: models.Bid{
			Title:    "소상공인 브랜드 개발 지원",
			Agency:   "소상공인시장진흥공단",
			Budget:   80_000_000,
			Deadline: "2026-04-01",
			URL:      "https://example.org/bid/1",
		},
		Result: scoring.ScoreResult{Relevant: true, Total: 85, Grade: scoring.GradeS, Domain: "브랜드전략"},
	}
	quickWin := scoring.ScoredBid{
		Bid: models.Bid{
			Title:  "지역특산물 마케팅 전략 수립",
			Agency: "화성시청",
			Budget: 40_000_000,
		},
		Result: scoring.ScoreResult{Relevant: true, Total: 66, Grade: scoring.GradeA, Domain: "마케팅커뮤니케이션"},
	}
	return &ingest.RunReport{
		Stats: ingest.RunStats{
			SourcesTried: 5, Found: 120, AfterDedup: 100, Relevant: 12,
			Saved: 12, Duration: 90 * time.Second,
		},
		Scored:  []scoring.ScoredBid{priority, quickWin},
		Buckets: scoring.Buckets{Priority: []scoring.ScoredBid{priority}, QuickWin: []scoring.ScoredBid{quickWin}},
	}
}

func TestDigestHTML(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	d := BuildDigest(sampleReport(), now)

	html, err := d.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"2026-03-10",
		"소상공인 브랜드 개발 지원",
		"https://example.org/bid/1",
		"8,000만원",
		"지역특산물 마케팅 전략 수립",
		"4,000만원",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("digest missing %q", want)
		}
	}
	if !strings.Contains(d.Subject(), "12건") {
		t.Errorf("subject = %q", d.Subject())
	}
}

func TestCSV(t *testing.T) {
	rep := sampleReport()
	data, err := CSV(rep.Scored)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("missing BOM")
	}
	if !strings.Contains(out, "소상공인 브랜드 개발 지원") || !strings.Contains(out, "80000000") {
		t.Errorf("csv content wrong:\n%s", out)
	}
}

func TestWriteTable(t *testing.T) {
	var b strings.Builder
	WriteTable(&b, sampleReport().Scored)
	if !strings.Contains(b.String(), "소상공인시장진흥공단") {
		t.Errorf("table missing agency:\n%s", b.String())
	}
}
