package scoring

import (
	"testing"

	"github.com/wkmg/rfp-radar/internal/models"
)

func TestBucketize(t *testing.T) {
	rt := loadTestRules(t)

	mk := func(budget int64, deadline string, total int) ScoredBid {
		return ScoredBid{
			Bid:    models.Bid{Title: "t", Budget: budget, Deadline: deadline},
			Result: ScoreResult{Relevant: true, Total: total, Grade: gradeFor(total, rt.Grades)},
		}
	}
	scored := []ScoredBid{
		mk(80_000_000, "2026-04-01", 70),
		mk(40_000_000, "2026-04-01", 66),
		mk(0, "2026-04-01", 58),          // unknown budget counts as priority
		mk(120_000_000, "2026-01-01", 90), // expired, dropped
		{Bid: models.Bid{Budget: 80_000_000}, Result: ScoreResult{Relevant: false}},
		mk(90_000_000, "2026-04-01", 85),
	}

	b := Bucketize(scored, rt, testNow)
	if len(b.Candidates) != 4 {
		t.Fatalf("candidates = %d, want 4", len(b.Candidates))
	}
	if len(b.Priority) != 3 || len(b.QuickWin) != 1 {
		t.Fatalf("priority = %d quickwin = %d, want 3/1", len(b.Priority), len(b.QuickWin))
	}
	if b.Priority[0].Result.Total != 85 || b.Priority[2].Result.Total != 58 {
		t.Errorf("priority not sorted by total: %v", totals(b.Priority))
	}
	if b.QuickWin[0].Bid.Budget != 40_000_000 {
		t.Errorf("quick-win bucket holds budget %d", b.QuickWin[0].Bid.Budget)
	}
	for i := 1; i < len(b.Candidates); i++ {
		if b.Candidates[i].Result.Total > b.Candidates[i-1].Result.Total {
			t.Fatalf("candidates not sorted: %v", totals(b.Candidates))
		}
	}
}

func totals(list []ScoredBid) []int {
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.Result.Total
	}
	return out
}

func TestGradeCounts(t *testing.T) {
	scored := []ScoredBid{
		{Result: ScoreResult{Relevant: true, Grade: GradeS}},
		{Result: ScoreResult{Relevant: true, Grade: GradeA}},
		{Result: ScoreResult{Relevant: true, Grade: GradeA}},
		{Result: ScoreResult{Relevant: false, Grade: GradeD}},
	}
	counts := GradeCounts(scored)
	if counts[GradeS] != 1 || counts[GradeA] != 2 || counts[GradeD] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
