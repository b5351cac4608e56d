package scoring

import (
	"sort"
	"time"

	"github.com/wkmg/rfp-radar/internal/models"
)

// ScoredBid pairs a bid with its score for reporting and persistence.
type ScoredBid struct {
	Bid    models.Bid
	Result ScoreResult
}

// Buckets groups relevant, still-open bids for the daily digest.
type Buckets struct {
	// Priority: budget at or above the priority threshold, or unknown.
	Priority []ScoredBid
	// QuickWin: budget between the floor and the priority threshold.
	QuickWin []ScoredBid
	// Candidates: everything relevant and not expired, sorted by total.
	Candidates []ScoredBid
}

// Bucketize splits scored bids into digest sections. Irrelevant records and
// records whose deadline has passed are dropped; each section is sorted by
// total descending, stable so equal totals keep arrival order.
func Bucketize(scored []ScoredBid, rt *RuleTables, now time.Time) Buckets {
	var b Buckets
	for _, s := range scored {
		if !s.Result.Relevant || deadlinePassed(s.Bid.Deadline, now) {
			continue
		}
		b.Candidates = append(b.Candidates, s)
		if s.Bid.Budget >= rt.PriorityBudget || s.Bid.Budget <= 0 {
			b.Priority = append(b.Priority, s)
		} else if s.Bid.Budget >= rt.MinBudget {
			b.QuickWin = append(b.QuickWin, s)
		}
	}
	byTotal := func(list []ScoredBid) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Result.Total > list[j].Result.Total
		})
	}
	byTotal(b.Priority)
	byTotal(b.QuickWin)
	byTotal(b.Candidates)
	return b
}

// GradeCounts tallies candidates per grade for the digest header.
func GradeCounts(scored []ScoredBid) map[string]int {
	counts := make(map[string]int)
	for _, s := range scored {
		if s.Result.Relevant {
			counts[s.Result.Grade]++
		}
	}
	return counts
}
