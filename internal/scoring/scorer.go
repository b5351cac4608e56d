package scoring

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/wkmg/rfp-radar/internal/models"
)

// Grades, best to worst. D is reserved for excluded or irrelevant records.
const (
	GradeS = "S"
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

// ScoreResult is the full breakdown for one bid. Component scores are kept
// separately so the dashboard and the digest can explain the total.
type ScoreResult struct {
	Relevant        bool     `json:"relevant"`
	ExclusionReason string   `json:"exclusion_reason,omitempty"`
	Domain          string   `json:"domain,omitempty"`
	DomainScore     int      `json:"domain_score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	IndustryScore   int      `json:"industry_score"`
	ScaleScore      int      `json:"scale_score"`
	CompetitionScore int     `json:"competition_score"`
	Penalty         int      `json:"penalty"`
	TrendBonus      int      `json:"trend_bonus"`

	// Set by the secondary AI evaluation, zero-valued otherwise.
	Adjustment       int    `json:"adjustment"`
	Verdict          string `json:"verdict,omitempty"`
	AdjustmentReason string `json:"adjustment_reason,omitempty"`

	Total int    `json:"total"`
	Grade string `json:"grade"`
}

// Score evaluates one bid against the rule tables. It is deterministic for a
// fixed (bid, rules, now) and touches nothing outside its arguments.
//
// Evaluation order is fixed: deadline, exclusion keywords, budget floor,
// domain match, then the additive components. The first three short-circuit
// with Relevant=false and grade D.
func Score(bid models.Bid, rt *RuleTables, now time.Time) ScoreResult {
	res := ScoreResult{Grade: GradeD}
	title := normTitle(bid.Title)

	if deadlinePassed(bid.Deadline, now) {
		res.ExclusionReason = fmt.Sprintf("deadline passed: %s", bid.Deadline)
		return res
	}

	for _, kw := range rt.Exclusions {
		if strings.Contains(title, normTitle(kw)) {
			res.ExclusionReason = fmt.Sprintf("exclusion keyword: %s", kw)
			return res
		}
	}

	if bid.Budget > 0 && bid.Budget < rt.MinBudget {
		res.ExclusionReason = fmt.Sprintf("budget below floor: %d", bid.Budget)
		return res
	}

	domain, domainScore, matched := matchDomain(title, rt.Domains)
	if domainScore == 0 {
		res.ExclusionReason = "no capability domain matched"
		return res
	}
	res.Relevant = true
	res.Domain = domain
	res.DomainScore = domainScore
	res.MatchedKeywords = matched

	res.IndustryScore = industryScore(title, normTitle(bid.Agency), rt.Industry)
	res.ScaleScore = scaleScore(bid.Budget)
	res.CompetitionScore = competitionScore(bid.WKMGPartner || rt.IsPartner(bid.Agency))
	res.Penalty = penalty(title, normTitle(bid.Agency), rt)
	res.TrendBonus = trendBonus(title, rt)

	sum := res.DomainScore + res.IndustryScore + res.ScaleScore +
		res.CompetitionScore + res.Penalty + res.TrendBonus
	res.Total = clamp(sum)
	res.Grade = gradeFor(res.Total, rt.Grades)
	return res
}

// deadlinePassed is permissive: an empty or unparsable deadline keeps the
// bid in play. Only a date strictly before today excludes it.
func deadlinePassed(deadline string, now time.Time) bool {
	if deadline == "" {
		return false
	}
	d, err := time.ParseInLocation("2006-01-02", deadline, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}

// matchDomain scores every domain by keyword hit count and keeps the best.
// Ties go to the domain listed first in the table.
func matchDomain(title string, domains []DomainRule) (name string, score int, matched []string) {
	for _, d := range domains {
		var hits []string
		for _, kw := range d.Keywords {
			if strings.Contains(title, normTitle(kw)) {
				hits = append(hits, kw)
			}
		}
		var s int
		switch {
		case len(hits) >= 3:
			s = d.Full
		case len(hits) == 2:
			s = d.Partial
		case len(hits) == 1:
			s = d.Marginal
		}
		if s > score {
			name, score, matched = d.Name, s, hits
		}
	}
	return name, score, matched
}

// industryScore takes the best entry matching the title or the agency,
// with a floor of 5 for anything that matched a domain at all. The two
// fields are checked separately so a keyword cannot match across their
// boundary.
func industryScore(title, agency string, rules []IndustryRule) int {
	best := 5
	for _, r := range rules {
		kw := normTitle(r.Keyword)
		if r.Score > best && (strings.Contains(title, kw) || strings.Contains(agency, kw)) {
			best = r.Score
		}
	}
	return best
}

// scaleScore bands the budget. Unknown budgets (0) land in the lowest band
// rather than being rejected; the floor check already ran.
func scaleScore(budget int64) int {
	base := 3
	switch {
	case budget >= 10_000_000 && budget <= 500_000_000:
		base = 5
	case budget >= 5_000_000 && budget < 10_000_000:
		base = 4
	}
	return base + 4
}

func competitionScore(partner bool) int {
	s := 3
	if partner {
		s += 3
	} else {
		s += 1
	}
	return s + 1
}

// penalty applies both penalty layers.
//
// Strategic context is read from the title with the agency name removed, so
// a strategy word that only appears inside an embedded agency name counts
// for neither layer. Layer one walks the penalty keyword table;
// operation-type phrases are mitigated to the reduced value when strategic
// context is present. Layer two checks execution words against the full
// title. A title that got the mitigated value in layer one is not mitigated
// a second time, but an execution-only title can be penalized by both
// layers.
func penalty(title, agency string, rt *RuleTables) int {
	total := 0
	alreadyReduced := false

	titleNoAgency := title
	if agency != "" {
		titleNoAgency = strings.ReplaceAll(title, agency, "")
	}

	strategic := containsAny(titleNoAgency, rt.StrategicExemptionWords)
	for _, p := range rt.Penalties {
		if !strings.Contains(title, normTitle(p.Keyword)) {
			continue
		}
		if strategic && isOperationKeyword(p.Keyword, rt.OperationPenaltyKeywords) {
			total += rt.MitigatedPenalty
			alreadyReduced = true
			continue
		}
		total += p.Points
	}

	hasStrategy := containsAny(titleNoAgency, rt.StrategyWords)
	hasExecution := containsAny(title, rt.ExecutionWords)
	switch {
	case hasExecution && !hasStrategy:
		total += rt.ExecutionOnlyPenalty
	case hasExecution && hasStrategy && !alreadyReduced:
		total += rt.MitigatedPenalty
	}
	return total
}

// trendBonus fires once on the first matching trend keyword.
func trendBonus(title string, rt *RuleTables) int {
	for _, kw := range rt.AIBonusKeywords {
		if strings.Contains(title, normTitle(kw)) {
			return rt.AIBonusScore
		}
	}
	return 0
}

func isOperationKeyword(kw string, ops []string) bool {
	for _, op := range ops {
		if kw == op {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, normTitle(w)) {
			return true
		}
	}
	return false
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func gradeFor(total int, g GradeThresholds) string {
	switch {
	case total >= g.S:
		return GradeS
	case total >= g.A:
		return GradeA
	case total >= g.B:
		return GradeB
	default:
		return GradeC
	}
}

// normTitle strips whitespace, hyphens and underscores and lowercases ASCII
// so keyword matching survives the spacing differences between sources.
func normTitle(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
