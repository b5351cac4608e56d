package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/wkmg/rfp-radar/internal/models"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func loadTestRules(t *testing.T) *RuleTables {
	t.Helper()
	rt, err := LoadRules([]string{"한국관광공사"})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	return rt
}

func TestScoreExclusions(t *testing.T) {
	rt := loadTestRules(t)

	tests := []struct {
		name       string
		bid        models.Bid
		wantReason string
	}{
		{
			name:       "deadline passed yesterday",
			bid:        models.Bid{Title: "브랜드마케팅 전략 수립", Deadline: "2026-03-09"},
			wantReason: "deadline passed: 2026-03-09",
		},
		{
			name:       "exclusion keyword",
			bid:        models.Bid{Title: "홍보 포털 시스템구축 용역", Deadline: "2026-04-01"},
			wantReason: "exclusion keyword: 시스템구축",
		},
		{
			name:       "budget below floor",
			bid:        models.Bid{Title: "브랜드마케팅 전략 수립", Budget: 29_999_999},
			wantReason: "budget below floor: 29999999",
		},
		{
			name:       "no domain match",
			bid:        models.Bid{Title: "청사 주변 가로수 식재 사업", Budget: 80_000_000},
			wantReason: "no capability domain matched",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.bid, rt, testNow)
			if got.Relevant {
				t.Fatalf("Relevant = true, want excluded")
			}
			if got.ExclusionReason != tt.wantReason {
				t.Errorf("ExclusionReason = %q, want %q", got.ExclusionReason, tt.wantReason)
			}
			if got.Grade != GradeD || got.Total != 0 {
				t.Errorf("excluded bid graded %s/%d, want D/0", got.Grade, got.Total)
			}
		})
	}
}

func TestScoreKeepsPermissiveEdges(t *testing.T) {
	rt := loadTestRules(t)

	tests := []struct {
		name string
		bid  models.Bid
	}{
		{"deadline today", models.Bid{Title: "브랜드마케팅 전략 수립", Deadline: "2026-03-10"}},
		{"no deadline", models.Bid{Title: "브랜드마케팅 전략 수립"}},
		{"unparsable deadline", models.Bid{Title: "브랜드마케팅 전략 수립", Deadline: "추후공고"}},
		{"unknown budget", models.Bid{Title: "브랜드마케팅 전략 수립", Budget: 0}},
		{"budget at floor", models.Bid{Title: "브랜드마케팅 전략 수립", Budget: 30_000_000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.bid, rt, testNow)
			if !got.Relevant {
				t.Errorf("excluded (%s), want relevant", got.ExclusionReason)
			}
		})
	}
}

func TestScoreDomainTiers(t *testing.T) {
	rt := loadTestRules(t)

	tests := []struct {
		name       string
		title      string
		wantDomain string
		wantScore  int
	}{
		{
			name:       "three or more hits take the full tier",
			title:      "소상공인 판로개척 유통채널 입점지원 사업",
			wantDomain: "유통판로개척",
			wantScore:  60,
		},
		{
			name:       "two hits take the partial tier",
			title:      "지역특산물 유통채널 입점지원 안내",
			wantDomain: "유통판로개척",
			wantScore:  54,
		},
		{
			name:       "one hit takes the marginal tier",
			title:      "농산물 판로 확보 방안",
			wantDomain: "유통판로개척",
			wantScore:  48,
		},
		{
			name:       "tie goes to the first domain in the table",
			title:      "브랜드마케팅 전략 수립",
			wantDomain: "브랜드전략",
			wantScore:  52,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(models.Bid{Title: tt.title, Budget: 80_000_000}, rt, testNow)
			if !got.Relevant {
				t.Fatalf("excluded: %s", got.ExclusionReason)
			}
			if got.Domain != tt.wantDomain || got.DomainScore != tt.wantScore {
				t.Errorf("domain = %s/%d, want %s/%d", got.Domain, got.DomainScore, tt.wantDomain, tt.wantScore)
			}
		})
	}
}

func TestScoreComponentsEndToEnd(t *testing.T) {
	rt := loadTestRules(t)

	bid := models.Bid{
		Title:    "소상공인 판로개척 유통채널 입점지원 사업",
		Agency:   "중소기업유통센터",
		Budget:   80_000_000,
		Deadline: "2026-04-01",
	}
	got := Score(bid, rt, testNow)
	if !got.Relevant {
		t.Fatalf("excluded: %s", got.ExclusionReason)
	}
	if got.DomainScore != 60 {
		t.Errorf("DomainScore = %d, want 60", got.DomainScore)
	}
	if got.IndustryScore != 15 {
		t.Errorf("IndustryScore = %d, want 15", got.IndustryScore)
	}
	if got.ScaleScore != 9 {
		t.Errorf("ScaleScore = %d, want 9", got.ScaleScore)
	}
	// 중소기업유통센터 is in the partner alias map.
	if got.CompetitionScore != 7 {
		t.Errorf("CompetitionScore = %d, want 7", got.CompetitionScore)
	}
	if got.Penalty != 0 {
		t.Errorf("Penalty = %d, want 0", got.Penalty)
	}
	if got.Total != 91 || got.Grade != GradeS {
		t.Errorf("total = %d/%s, want 91/S", got.Total, got.Grade)
	}
}

func TestScorePenaltyLayers(t *testing.T) {
	rt := loadTestRules(t)

	tests := []struct {
		name        string
		bid         models.Bid
		wantPenalty int
	}{
		{
			name:        "operation penalty mitigated by strategic context, once",
			bid:         models.Bid{Title: "마케팅 전략 수립 및 운영용역", Budget: 80_000_000},
			wantPenalty: -7,
		},
		{
			name:        "execution without strategy takes the full second-layer penalty",
			bid:         models.Bid{Title: "SNS 운영 대행", Budget: 80_000_000},
			wantPenalty: -15,
		},
		{
			name:        "strategy word inside the agency name does not count",
			bid:         models.Bid{Title: "마케팅진흥원 SNS 운영 대행", Agency: "마케팅진흥원", Budget: 80_000_000},
			wantPenalty: -15,
		},
		{
			name:        "strategic word inside the agency name does not mitigate the table penalty",
			bid:         models.Bid{Title: "마케팅진흥원 브랜딩 운영용역", Agency: "마케팅진흥원", Budget: 80_000_000},
			wantPenalty: -30,
		},
		{
			name:        "execution with real strategy context takes the mitigated penalty",
			bid:         models.Bid{Title: "SNS 운영 전략 컨설팅", Budget: 80_000_000},
			wantPenalty: -7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.bid, rt, testNow)
			if !got.Relevant {
				t.Fatalf("excluded: %s", got.ExclusionReason)
			}
			if got.Penalty != tt.wantPenalty {
				t.Errorf("Penalty = %d, want %d", got.Penalty, tt.wantPenalty)
			}
		})
	}
}

func TestIndustryScoreChecksFieldsSeparately(t *testing.T) {
	rt := loadTestRules(t)

	// "식품" split across the title/agency boundary must not match.
	if got := industryScore(normTitle("브랜드개발 지원 한식"), normTitle("품질재단"), rt.Industry); got != 5 {
		t.Errorf("cross-boundary: industryScore = %d, want floor 5", got)
	}
	if got := industryScore(normTitle("식품 브랜드개발 지원"), normTitle(""), rt.Industry); got != 15 {
		t.Errorf("title match: industryScore = %d, want 15", got)
	}
	if got := industryScore(normTitle("브랜드개발 지원"), normTitle("한국식품산업협회"), rt.Industry); got != 15 {
		t.Errorf("agency match: industryScore = %d, want 15", got)
	}
}

func TestScoreTrendBonusFiresOnce(t *testing.T) {
	rt := loadTestRules(t)

	bid := models.Bid{Title: "AI활용 인공지능 브랜드마케팅 전략 수립", Budget: 80_000_000}
	got := Score(bid, rt, testNow)
	if !got.Relevant {
		t.Fatalf("excluded: %s", got.ExclusionReason)
	}
	if got.TrendBonus != rt.AIBonusScore {
		t.Errorf("TrendBonus = %d, want %d", got.TrendBonus, rt.AIBonusScore)
	}
}

func TestScoreDeterministic(t *testing.T) {
	rt := loadTestRules(t)

	bid := models.Bid{
		Title:    "AI활용 소상공인 브랜드개발 및 마케팅전략 수립",
		Agency:   "소상공인시장진흥공단",
		Budget:   150_000_000,
		Deadline: "2026-05-01",
	}
	a := Score(bid, rt, testNow)
	b := Score(bid, rt, testNow)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated Score calls differ:\n%+v\n%+v", a, b)
	}
}

func TestScoreTotalBounds(t *testing.T) {
	rt := loadTestRules(t)

	titles := []string{
		"AI활용 소상공인 브랜드개발 브랜딩 리브랜딩 마케팅전략 수립",
		"SNS 운영 대행",
		"농산물 판로 확보 방안",
		"행사대행 및 채널운영 운영용역",
	}
	for _, title := range titles {
		got := Score(models.Bid{Title: title, Budget: 80_000_000}, rt, testNow)
		if got.Total < 0 || got.Total > 100 {
			t.Errorf("%q: total %d out of [0,100]", title, got.Total)
		}
		if got.Relevant == (got.ExclusionReason != "") {
			t.Errorf("%q: relevant=%v with reason=%q", title, got.Relevant, got.ExclusionReason)
		}
	}
}

func TestApplyAdjustment(t *testing.T) {
	rt := loadTestRules(t)

	base := Score(models.Bid{
		Title:  "소상공인 판로개척 유통채널 입점지원 사업",
		Agency: "중소기업유통센터",
		Budget: 80_000_000,
	}, rt, testNow) // total 91

	up := ApplyAdjustment(base, rt, 20, "적합", "core capability match")
	if up.Total != 100 || up.Grade != GradeS {
		t.Errorf("upward: total = %d/%s, want 100/S", up.Total, up.Grade)
	}
	down := ApplyAdjustment(base, rt, -30, "부적합", "execution-heavy scope")
	if down.Total != 61 || down.Grade != GradeB {
		t.Errorf("downward: total = %d/%s, want 61/B", down.Total, down.Grade)
	}
	if base.Adjustment != 0 || base.Total != 91 {
		t.Errorf("ApplyAdjustment mutated its input: %+v", base)
	}

	excluded := Score(models.Bid{Title: "청소용역 발주", Budget: 80_000_000}, rt, testNow)
	if got := ApplyAdjustment(excluded, rt, 50, "적합", ""); got.Total != 0 || got.Grade != GradeD {
		t.Errorf("adjustment applied to excluded bid: %+v", got)
	}
}

func TestGradeMonotone(t *testing.T) {
	rt := loadTestRules(t)

	rank := map[string]int{GradeC: 0, GradeB: 1, GradeA: 2, GradeS: 3}
	prev := GradeC
	for total := 0; total <= 100; total++ {
		g := gradeFor(total, rt.Grades)
		if rank[g] < rank[prev] {
			t.Fatalf("grade dropped from %s to %s at total %d", prev, g, total)
		}
		prev = g
	}
	if gradeFor(80, rt.Grades) != GradeS || gradeFor(79, rt.Grades) != GradeA {
		t.Error("S boundary off")
	}
	if gradeFor(65, rt.Grades) != GradeA || gradeFor(64, rt.Grades) != GradeB {
		t.Error("A boundary off")
	}
	if gradeFor(55, rt.Grades) != GradeB || gradeFor(54, rt.Grades) != GradeC {
		t.Error("B boundary off")
	}
}
