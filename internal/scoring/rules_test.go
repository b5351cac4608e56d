package scoring

import "testing"

func TestLoadRules(t *testing.T) {
	rt, err := LoadRules(nil)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rt.MinBudget != 30_000_000 || rt.PriorityBudget != 50_000_000 {
		t.Errorf("budget thresholds = %d/%d", rt.MinBudget, rt.PriorityBudget)
	}
	if rt.FitThreshold != 55 || rt.AIBonusScore != 5 {
		t.Errorf("fit threshold %d, ai bonus %d", rt.FitThreshold, rt.AIBonusScore)
	}
	if len(rt.Domains) != 4 {
		t.Errorf("got %d domains, want 4", len(rt.Domains))
	}
	if len(rt.Exclusions) == 0 || len(rt.Penalties) == 0 || len(rt.Industry) == 0 {
		t.Error("rule tables incomplete")
	}
}

func TestBuildPartnerAliases(t *testing.T) {
	aliases := BuildPartnerAliases(
		[]string{"한국관광공사", "한국디자인진흥원(KIDP)"},
		map[string][]string{"한국관광공사": {"관광공사"}},
	)
	want := []string{"한국관광공사", "관광공사", "한국관광", "한국디자인진흥원(kidp)", "한국디자인진흥원", "kidp", "한국디자인"}
	set := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		set[a] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			t.Errorf("alias %q missing from %v", w, aliases)
		}
	}
}

func TestIsPartner(t *testing.T) {
	rt, err := LoadRules([]string{"한국관광공사"})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	tests := []struct {
		agency string
		want   bool
	}{
		{"한국관광공사", true},
		{"한국관광공사 서울지사", true},
		{"관광공사", true},
		{"소상공인시장진흥공단", true}, // hand-maintained alias map entry
		{"서울특별시", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := rt.IsPartner(tt.agency); got != tt.want {
			t.Errorf("IsPartner(%q) = %v, want %v", tt.agency, got, tt.want)
		}
	}
}
