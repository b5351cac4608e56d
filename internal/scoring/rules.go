package scoring

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/rules.yaml
var rulesYAML []byte

// DomainRule is one capability domain with tiered scores: Full applies at
// three or more keyword hits, Partial at exactly two, Marginal at one.
type DomainRule struct {
	Name     string   `yaml:"name"`
	Full     int      `yaml:"full"`
	Partial  int      `yaml:"partial"`
	Marginal int      `yaml:"marginal"`
	Keywords []string `yaml:"keywords"`
}

type IndustryRule struct {
	Keyword string `yaml:"keyword"`
	Score   int    `yaml:"score"`
}

type PenaltyRule struct {
	Keyword string `yaml:"keyword"`
	Points  int    `yaml:"points"`
}

type GradeThresholds struct {
	S int `yaml:"s"`
	A int `yaml:"a"`
	B int `yaml:"b"`
}

// RuleTables holds every table the scorer consults. Loaded once at startup
// and treated as immutable afterwards; Score never mutates it.
type RuleTables struct {
	MinBudget      int64 `yaml:"min_budget"`
	PriorityBudget int64 `yaml:"priority_budget"`
	FitThreshold   int   `yaml:"fit_threshold"`
	AIBonusScore   int   `yaml:"ai_bonus_score"`

	Grades GradeThresholds `yaml:"grade_thresholds"`

	Exclusions      []string       `yaml:"exclusions"`
	Domains         []DomainRule   `yaml:"domains"`
	AIBonusKeywords []string       `yaml:"ai_bonus_keywords"`
	Industry        []IndustryRule `yaml:"industry"`
	Penalties       []PenaltyRule  `yaml:"penalties"`

	OperationPenaltyKeywords []string `yaml:"operation_penalty_keywords"`
	StrategicExemptionWords  []string `yaml:"strategic_exemption_words"`
	StrategyWords            []string `yaml:"strategy_words"`
	ExecutionWords           []string `yaml:"execution_words"`

	MitigatedPenalty     int `yaml:"mitigated_penalty"`
	ExecutionOnlyPenalty int `yaml:"execution_only_penalty"`

	PartnerAliasMap map[string][]string `yaml:"partner_aliases"`

	partnerAliases []string
}

// LoadRules parses the embedded rule tables and expands the partner alias
// set from the agencies flagged as partners in the site registry.
func LoadRules(partnerAgencies []string) (*RuleTables, error) {
	var rt RuleTables
	if err := yaml.Unmarshal(rulesYAML, &rt); err != nil {
		return nil, fmt.Errorf("parse rules config: %w", err)
	}
	if rt.MinBudget <= 0 || rt.PriorityBudget <= rt.MinBudget {
		return nil, fmt.Errorf("rules config: budget thresholds out of order (min=%d priority=%d)", rt.MinBudget, rt.PriorityBudget)
	}
	if len(rt.Domains) == 0 {
		return nil, fmt.Errorf("rules config: no capability domains defined")
	}
	for _, d := range rt.Domains {
		if d.Name == "" || len(d.Keywords) == 0 {
			return nil, fmt.Errorf("rules config: domain %q has no keywords", d.Name)
		}
	}
	rt.partnerAliases = BuildPartnerAliases(partnerAgencies, rt.PartnerAliasMap)
	return &rt, nil
}

// orgSuffixes are organizational-name endings that agencies commonly drop in
// announcement text ("한국관광공사" appearing as "한국관광공사 서울지사" etc.).
var orgSuffixes = []string{"진흥원", "공단", "공사", "센터", "재단", "청", "원"}

// BuildPartnerAliases expands partner agency names into a match list: the
// name itself, the name with a trailing organizational suffix removed,
// parenthetical short forms, and any hand-maintained aliases.
func BuildPartnerAliases(names []string, aliasMap map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = normalizeKey(s)
		if len([]rune(s)) < 2 {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	expand := func(name string) {
		add(name)
		// "한국디자인진흥원(KIDP)" -> base name plus the short form inside.
		if i := strings.Index(name, "("); i > 0 {
			add(name[:i])
			if j := strings.Index(name[i:], ")"); j > 1 {
				add(name[i+1 : i+j])
			}
			name = strings.TrimSpace(name[:i])
		}
		for _, suf := range orgSuffixes {
			if base, ok := strings.CutSuffix(name, suf); ok {
				add(base)
				break
			}
		}
	}

	for _, n := range names {
		expand(n)
		for _, a := range aliasMap[n] {
			add(a)
		}
	}
	for n, aliases := range aliasMap {
		expand(n)
		for _, a := range aliases {
			add(a)
		}
	}
	return out
}

// IsPartner reports whether the agency matches any expanded partner alias.
// Both sides are compared whitespace-stripped so spacing differences between
// sources do not break the match.
func (rt *RuleTables) IsPartner(agency string) bool {
	key := normalizeKey(agency)
	if key == "" {
		return false
	}
	for _, a := range rt.partnerAliases {
		if strings.Contains(key, a) {
			return true
		}
	}
	return false
}

// normalizeKey strips all whitespace and lowercases ASCII so keyword and
// alias matching is insensitive to spacing and case.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), "")
}
