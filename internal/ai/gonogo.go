package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/wkmg/rfp-radar/internal/models"
)

// GoNoGoReport is the structured bid/no-bid recommendation produced for a
// shortlisted announcement, informed by the firm's past proposal archive.
type GoNoGoReport struct {
	Decision   string   `json:"decision"` // "go", "conditional-go", or "no-go"
	Confidence int      `json:"confidence"`
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Risks      []string `json:"risks"`
}

const goNoGoSystemPrompt = `You are a bid strategist for a Korean marketing consultancy deciding whether
to pursue a public-procurement opportunity. You are given the announcement and
excerpts from the firm's most similar past proposals. Weigh capability fit,
past-work evidence, and delivery risk.`

const goNoGoUserPromptFmt = `Announcement:
- Title: %s
- Agency: %s
- Budget: %s
- Deadline: %s

Most similar past proposal excerpts:
%s

Return ONLY a JSON object:
{"decision": "go" | "conditional-go" | "no-go",
 "confidence": <integer 0..100>,
 "summary": "<2-3 sentences in Korean>",
 "strengths": ["..."],
 "risks": ["..."]}`

// AnalyzeGoNoGo produces a go/no-go report for one bid given snippets from
// the most similar past proposals. Snippets may be empty; the model is then
// judging on the announcement alone.
func (c *OpenAIClient) AnalyzeGoNoGo(ctx context.Context, bid models.Bid, snippets []string) (*GoNoGoReport, error) {
	excerpts := "(no similar past work found)"
	if len(snippets) > 0 {
		var b strings.Builder
		for i, s := range snippets {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, s)
		}
		excerpts = b.String()
	}
	deadline := bid.Deadline
	if deadline == "" {
		deadline = "unknown"
	}
	user := fmt.Sprintf(goNoGoUserPromptFmt, bid.Title, bid.Agency, bid.BudgetLabel(), deadline, excerpts)

	var report GoNoGoReport
	if err := c.CompleteJSON(ctx, goNoGoSystemPrompt, user, &report); err != nil {
		return nil, fmt.Errorf("go/no-go analysis for %q: %w", bid.Title, err)
	}
	switch report.Decision {
	case "go", "conditional-go", "no-go":
	default:
		return nil, fmt.Errorf("go/no-go analysis for %q: unknown decision %q", bid.Title, report.Decision)
	}
	return &report, nil
}
