package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wkmg/rfp-radar/internal/models"
)

// FitEvaluation is the secondary review of a high-scoring bid: a verdict,
// a score adjustment in [-20, +20], and a one-line reason.
type FitEvaluation struct {
	Verdict    string `json:"verdict"` // "fit", "partial", or "unfit"
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

const fitSystemPrompt = `You review Korean public-procurement announcements for a marketing consultancy.
The firm's core services: brand strategy, product commercialization, distribution
channel strategy, and marketing communication strategy. It does NOT do pure
execution work (event operation, SNS account management, logistics, IT builds).
Judge whether the announcement is strategy/consulting work the firm should bid on.`

const fitUserPromptFmt = `Announcement title: %s
Agency: %s
Budget: %s
Keyword score so far: %d

Return ONLY a JSON object:
{"verdict": "fit" | "partial" | "unfit", "adjustment": <integer -20..20>, "reason": "<one short sentence in Korean>"}

Raise the adjustment for clear strategy/consulting scope, lower it for
execution-heavy or out-of-domain scope. No markdown, no explanation.`

// EvaluateBidFit asks the model for a second opinion on a bid that already
// cleared the keyword-score threshold. The adjustment is clamped to the
// documented range before it is returned.
func (c *OpenAIClient) EvaluateBidFit(ctx context.Context, bid models.Bid, keywordScore int) (*FitEvaluation, error) {
	user := fmt.Sprintf(fitUserPromptFmt, bid.Title, bid.Agency, bid.BudgetLabel(), keywordScore)

	text, err := c.Complete(ctx, fitSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("fit evaluation: %w", err)
	}
	eval, err := ParseFitEvaluation(text)
	if err != nil {
		return nil, fmt.Errorf("fit evaluation for %q: %w", bid.Title, err)
	}
	return eval, nil
}

// ParseFitEvaluation decodes a model reply into a FitEvaluation, tolerating
// surrounding prose and clamping the adjustment.
func ParseFitEvaluation(text string) (*FitEvaluation, error) {
	raw := ExtractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON in reply")
	}
	var eval FitEvaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	switch eval.Verdict {
	case "fit", "partial", "unfit":
	default:
		return nil, fmt.Errorf("unknown verdict %q", eval.Verdict)
	}
	if eval.Adjustment > 20 {
		eval.Adjustment = 20
	}
	if eval.Adjustment < -20 {
		eval.Adjustment = -20
	}
	return &eval, nil
}
