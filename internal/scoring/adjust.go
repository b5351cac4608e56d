package scoring

// ApplyAdjustment folds a secondary AI evaluation into an existing result.
// The adjustment is added on top of the already-clamped total, then the sum
// is clamped and graded again. Irrelevant results are returned unchanged.
func ApplyAdjustment(res ScoreResult, rt *RuleTables, adjustment int, verdict, reason string) ScoreResult {
	if !res.Relevant {
		return res
	}
	res.Adjustment = adjustment
	res.Verdict = verdict
	res.AdjustmentReason = reason
	res.Total = clamp(res.Total + adjustment)
	res.Grade = gradeFor(res.Total, rt.Grades)
	return res
}
