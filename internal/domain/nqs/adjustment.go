package nqs

// maxAdjustmentPct is the swing applied at score 0 or 100.
const maxAdjustmentPct = 6.0

// AdjustmentPercent maps a 0..100 score linearly onto [-6, +6] percent,
// with 50 mapping to exactly zero.
func AdjustmentPercent(score float64) float64 {
	s := clamp(score, 0, 100)
	return (s - 50) / 50 * maxAdjustmentPct
}

// AdjustPrice applies the score-derived percentage to base.
func AdjustPrice(base, score float64) (adjusted, pct float64) {
	pct = AdjustmentPercent(score)
	return base * (1 + pct/100), pct
}
