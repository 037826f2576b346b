package content

import "math"

// Ratio computes comments/upvotes rounded to two decimal places.
// upvotes <= 0 yields 0.00 so the division can never blow up; the badge
// still renders, tagged as neutral.
func Ratio(comments, upvotes int) float64 {
	if upvotes <= 0 {
		return 0
	}
	return math.Round(float64(comments)/float64(upvotes)*100) / 100
}

// Tier is the emphasis level of a ratio badge.
type Tier string

const (
	// TierHighSignal marks a high-upvote, low-discussion item — a quality
	// heuristic. It outranks every ratio-based tier.
	TierHighSignal Tier = "high-signal"
	// TierControversy marks more comments than upvotes.
	TierControversy Tier = "high-controversy"
	TierElevated    Tier = "elevated"
	TierModerate    Tier = "moderate"
	TierNeutral     Tier = "neutral"
)

// SelectTier maps (upvotes, ratio) to exactly one Tier. Predicates are
// ordered, first match wins; the mapping is total.
func SelectTier(upvotes int, ratio float64) Tier {
	switch {
	case upvotes >= 500 && ratio < 0.10:
		return TierHighSignal
	case ratio > 1.0:
		return TierControversy
	case ratio > 0.5:
		return TierElevated
	case ratio > 0.25:
		return TierModerate
	default:
		return TierNeutral
	}
}
