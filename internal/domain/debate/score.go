package debate

import "math"

// DefaultMinimumScore filters near-zero matches out of search results
const DefaultMinimumScore = 0.001

// Relevance classes attached to gallery cards in search mode
const (
	RelevanceHigh    = "high-match"
	RelevanceMedium  = "medium-match"
	RelevanceLow     = "low-match"
	RelevanceNoMatch = "no-match"
)

// Badge classes for the percentage badge
const (
	BadgeHigh    = "high"
	BadgeMedium  = "medium"
	BadgeLow     = "low"
	BadgeNoMatch = "no-match"
)

// RelevanceClass maps a raw score in [0,1] to a card class
func RelevanceClass(score float64) string {
	switch {
	case score > 0.8:
		return RelevanceHigh
	case score > 0.5:
		return RelevanceMedium
	case score > 0:
		return RelevanceLow
	default:
		return RelevanceNoMatch
	}
}

// Percent rounds a score to a whole percentage (half away from zero)
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// BadgeClass maps a rounded percentage to a badge class
func BadgeClass(percent int) string {
	switch {
	case percent > 70:
		return BadgeHigh
	case percent > 40:
		return BadgeMedium
	default:
		return BadgeLow
	}
}

// AnyScored reports whether at least one debate carries a nonzero score
func AnyScored(debates []Debate) bool {
	for i := range debates {
		if debates[i].Score > 0 {
			return true
		}
	}
	return false
}

// CountScored returns how many debates carry a nonzero score
func CountScored(debates []Debate) int {
	n := 0
	for i := range debates {
		if debates[i].Score > 0 {
			n++
		}
	}
	return n
}
