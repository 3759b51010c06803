// Package loyalty computes client loyalty scores, tiers and the
// message-category routing derived from them. Everything here is a pure
// function over its arguments so callers can use it from any goroutine.
package loyalty

// Score weights. 50% visits + 30% nights + 20% engagement, capped at 100.
const (
	visitWeight    = 10
	visitCap       = 50
	nightWeight    = 2
	nightCap       = 30
	engagementFull = 20
	engagementBase = 10
	maxScore       = 100
)

// Tier labels derived from the score.
const (
	TierVIP     = "VIP"
	TierLoyal   = "Fidèle"
	TierNew     = "Nouveau"
	vipFloor    = 70
	loyalFloor  = 40
	repeatBonus = 10
)

// Score computes the bounded [0,100] loyalty score from stay aggregates and
// the engagement signal. Negative counters are treated as zero so malformed
// upstream rows can never push the score out of range.
func Score(totalStays, totalNights int, hasEmail bool) int {
	if totalStays < 0 {
		totalStays = 0
	}
	if totalNights < 0 {
		totalNights = 0
	}

	visits := min(totalStays*visitWeight, visitCap)
	nights := min(totalNights*nightWeight, nightCap)
	engagement := engagementBase
	if hasEmail {
		engagement = engagementFull
	}

	return min(visits+nights+engagement, maxScore)
}

// RepeatScore bumps an existing score by the flat returning-visit bonus,
// capped at 100. Used when a registration is detected as a returning client.
func RepeatScore(previous int) int {
	if previous < 0 {
		previous = 0
	}
	return min(previous+repeatBonus, maxScore)
}

// TierFor classifies a score into a tier, evaluated high to low.
func TierFor(score int) string {
	switch {
	case score >= vipFloor:
		return TierVIP
	case score >= loyalFloor:
		return TierLoyal
	default:
		return TierNew
	}
}
