package heuristic

import "intentional/internal/types"

// Narrative band thresholds, inclusive lower bounds.
const (
	BandStrong   = 8.0
	BandGood     = 6.0
	BandModerate = 4.0
)

// narratives holds the four band sentences per dimension, strongest first.
var narratives = map[types.Dimension][4]string{
	types.Desirable: {
		"Your free model offers highly desirable value to users, effectively showcasing your product's strengths.",
		"Your free model provides good value, but could be enhanced to better highlight your product's unique capabilities.",
		"Your free model offers moderate value but may not fully demonstrate what makes your product special.",
		"Your free model may need significant improvement to offer compelling value to users.",
	},
	types.Effective: {
		"Your free model effectively solves key user challenges, helping them achieve meaningful outcomes.",
		"Your free model addresses some important user challenges but may miss certain critical needs.",
		"Your free model partially solves user challenges but falls short of delivering complete solutions.",
		"Your free model may need to be redesigned to better address the core problems your users face.",
	},
	types.Efficient: {
		"Users can quickly and easily experience value from your free model with minimal friction.",
		"Your free model delivers value relatively efficiently, though there may be some friction points.",
		"Users face moderate friction when trying to extract value from your free model.",
		"Your free model may have significant friction points that prevent users from experiencing value quickly.",
	},
	types.Polished: {
		"Your free model appears highly intentional with clear goals, metrics, and a well-crafted user experience.",
		"Your free model shows good intentionality but could benefit from more strategic alignment and refinement.",
		"Your free model shows some intentionality but lacks a cohesive strategy and clear success metrics.",
		"Your free model appears to lack intentionality and may benefit from a more strategic, goal-oriented approach.",
	},
}

func band(score float64) int {
	switch {
	case score >= BandStrong:
		return 0
	case score >= BandGood:
		return 1
	case score >= BandModerate:
		return 2
	default:
		return 3
	}
}

// Narrative returns the band sentence for a dimension score.
func Narrative(dim types.Dimension, score float64) string {
	return narratives[dim][band(score)]
}
