package heuristic

import (
	"slices"

	"intentional/internal/types"
)

// Finding counts.
const (
	MinFindings = 3
	MaxFindings = 5
)

const (
	findingLowDesirable     = "Your free model may not offer enough value to attract and engage users effectively."
	findingSlowValue        = "Users take too long to experience value from your free model, risking abandonment."
	findingLowConversion    = "Your free-to-paid conversion rate suggests the free model isn't effectively demonstrating premium value."
	findingOptOutFriction   = "Your opt-out free trial creates friction that may be deterring potential users from experiencing your product."
	findingTooManyFeatures  = "Your free model may include too many features without focusing on solving core user challenges."
	findingLowPolish        = "Your free model lacks intentionality and could benefit from a more strategic approach."
	findingHighPerformer    = "Your free model performs well across all dimensions, showing high intentionality and effectiveness."
	findingEfficientNotDeep = "Your free model delivers value efficiently but may not be solving the most important user challenges."
	findingAttractiveNoPlan = "Your free model offers attractive value but lacks strategic cohesion and clear success metrics."
)

// checklist applies the finding rules in priority order. Rules that depend
// on an answer never fire when a is empty.
func checklist(a answers, s types.Scores) []string {
	var out []string
	if s.Desirable < 5 {
		out = append(out, findingLowDesirable)
	}
	switch a.text(QTimeToValue) {
	case TTVSlow, TTVVerySlow:
		out = append(out, findingSlowValue)
	}
	switch a.text(QConversionRate) {
	case ConvUnder1, Conv1to3:
		out = append(out, findingLowConversion)
	}
	if a.text(QCurrentFreeModel) == OptOutTrial && s.Efficient < 6 {
		out = append(out, findingOptOutFriction)
	}
	if commaCount(a.text(QFreeFeatures)) > 10 && s.Effective < 7 {
		out = append(out, findingTooManyFeatures)
	}
	if s.Polished < 5 {
		out = append(out, findingLowPolish)
	}
	if s.Desirable >= 7 && s.Effective >= 7 && s.Efficient >= 7 && s.Polished >= 7 {
		out = append(out, findingHighPerformer)
	}
	if len(out) < MinFindings {
		if s.Efficient > s.Effective+2 {
			out = append(out, findingEfficientNotDeep)
		}
		if s.Desirable > s.Polished+2 {
			out = append(out, findingAttractiveNoPlan)
		}
	}
	return out
}

// TopUp appends the band narratives of the lowest-scoring dimensions until
// findings holds at least MinFindings entries. Ties keep report order.
func TopUp(findings []string, s types.Scores) []string {
	if len(findings) >= MinFindings {
		return findings
	}
	dims := slices.Clone(types.Dimensions)
	slices.SortStableFunc(dims, func(a, b types.Dimension) int {
		switch sa, sb := s.Get(a), s.Get(b); {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})
	for _, d := range dims {
		if len(findings) >= MinFindings {
			break
		}
		n := Narrative(d, s.Get(d))
		if !slices.Contains(findings, n) {
			findings = append(findings, n)
		}
	}
	return findings
}

// ScoreFindings runs the score-only rules of the checklist over a set of
// dimension scores, topped up to MinFindings and capped at MaxFindings.
func ScoreFindings(s types.Scores) []string {
	return finish(checklist(nil, s), s)
}

// KeyFindings derives the findings of a quiz submission.
func KeyFindings(list []types.QuizAnswer, s types.Scores) []string {
	return finish(checklist(index(list), s), s)
}

func finish(findings []string, s types.Scores) []string {
	if len(findings) > MaxFindings {
		findings = findings[:MaxFindings]
	}
	return TopUp(findings, s)
}
