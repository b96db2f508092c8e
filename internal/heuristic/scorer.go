package heuristic

import "intentional/internal/types"

const (
	baseScore = 5.0
	minScore  = 1.0
	maxScore  = 10.0
)

var desirableTTV = map[string]float64{
	TTVImmediate: 2,
	TTVQuick:     1.5,
	TTVModerate:  0,
	TTVSlow:      -1,
	TTVVerySlow:  -2,
}

var efficientTTV = map[string]float64{
	TTVImmediate: 3,
	TTVQuick:     2,
	TTVModerate:  0,
	TTVSlow:      -1,
	TTVVerySlow:  -2.5,
}

var conversionAdjust = map[string]float64{
	ConvUnder1:  -1,
	Conv1to3:    0,
	Conv3to5:    1,
	Conv5to10:   2,
	ConvOver10:  3,
	ConvUnknown: 0,
}

var modelAdjust = map[string]float64{
	OptInTrial:   0.5,
	OptOutTrial:  -0.5,
	UsageTrial:   1,
	FreemiumPlan: 1.5,
	NoFreeOffer:  -3,
}

func clamp(score float64) float64 {
	return max(minScore, min(maxScore, score))
}

func desirableScore(a answers) float64 {
	score := baseScore
	if a.text(QCurrentFreeModel) == NoFreeOffer {
		score -= 3
	}
	score += desirableTTV[a.text(QTimeToValue)]
	if n := commaCount(a.text(QFreeFeatures)); n > 5 {
		score++
		if n > 10 {
			score += 0.5
		}
	}
	return clamp(score)
}

func effectiveScore(a answers) float64 {
	score := baseScore
	score += conversionAdjust[a.text(QConversionRate)]

	challenges, features := a.text(QBeginnerChallenges), a.text(QFreeFeatures)
	if challenges != "" && features != "" {
		switch n := overlap(wordSet(challenges), wordSet(features)); {
		case n > 3:
			score += 1.5
		case n > 0:
			score += 0.5
		}
	}
	if commaCount(a.text(QFreeLimitations)) > 5 {
		score--
	}
	return clamp(score)
}

func efficientScore(a answers) float64 {
	score := baseScore
	score += efficientTTV[a.text(QTimeToValue)]
	score += modelAdjust[a.text(QCurrentFreeModel)]
	return clamp(score)
}

func polishedScore(a answers) float64 {
	score := baseScore
	if rating, ok := a.number(QIntentionalRating); ok {
		score += (rating - 5) / 2
	}
	switch n := commaCount(a.text(QKeyMetrics)); {
	case n > 3:
		score += 1.5
	case n > 0:
		score += 0.5
	}
	if n, ok := a.list(QMainGoals); ok && n >= 2 {
		score++
	}
	return clamp(score)
}

// Score computes the four clamped dimension scores of a quiz submission.
func Score(list []types.QuizAnswer) types.Scores {
	a := index(list)
	return scores(a)
}

func scores(a answers) types.Scores {
	return types.Scores{
		Desirable: desirableScore(a),
		Effective: effectiveScore(a),
		Efficient: efficientScore(a),
		Polished:  polishedScore(a),
	}
}

// Mean is the unweighted legacy overall score.
func Mean(s types.Scores) float64 {
	return (s.Desirable + s.Effective + s.Efficient + s.Polished) / 4
}
