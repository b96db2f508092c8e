package heuristic

import (
	"strings"

	"intentional/internal/types"
)

// usageKeywords mark products whose value is naturally metered.
var usageKeywords = []string{"storage", "credits", "volume", "usage", "limit"}

// keepCurrentAbove is the mean score above which a working model is kept.
const keepCurrentAbove = 7.0

// RecommendModel runs the model decision tree. Later rules override earlier
// ones; a metered product description always wins.
func RecommendModel(list []types.QuizAnswer, s types.Scores) string {
	return recommend(index(list), s)
}

func recommend(a answers, s types.Scores) string {
	model := OptInTrial
	switch a.text(QTimeToValue) {
	case TTVSlow, TTVVerySlow:
		model = FreemiumPlan
	case TTVModerate:
		model = UsageTrial
	}
	if s.Efficient < 4 || s.Desirable < 4 {
		model = FreemiumPlan
	}
	if current := a.text(QCurrentFreeModel); current != "" && Mean(s) > keepCurrentAbove {
		model = current
	}
	if mentionsUsage(a.text(QProductDescription)) {
		model = UsageTrial
	}
	return model
}

func mentionsUsage(desc string) bool {
	desc = strings.ToLower(desc)
	for _, kw := range usageKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
