package heuristic

import (
	"encoding/json"
	"strings"

	"intentional/internal/types"
)

// Question ids read by the scorer.
const (
	QCurrentFreeModel   = "current_free_model"
	QTimeToValue        = "time_to_value"
	QFreeFeatures       = "free_features"
	QFreeLimitations    = "free_limitations"
	QBeginnerChallenges = "beginner_challenges"
	QConversionRate     = "conversion_rate"
	QIntentionalRating  = "intentional_rating"
	QKeyMetrics         = "key_metrics"
	QMainGoals          = "main_goals"
	QProductDescription = "product_description"
)

// Time-to-value buckets.
const (
	TTVImmediate = "Immediately (under 5 minutes)"
	TTVQuick     = "Quick (5-30 minutes)"
	TTVModerate  = "Moderate (30 minutes - 2 hours)"
	TTVSlow      = "Slow (several hours)"
	TTVVerySlow  = "Very slow (days or weeks)"
)

// Conversion-rate buckets.
const (
	ConvUnder1  = "Less than 1%"
	Conv1to3    = "1-3%"
	Conv3to5    = "3-5%"
	Conv5to10   = "5-10%"
	ConvOver10  = "More than 10%"
	ConvUnknown = "I don't know/Not applicable"
)

// Free model names, as answered for current_free_model and as recommended.
const (
	NoFreeOffer  = "None (No free offering)"
	OptInTrial   = "Opt-In Free Trial"
	OptOutTrial  = "Opt-Out Free Trial"
	UsageTrial   = "Usage-Based Free Trial"
	FreemiumPlan = "Freemium"
)

// answers indexes a quiz submission by question id. The first answer for a
// question wins, later duplicates are ignored.
type answers map[string]any

func index(list []types.QuizAnswer) answers {
	out := make(answers, len(list))
	for _, a := range list {
		if _, seen := out[a.QuestionID]; !seen {
			out[a.QuestionID] = a.Answer
		}
	}
	return out
}

func (a answers) has(id string) bool {
	_, ok := a[id]
	return ok
}

// text returns the answer as a string, or "" when absent or not textual.
func (a answers) text(id string) string {
	s, _ := a[id].(string)
	return s
}

// number returns a numeric answer.
func (a answers) number(id string) (float64, bool) {
	switch v := a[id].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// list returns the length of a multi-select answer.
func (a answers) list(id string) (int, bool) {
	switch v := a[id].(type) {
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}

// commaCount counts comma-separated segments, the stand-in for "how many
// features/limitations/metrics were listed". An empty string counts zero.
func commaCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, ",") + 1
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
