package heuristic

import "intentional/internal/types"

// Question is one entry of the legacy quiz.
type Question struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Type      string          `json:"type"`
	Options   []string        `json:"options,omitempty"`
	Dimension types.Dimension `json:"dimension"`
	Required  bool            `json:"required"`
}

// Question input types.
const (
	QuestionSelect      = "select"
	QuestionMultiSelect = "multiselect"
	QuestionText        = "text"
	QuestionRating      = "rating"
)

// Questions returns the legacy quiz in presentation order.
func Questions() []Question {
	return []Question{
		{
			ID:   QCurrentFreeModel,
			Text: "What type of free model do you currently offer?",
			Type: QuestionSelect,
			Options: []string{
				NoFreeOffer,
				"Freemium (Feature-limited free version)",
				"Free Trial (Time-limited access)",
				"Usage-Based (Free up to certain limits)",
				"Community Edition",
				"Open Core",
				"Other",
			},
			Dimension: types.Desirable,
			Required:  true,
		},
		{
			ID:        QProductDescription,
			Text:      "Describe your product and who it is for.",
			Type:      QuestionText,
			Dimension: types.Desirable,
			Required:  true,
		},
		{
			ID:        QTimeToValue,
			Text:      "How long does it take a new user to experience your product's core value?",
			Type:      QuestionSelect,
			Options:   []string{TTVImmediate, TTVQuick, TTVModerate, TTVSlow, TTVVerySlow},
			Dimension: types.Efficient,
			Required:  true,
		},
		{
			ID:        QFreeFeatures,
			Text:      "Which features are included in your free offering? Separate them with commas.",
			Type:      QuestionText,
			Dimension: types.Desirable,
		},
		{
			ID:        QFreeLimitations,
			Text:      "What limitations does the free offering have? Separate them with commas.",
			Type:      QuestionText,
			Dimension: types.Effective,
		},
		{
			ID:        QBeginnerChallenges,
			Text:      "What challenges do beginners face when they start using your product?",
			Type:      QuestionText,
			Dimension: types.Effective,
		},
		{
			ID:        QConversionRate,
			Text:      "What is your free-to-paid conversion rate?",
			Type:      QuestionSelect,
			Options:   []string{ConvUnder1, Conv1to3, Conv3to5, Conv5to10, ConvOver10, ConvUnknown},
			Dimension: types.Effective,
			Required:  true,
		},
		{
			ID:        QIntentionalRating,
			Text:      "On a scale of 1-10, how intentionally designed is your free model?",
			Type:      QuestionRating,
			Dimension: types.Polished,
		},
		{
			ID:        QKeyMetrics,
			Text:      "Which metrics do you track for the free model? Separate them with commas.",
			Type:      QuestionText,
			Dimension: types.Polished,
		},
		{
			ID:   QMainGoals,
			Text: "What are the main goals of your free model?",
			Type: QuestionMultiSelect,
			Options: []string{
				"Acquire new users",
				"Convert users to paid plans",
				"Build brand awareness",
				"Create network effects",
				"Gather product feedback",
			},
			Dimension: types.Polished,
		},
	}
}
