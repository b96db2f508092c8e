package types

// AnalysisContext is the read-only context shared by the derived stages.
type AnalysisContext struct {
	ProductDescription string `json:"product_description"`
	TargetAudience     string `json:"target_audience"`
	BusinessGoals      string `json:"business_goals"`
}

// UserJourney describes how users progress through the product.
type UserJourney struct {
	UserEndgame       string              `json:"user_endgame,omitempty"`
	BeginnerStage     string              `json:"beginner_stage,omitempty"`
	IntermediateStage string              `json:"intermediate_stage,omitempty"`
	AdvancedStage     string              `json:"advanced_stage,omitempty"`
	KeyChallenges     map[string][]string `json:"key_challenges,omitempty"`
}

// CurrentModel describes the free model already in place, if any.
type CurrentModel struct {
	CurrentModel   string `json:"current_model,omitempty"`
	CurrentMetrics string `json:"current_metrics,omitempty"`
}

// QuizAnswer is one fixed-choice or free-text answer keyed by question id.
// Answer is a string for most questions, a number for ratings and a list
// for multi-select questions.
type QuizAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     any    `json:"answer"`
}

// Submission is the full input of a generation-backed analysis.
type Submission struct {
	Context           AnalysisContext `json:"context"`
	UserJourney       UserJourney     `json:"user_journey"`
	CurrentModel      *CurrentModel   `json:"current_model,omitempty"`
	StructuredAnswers []QuizAnswer    `json:"structured_answers,omitempty"`
	DeepInputs        DeepInputs      `json:"deep_inputs"`
}

// QuizSubmission is the body of a legacy quiz submission.
type QuizSubmission struct {
	Answers  []QuizAnswer      `json:"answers"`
	UserInfo map[string]string `json:"user_info,omitempty"`
}
