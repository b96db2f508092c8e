package types

// Priority, effort and impact levels accepted in implementation steps.
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

// ImplementationStep is one actionable item inside a plan phase.
type ImplementationStep struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        string   `json:"priority"`
	EstimatedEffort string   `json:"estimated_effort"`
	ExpectedImpact  string   `json:"expected_impact"`
	Metrics         []string `json:"metrics"`
}

// ImplementationPlan maps phase names to ordered steps.
type ImplementationPlan struct {
	Phases         map[string][]ImplementationStep `json:"phases"`
	Timeline       string                          `json:"timeline"`
	SuccessMetrics []string                        `json:"success_metrics"`
}

// Model types a recommendation may name.
const (
	ModelFreemium         = "Freemium"
	ModelFreeTrial        = "Free Trial"
	ModelUsageBased       = "Usage-Based"
	ModelCommunityEdition = "Community Edition"
	ModelOpenCore         = "Open Core"
	ModelAdSupported      = "Ad-Supported"
	ModelOther            = "Other"
)

// ModelTypes lists every accepted model type with its prompt description.
var ModelTypes = []struct {
	Name        string
	Description string
}{
	{ModelFreemium, "Feature-limited free version with premium upgrades"},
	{ModelFreeTrial, "Time-limited access to full product"},
	{ModelUsageBased, "Free up to certain usage limits"},
	{ModelCommunityEdition, "Free version with limited support"},
	{ModelOpenCore, "Free basic version with paid extensions"},
	{ModelAdSupported, "Free access with advertisements"},
	{ModelOther, "(with explanation)"},
}

// ModelRecommendation is the recommended free model and why.
type ModelRecommendation struct {
	ModelType   string `json:"model_type"`
	Explanation string `json:"explanation"`
}

// OverallReport is the terminal artifact of a pipeline run.
type OverallReport struct {
	Score              float64            `json:"score"`
	Desirable          DimensionAnalysis  `json:"desirable"`
	Effective          DimensionAnalysis  `json:"effective"`
	Efficient          DimensionAnalysis  `json:"efficient"`
	Polished           DimensionAnalysis  `json:"polished"`
	RecommendedModel   string             `json:"recommended_model"`
	ModelExplanation   string             `json:"model_explanation"`
	KeyFindings        []string           `json:"key_findings"`
	ImplementationPlan ImplementationPlan `json:"implementation_plan"`
	Recommendations    string             `json:"recommendations"`
}

// Dimensions returns the four analyses of the report as a set.
func (r OverallReport) Dimensions() DimensionSet {
	return DimensionSet{
		Desirable: r.Desirable,
		Effective: r.Effective,
		Efficient: r.Efficient,
		Polished:  r.Polished,
	}
}

// AnalysisScore is a legacy dimension result: a score and one narrative sentence.
type AnalysisScore struct {
	Score    float64 `json:"score"`
	Analysis string  `json:"analysis"`
}

// LegacyAnalysis is the heuristic quiz result.
type LegacyAnalysis struct {
	Score            float64       `json:"score"`
	Desirable        AnalysisScore `json:"desirable"`
	Effective        AnalysisScore `json:"effective"`
	Efficient        AnalysisScore `json:"efficient"`
	Polished         AnalysisScore `json:"polished"`
	RecommendedModel string        `json:"recommended_model"`
	KeyFindings      []string      `json:"key_findings"`
}

// LegacyResult is the body returned for a legacy quiz submission.
type LegacyResult struct {
	Analysis        LegacyAnalysis `json:"analysis"`
	Recommendations string         `json:"recommendations"`
}
