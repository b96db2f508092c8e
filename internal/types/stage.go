package types

import "strings"

// Stage names one unit of pipeline work. Stage ids are part of every cache
// fingerprint, so renaming one invalidates its cached results.
type Stage string

const (
	StageFindings        Stage = "findings"
	StageModel           Stage = "model_recommendation"
	StagePlan            Stage = "implementation_plan"
	StageRecommendations Stage = "recommendations"
	StageChat            Stage = "chat"

	dimensionStagePrefix = "dimension/"
)

// DimensionStage returns the stage id of one dimension analyzer.
func DimensionStage(d Dimension) Stage {
	return Stage(dimensionStagePrefix + string(d))
}

// DimensionOf reports which dimension a dimension-analyzer stage belongs to.
func (s Stage) DimensionOf() (Dimension, bool) {
	rest, ok := strings.CutPrefix(string(s), dimensionStagePrefix)
	if !ok {
		return "", false
	}
	d, err := ParseDimension(rest)
	return d, err == nil
}
