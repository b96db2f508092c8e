package pipeline

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"intentional/internal/types"
)

// MaxFieldRunes bounds any single free-text answer.
const MaxFieldRunes = 10000

// Input is a validated submission flattened into what the stages consume:
// dimension analyzers see only their own DeepInputs record, derived stages
// see Context.
type Input struct {
	Context      types.AnalysisContext
	Deep         types.DeepInputs
	Journey      types.UserJourney
	CurrentModel types.CurrentModel
	Answers      []types.QuizAnswer
}

// Normalize trims every free-text field and validates the submission.
// The product description is required, at least one dimension field must
// be answered and no field may exceed MaxFieldRunes.
func Normalize(sub types.Submission) (*Input, error) {
	in := &Input{
		Context: types.AnalysisContext{
			ProductDescription: strings.TrimSpace(sub.Context.ProductDescription),
			TargetAudience:     strings.TrimSpace(sub.Context.TargetAudience),
			BusinessGoals:      strings.TrimSpace(sub.Context.BusinessGoals),
		},
		Deep: types.DeepInputs{
			Desirable: types.DesirableInputs{
				ValueProposition:           strings.TrimSpace(sub.DeepInputs.Desirable.ValueProposition),
				UserNeeds:                  strings.TrimSpace(sub.DeepInputs.Desirable.UserNeeds),
				CompetitiveDifferentiation: strings.TrimSpace(sub.DeepInputs.Desirable.CompetitiveDifferentiation),
				AdditionalNotes:            strings.TrimSpace(sub.DeepInputs.Desirable.AdditionalNotes),
			},
			Effective: types.EffectiveInputs{
				CoreProblems:    strings.TrimSpace(sub.DeepInputs.Effective.CoreProblems),
				SuccessMetrics:  strings.TrimSpace(sub.DeepInputs.Effective.SuccessMetrics),
				FrictionPoints:  strings.TrimSpace(sub.DeepInputs.Effective.FrictionPoints),
				AdditionalNotes: strings.TrimSpace(sub.DeepInputs.Effective.AdditionalNotes),
			},
			Efficient: types.EfficientInputs{
				AcquisitionCost:    strings.TrimSpace(sub.DeepInputs.Efficient.AcquisitionCost),
				ConversionStrategy: strings.TrimSpace(sub.DeepInputs.Efficient.ConversionStrategy),
				ResourceAllocation: strings.TrimSpace(sub.DeepInputs.Efficient.ResourceAllocation),
				AdditionalNotes:    strings.TrimSpace(sub.DeepInputs.Efficient.AdditionalNotes),
			},
			Polished: types.PolishedInputs{
				UserExperience:     strings.TrimSpace(sub.DeepInputs.Polished.UserExperience),
				OnboardingProcess:  strings.TrimSpace(sub.DeepInputs.Polished.OnboardingProcess),
				FeedbackMechanisms: strings.TrimSpace(sub.DeepInputs.Polished.FeedbackMechanisms),
				AdditionalNotes:    strings.TrimSpace(sub.DeepInputs.Polished.AdditionalNotes),
			},
		},
		Journey: types.UserJourney{
			UserEndgame:       strings.TrimSpace(sub.UserJourney.UserEndgame),
			BeginnerStage:     strings.TrimSpace(sub.UserJourney.BeginnerStage),
			IntermediateStage: strings.TrimSpace(sub.UserJourney.IntermediateStage),
			AdvancedStage:     strings.TrimSpace(sub.UserJourney.AdvancedStage),
			KeyChallenges:     normalizeChallenges(sub.UserJourney.KeyChallenges),
		},
		Answers: sub.StructuredAnswers,
	}
	if sub.CurrentModel != nil {
		in.CurrentModel = types.CurrentModel{
			CurrentModel:   strings.TrimSpace(sub.CurrentModel.CurrentModel),
			CurrentMetrics: strings.TrimSpace(sub.CurrentModel.CurrentMetrics),
		}
	}

	if in.Context.ProductDescription == "" {
		return nil, &ValidationError{Field: "context.product_description", Reason: "is required"}
	}
	for name, v := range map[string]string{
		"context.product_description": in.Context.ProductDescription,
		"context.target_audience":     in.Context.TargetAudience,
		"context.business_goals":      in.Context.BusinessGoals,
	} {
		if utf8.RuneCountInString(v) > MaxFieldRunes {
			return nil, &ValidationError{Field: name, Reason: "is too long"}
		}
	}

	answered := 0
	for _, dim := range types.Dimensions {
		for _, f := range in.Deep.For(dim).Fields() {
			if utf8.RuneCountInString(f.Value) > MaxFieldRunes {
				return nil, &ValidationError{Field: "deep_inputs." + string(dim) + "." + f.Key, Reason: "is too long"}
			}
			if f.Value != "" {
				answered++
			}
		}
	}
	if answered == 0 {
		return nil, &ValidationError{Field: "deep_inputs", Reason: "must answer at least one field"}
	}
	for i, a := range in.Answers {
		if strings.TrimSpace(a.QuestionID) == "" {
			return nil, &ValidationError{Field: "structured_answers", Reason: "entry " + strconv.Itoa(i) + " has no question_id"}
		}
	}
	return in, nil
}

func normalizeChallenges(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for stage, items := range in {
		stage = strings.TrimSpace(stage)
		if stage == "" {
			continue
		}
		var kept []string
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			out[stage] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
