package types

import "fmt"

// Dimension is one axis of the DEEP rubric.
type Dimension string

const (
	Desirable Dimension = "desirable"
	Effective Dimension = "effective"
	Efficient Dimension = "efficient"
	Polished  Dimension = "polished"
)

// Dimensions lists the DEEP axes in report order.
var Dimensions = []Dimension{Desirable, Effective, Efficient, Polished}

// Title returns the capitalised dimension name used in prompts and reports.
func (d Dimension) Title() string {
	switch d {
	case Desirable:
		return "Desirable"
	case Effective:
		return "Effective"
	case Efficient:
		return "Efficient"
	case Polished:
		return "Polished"
	default:
		return string(d)
	}
}

// ParseDimension maps a lowercase name onto a Dimension.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// InputField is one labelled free-text answer inside a DimensionInputs record.
type InputField struct {
	Key   string
	Label string
	Value string
}

// DimensionInputs is the fixed field set answered for one dimension.
// Fields returns the fields in prompt order, additional notes last.
type DimensionInputs interface {
	Dimension() Dimension
	Fields() []InputField
}

type DesirableInputs struct {
	ValueProposition           string `json:"value_proposition,omitempty"`
	UserNeeds                  string `json:"user_needs,omitempty"`
	CompetitiveDifferentiation string `json:"competitive_differentiation,omitempty"`
	AdditionalNotes            string `json:"additional_notes,omitempty"`
}

func (DesirableInputs) Dimension() Dimension { return Desirable }

func (in DesirableInputs) Fields() []InputField {
	return []InputField{
		{Key: "value_proposition", Label: "Value Proposition", Value: in.ValueProposition},
		{Key: "user_needs", Label: "User Needs", Value: in.UserNeeds},
		{Key: "competitive_differentiation", Label: "Competitive Differentiation", Value: in.CompetitiveDifferentiation},
		{Key: "additional_notes", Label: "Additional Notes", Value: in.AdditionalNotes},
	}
}

type EffectiveInputs struct {
	CoreProblems    string `json:"core_problems,omitempty"`
	SuccessMetrics  string `json:"success_metrics,omitempty"`
	FrictionPoints  string `json:"friction_points,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

func (EffectiveInputs) Dimension() Dimension { return Effective }

func (in EffectiveInputs) Fields() []InputField {
	return []InputField{
		{Key: "core_problems", Label: "Core Problems Solved", Value: in.CoreProblems},
		{Key: "success_metrics", Label: "Success Metrics", Value: in.SuccessMetrics},
		{Key: "friction_points", Label: "Friction Points", Value: in.FrictionPoints},
		{Key: "additional_notes", Label: "Additional Notes", Value: in.AdditionalNotes},
	}
}

type EfficientInputs struct {
	AcquisitionCost    string `json:"acquisition_cost,omitempty"`
	ConversionStrategy string `json:"conversion_strategy,omitempty"`
	ResourceAllocation string `json:"resource_allocation,omitempty"`
	AdditionalNotes    string `json:"additional_notes,omitempty"`
}

func (EfficientInputs) Dimension() Dimension { return Efficient }

func (in EfficientInputs) Fields() []InputField {
	return []InputField{
		{Key: "acquisition_cost", Label: "Acquisition Cost", Value: in.AcquisitionCost},
		{Key: "conversion_strategy", Label: "Conversion Strategy", Value: in.ConversionStrategy},
		{Key: "resource_allocation", Label: "Resource Allocation", Value: in.ResourceAllocation},
		{Key: "additional_notes", Label: "Additional Notes", Value: in.AdditionalNotes},
	}
}

type PolishedInputs struct {
	UserExperience     string `json:"user_experience,omitempty"`
	OnboardingProcess  string `json:"onboarding_process,omitempty"`
	FeedbackMechanisms string `json:"feedback_mechanisms,omitempty"`
	AdditionalNotes    string `json:"additional_notes,omitempty"`
}

func (PolishedInputs) Dimension() Dimension { return Polished }

func (in PolishedInputs) Fields() []InputField {
	return []InputField{
		{Key: "user_experience", Label: "User Experience", Value: in.UserExperience},
		{Key: "onboarding_process", Label: "Onboarding Process", Value: in.OnboardingProcess},
		{Key: "feedback_mechanisms", Label: "Feedback Mechanisms", Value: in.FeedbackMechanisms},
		{Key: "additional_notes", Label: "Additional Notes", Value: in.AdditionalNotes},
	}
}

// DeepInputs groups the four per-dimension input records of a submission.
type DeepInputs struct {
	Desirable DesirableInputs `json:"desirable"`
	Effective EffectiveInputs `json:"effective"`
	Efficient EfficientInputs `json:"efficient"`
	Polished  PolishedInputs  `json:"polished"`
}

// For returns the input record of one dimension.
func (d DeepInputs) For(dim Dimension) DimensionInputs {
	switch dim {
	case Desirable:
		return d.Desirable
	case Effective:
		return d.Effective
	case Efficient:
		return d.Efficient
	case Polished:
		return d.Polished
	default:
		return nil
	}
}

// DimensionAnalysis is the scored narrative produced for one dimension.
type DimensionAnalysis struct {
	Score         float64  `json:"score"`
	Analysis      string   `json:"analysis"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
}

// DimensionSet holds exactly one analysis per dimension for a single run.
type DimensionSet struct {
	Desirable DimensionAnalysis `json:"desirable"`
	Effective DimensionAnalysis `json:"effective"`
	Efficient DimensionAnalysis `json:"efficient"`
	Polished  DimensionAnalysis `json:"polished"`
}

// Get returns the analysis for dim.
func (s DimensionSet) Get(dim Dimension) DimensionAnalysis {
	switch dim {
	case Desirable:
		return s.Desirable
	case Effective:
		return s.Effective
	case Efficient:
		return s.Efficient
	default:
		return s.Polished
	}
}

// Set stores a for dim.
func (s *DimensionSet) Set(dim Dimension, a DimensionAnalysis) {
	switch dim {
	case Desirable:
		s.Desirable = a
	case Effective:
		s.Effective = a
	case Efficient:
		s.Efficient = a
	case Polished:
		s.Polished = a
	}
}

// Scores returns the four scores keyed by dimension.
func (s DimensionSet) Scores() Scores {
	return Scores{
		Desirable: s.Desirable.Score,
		Effective: s.Effective.Score,
		Efficient: s.Efficient.Score,
		Polished:  s.Polished.Score,
	}
}

// Scores is the bare numeric view of a dimension set.
type Scores struct {
	Desirable float64 `json:"desirable"`
	Effective float64 `json:"effective"`
	Efficient float64 `json:"efficient"`
	Polished  float64 `json:"polished"`
}

// Get returns the score for dim.
func (s Scores) Get(dim Dimension) float64 {
	switch dim {
	case Desirable:
		return s.Desirable
	case Effective:
		return s.Effective
	case Efficient:
		return s.Efficient
	default:
		return s.Polished
	}
}
