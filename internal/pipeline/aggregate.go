package pipeline

import "intentional/internal/types"

// Dimension weights of the overall score. They sum to 1.
const (
	WeightDesirable = 0.3
	WeightEffective = 0.3
	WeightEfficient = 0.2
	WeightPolished  = 0.2
)

// OverallScore is the weighted mean of the four dimension scores. It is not
// rounded.
func OverallScore(s types.Scores) float64 {
	return s.Desirable*WeightDesirable +
		s.Effective*WeightEffective +
		s.Efficient*WeightEfficient +
		s.Polished*WeightPolished
}
