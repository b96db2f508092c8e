// Package heuristic is the deterministic quiz scorer. It performs no I/O and
// returns identical results for identical answers.
package heuristic

import (
	"fmt"
	"strings"

	"intentional/internal/types"
)

// Analyze scores a legacy quiz submission.
func Analyze(list []types.QuizAnswer) types.LegacyResult {
	a := index(list)
	s := scores(a)
	analysis := types.LegacyAnalysis{
		Score:            Mean(s),
		Desirable:        types.AnalysisScore{Score: s.Desirable, Analysis: Narrative(types.Desirable, s.Desirable)},
		Effective:        types.AnalysisScore{Score: s.Effective, Analysis: Narrative(types.Effective, s.Effective)},
		Efficient:        types.AnalysisScore{Score: s.Efficient, Analysis: Narrative(types.Efficient, s.Efficient)},
		Polished:         types.AnalysisScore{Score: s.Polished, Analysis: Narrative(types.Polished, s.Polished)},
		RecommendedModel: recommend(a, s),
		KeyFindings:      finish(checklist(a, s), s),
	}
	return types.LegacyResult{
		Analysis:        analysis,
		Recommendations: Recommendations(analysis),
	}
}

// Recommendations renders a short markdown summary of a legacy analysis.
func Recommendations(an types.LegacyAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Recommended Free Model\n\n%s\n\n", an.RecommendedModel)
	b.WriteString("## DEEP Scores\n\n")
	for _, d := range types.Dimensions {
		sc := legacyScore(an, d)
		fmt.Fprintf(&b, "- **%s** (%.1f/10): %s\n", d.Title(), sc.Score, sc.Analysis)
	}
	if len(an.KeyFindings) > 0 {
		b.WriteString("\n## Key Findings\n\n")
		for _, f := range an.KeyFindings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

func legacyScore(an types.LegacyAnalysis, d types.Dimension) types.AnalysisScore {
	switch d {
	case types.Desirable:
		return an.Desirable
	case types.Effective:
		return an.Effective
	case types.Efficient:
		return an.Efficient
	default:
		return an.Polished
	}
}
