package handler

import (
	"net/http"

	"intentional/internal/heuristic"
	"intentional/internal/types"
)

func (h *Handler) Questions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questions": heuristic.Questions()})
}

// SubmitQuiz scores a legacy quiz without calling the generation service.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var in types.QuizSubmission
	if !decode(w, r, &in) {
		return
	}
	if len(in.Answers) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "answers are required")
		return
	}
	writeJSON(w, http.StatusOK, heuristic.Analyze(in.Answers))
}
