package handler

import (
	"net/http"

	"intentional/internal/gateway/repository/task"
	"intentional/internal/gateway/service/analysis"
	"intentional/internal/types"
)

const submittedMessage = "Your analysis is being processed. Please poll the status endpoint to check for completion."

type taskStatus struct {
	TaskID    string      `json:"task_id"`
	Status    task.Status `json:"status"`
	Message   string      `json:"message"`
	ResultID  string      `json:"result_id,omitempty"`
	Error     string      `json:"error,omitempty"`
	Retryable *bool       `json:"retryable,omitempty"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var sub types.Submission
	if !decode(w, r, &sub) {
		return
	}
	t, err := h.analysis.Submit(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, taskStatus{TaskID: t.ID, Status: t.Status, Message: submittedMessage})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	t, err := h.analysis.Status(r.Context(), r.PathValue("task_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := taskStatus{TaskID: t.ID, Status: t.Status, Message: t.Message, ResultID: t.ResultID}
	if t.Status == task.StatusFailed {
		out.Error = t.Error
		out.Retryable = &t.Retryable
	}
	writeJSON(w, http.StatusOK, out)
}

// Result serves a stored report as JSON, or as a page with ?format=html.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	resultID := r.PathValue("result_id")
	if r.URL.Query().Get("format") == "html" {
		page, err := h.analysis.ResultHTML(r.Context(), resultID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
		return
	}
	rec, err := h.analysis.Result(r.Context(), resultID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Report)
}

type resultArtifacts struct {
	ResultID  string                `json:"result_id"`
	Artifacts []analysis.ReportCopy `json:"artifacts"`
}

func (h *Handler) Artifacts(w http.ResponseWriter, r *http.Request) {
	resultID := r.PathValue("result_id")
	copies, err := h.analysis.Artifacts(r.Context(), resultID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultArtifacts{ResultID: resultID, Artifacts: copies})
}
