package handler

import "net/http"

type chatRequest struct {
	Message  string `json:"message"`
	ResultID string `json:"result_id,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat answers one question, optionally about a stored result. Nothing is kept between calls.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if !decode(w, r, &in) {
		return
	}
	answer, err := h.analysis.Chat(r.Context(), in.Message, in.ResultID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}
