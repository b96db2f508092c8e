package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"intentional/internal/gateway/repository/task"
	"intentional/internal/gateway/service/analysis"
	"intentional/internal/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the JSON API on top of the analysis service.
type Handler struct {
	analysis *analysis.Service
	log      *zap.Logger
}

func New(svc *analysis.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{analysis: svc, log: logger}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /api/questions", h.Questions)
	mux.HandleFunc("POST /api/submit", h.SubmitQuiz)
	mux.HandleFunc("POST /api/v2/analyze", h.Analyze)
	mux.HandleFunc("GET /api/v2/analyze/{task_id}/status", h.Status)
	mux.HandleFunc("GET /api/v2/results/{result_id}", h.Result)
	mux.HandleFunc("GET /api/v2/results/{result_id}/artifacts", h.Artifacts)
	mux.HandleFunc("POST /api/chat", h.Chat)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *pipeline.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, analysis.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
