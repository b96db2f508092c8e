package server

import (
	"net/http"

	"intentional/internal/gateway/handler"
	"intentional/internal/gateway/middleware"
)

func NewMux(h *handler.Handler, allowedOrigins ...string) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return middleware.CORS(allowedOrigins...)(mux)
}
