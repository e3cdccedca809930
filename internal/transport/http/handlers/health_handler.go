package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/transport/http/dto"
	httperrors "github.com/Evzheva/chatbot-for-dating/internal/transport/http/errors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	postgres Pinger
}

func NewHealthHandler(postgres Pinger) *HealthHandler {
	return &HealthHandler{postgres: postgres}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.postgres == nil {
		httperrors.Write(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Postgres: "not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.postgres.Ping(ctx); err != nil {
		httperrors.Write(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Postgres: "unreachable"})
		return
	}
	httperrors.Write(w, http.StatusOK, dto.HealthResponse{Status: "ok", Postgres: "ok"})
}
