package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
	"github.com/Evzheva/chatbot-for-dating/internal/transport/http/dto"
	httperrors "github.com/Evzheva/chatbot-for-dating/internal/transport/http/errors"
)

type ModerationService interface {
	Panel(ctx context.Context, adminID int64) (model.ModerationStats, error)
	NextProfile(ctx context.Context, adminID int64) (modsvc.QueueItem, bool, error)
	DecideProfile(ctx context.Context, adminID, targetID int64, decision enums.ModerationDecision, reason string) (model.DecisionResult, error)
	NextReport(ctx context.Context, adminID int64) (model.ReportView, bool, error)
	DecideReport(ctx context.Context, adminID, reportID int64, decision enums.ReportDecision) (model.Report, error)
}

type ActionLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.AdminAction, error)
}

// AdminHandler exposes the moderation queues to admins holding a bearer token.
type AdminHandler struct {
	moderation ModerationService
	actions    ActionLister
	logger     *zap.Logger
}

func NewAdminHandler(moderation ModerationService, actions ActionLister, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		moderation: moderation,
		actions:    actions,
		logger:     logger,
	}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	stats, err := h.moderation.Panel(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, "admin stats", err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.AdminStatsResponse{AdminID: identity.UserID, Stats: stats})
}

func (h *AdminHandler) NextProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	item, found, err := h.moderation.NextProfile(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, "next moderation profile", err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminModerationNextResponse{
		Profile:   dto.NewAdminProfileItem(item.Profile, item.PhotoURL),
		QueueSize: item.QueueSize,
	})
}

func (h *AdminHandler) DecideProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	targetID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req dto.AdminDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	decision := enums.ModerationDecision(strings.ToLower(strings.TrimSpace(req.Decision)))

	result, err := h.moderation.DecideProfile(r.Context(), identity.UserID, targetID, decision, req.Reason)
	if err != nil {
		h.writeError(w, "decide profile", err)
		return
	}
	httperrors.Write(w, http.StatusOK, result)
}

func (h *AdminHandler) NextReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	view, found, err := h.moderation.NextReport(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, "next report", err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := dto.AdminReportNextResponse{Report: view.Report}
	if view.Reporter != nil {
		item := dto.NewAdminProfileItem(*view.Reporter, "")
		resp.Reporter = &item
	}
	if view.Reported != nil {
		item := dto.NewAdminProfileItem(*view.Reported, "")
		resp.Reported = &item
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *AdminHandler) DecideReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	reportID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid report id")
		return
	}

	var req dto.AdminDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	report, err := h.moderation.DecideReport(r.Context(), identity.UserID, reportID, enums.ReportDecision(strings.ToLower(strings.TrimSpace(req.Decision))))
	if err != nil {
		h.writeError(w, "decide report", err)
		return
	}
	httperrors.Write(w, http.StatusOK, report)
}

func (h *AdminHandler) RecentActions(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.actions == nil {
		writeInternal(w, "ACTIONS_UNAVAILABLE", "admin actions are unavailable")
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.actions.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, "list admin actions", err)
		return
	}
	if items == nil {
		items = []model.AdminAction{}
	}
	httperrors.Write(w, http.StatusOK, dto.AdminActionsResponse{Items: items})
}

func (h *AdminHandler) writeError(w http.ResponseWriter, op string, err error) {
	if !httperrors.WriteDomain(w, err) {
		h.logger.Error(op, zap.Error(err))
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
