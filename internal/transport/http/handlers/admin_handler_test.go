package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
	"github.com/Evzheva/chatbot-for-dating/internal/transport/http/dto"
)

type moderationStub struct {
	stats    model.ModerationStats
	item     *modsvc.QueueItem
	view     *model.ReportView
	decided  []model.DecisionResult
	decideFn func(targetID int64, decision enums.ModerationDecision, reason string) error
}

func (s *moderationStub) Panel(context.Context, int64) (model.ModerationStats, error) {
	return s.stats, nil
}

func (s *moderationStub) NextProfile(context.Context, int64) (modsvc.QueueItem, bool, error) {
	if s.item == nil {
		return modsvc.QueueItem{}, false, nil
	}
	return *s.item, true, nil
}

func (s *moderationStub) DecideProfile(_ context.Context, _ int64, targetID int64, decision enums.ModerationDecision, reason string) (model.DecisionResult, error) {
	if s.decideFn != nil {
		if err := s.decideFn(targetID, decision, reason); err != nil {
			return model.DecisionResult{}, err
		}
	}
	result := model.DecisionResult{Decision: decision, TargetID: targetID, Reason: reason}
	s.decided = append(s.decided, result)
	return result, nil
}

func (s *moderationStub) NextReport(context.Context, int64) (model.ReportView, bool, error) {
	if s.view == nil {
		return model.ReportView{}, false, nil
	}
	return *s.view, true, nil
}

func (s *moderationStub) DecideReport(_ context.Context, _ int64, reportID int64, decision enums.ReportDecision) (model.Report, error) {
	if decision != enums.ReportDecisionAccept && decision != enums.ReportDecisionDismiss {
		return model.Report{}, fmt.Errorf("%w: unknown decision", apperr.ErrValidation)
	}
	return model.Report{ID: reportID, Status: enums.ReportStatusAccepted}, nil
}

type actionsStub struct {
	limit int
	err   error
}

func (s *actionsStub) ListRecent(_ context.Context, limit int) ([]model.AdminAction, error) {
	s.limit = limit
	return nil, s.err
}

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1, SID: "sid-1", Role: authsvc.RoleAdmin}))
}

func TestAdminStatsRequiresIdentity(t *testing.T) {
	handler := NewAdminHandler(&moderationStub{}, nil, nil)

	rr := httptest.NewRecorder()
	handler.Stats(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminStatsReturnsCounts(t *testing.T) {
	handler := NewAdminHandler(&moderationStub{stats: model.ModerationStats{PendingProfiles: 3, Banned: 1}}, nil, nil)

	rr := httptest.NewRecorder()
	handler.Stats(rr, adminRequest(http.MethodGet, "/admin/stats", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var resp dto.AdminStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AdminID != 1 || resp.Stats.PendingProfiles != 3 || resp.Stats.Banned != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminNextProfileEmptyQueue(t *testing.T) {
	handler := NewAdminHandler(&moderationStub{}, nil, nil)

	rr := httptest.NewRecorder()
	handler.NextProfile(rr, adminRequest(http.MethodGet, "/admin/moderation/next", ""))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAdminNextProfileReturnsCard(t *testing.T) {
	stub := &moderationStub{item: &modsvc.QueueItem{
		Profile:   model.Profile{UserID: 9, FirstName: "Оля", Status: enums.ProfileStatusPendingReview, PhotoFileID: "file"},
		PhotoURL:  "https://s3.local/photo",
		QueueSize: 4,
	}}
	handler := NewAdminHandler(stub, nil, nil)

	rr := httptest.NewRecorder()
	handler.NextProfile(rr, adminRequest(http.MethodGet, "/admin/moderation/next", ""))

	var resp dto.AdminModerationNextResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Profile.UserID != 9 || !resp.Profile.HasPhoto || resp.Profile.PhotoURL == "" || resp.QueueSize != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminDecideProfile(t *testing.T) {
	stub := &moderationStub{}
	handler := NewAdminHandler(stub, nil, nil)

	req := adminRequest(http.MethodPost, "/admin/moderation/9/decision", `{"decision":"Reject","reason":"нет фото"}`)
	req = req.WithContext(withURLParam(req.Context(), "id", "9"))
	rr := httptest.NewRecorder()
	handler.DecideProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	if len(stub.decided) != 1 || stub.decided[0].Decision != enums.ModerationDecisionReject || stub.decided[0].TargetID != 9 {
		t.Fatalf("unexpected decisions: %+v", stub.decided)
	}
}

func TestAdminDecideProfileMapsNotFound(t *testing.T) {
	stub := &moderationStub{decideFn: func(targetID int64, _ enums.ModerationDecision, _ string) error {
		return fmt.Errorf("%w: profile %d is not pending", apperr.ErrNotFound, targetID)
	}}
	handler := NewAdminHandler(stub, nil, nil)

	req := adminRequest(http.MethodPost, "/admin/moderation/9/decision", `{"decision":"approve"}`)
	req = req.WithContext(withURLParam(req.Context(), "id", "9"))
	rr := httptest.NewRecorder()
	handler.DecideProfile(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAdminDecideProfileRejectsBadID(t *testing.T) {
	handler := NewAdminHandler(&moderationStub{}, nil, nil)

	req := adminRequest(http.MethodPost, "/admin/moderation/abc/decision", `{"decision":"approve"}`)
	req = req.WithContext(withURLParam(req.Context(), "id", "abc"))
	rr := httptest.NewRecorder()
	handler.DecideProfile(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAdminDecideReportValidatesDecision(t *testing.T) {
	handler := NewAdminHandler(&moderationStub{}, nil, nil)

	req := adminRequest(http.MethodPost, "/admin/reports/5/decision", `{"decision":"maybe"}`)
	req = req.WithContext(withURLParam(req.Context(), "id", "5"))
	rr := httptest.NewRecorder()
	handler.DecideReport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAdminNextReportResolvesSides(t *testing.T) {
	stub := &moderationStub{view: &model.ReportView{
		Report:   model.Report{ID: 5, ReporterID: 2, ReportedUserID: 3, Reason: "спам"},
		Reporter: &model.Profile{UserID: 2},
	}}
	handler := NewAdminHandler(stub, nil, nil)

	rr := httptest.NewRecorder()
	handler.NextReport(rr, adminRequest(http.MethodGet, "/admin/reports/next", ""))

	var resp dto.AdminReportNextResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.ID != 5 || resp.Reporter == nil || resp.Reported != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminRecentActions(t *testing.T) {
	actions := &actionsStub{}
	handler := NewAdminHandler(&moderationStub{}, actions, nil)

	rr := httptest.NewRecorder()
	handler.RecentActions(rr, adminRequest(http.MethodGet, "/admin/actions?limit=10", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	if actions.limit != 10 {
		t.Fatalf("unexpected limit: %d", actions.limit)
	}
	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Fatalf("empty list must be encoded as []: %s", rr.Body.String())
	}

	actions.err = errors.New("db down")
	rr = httptest.NewRecorder()
	handler.RecentActions(rr, adminRequest(http.MethodGet, "/admin/actions", ""))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusInternalServerError)
	}
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}
