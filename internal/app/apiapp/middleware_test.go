package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
)

const testSecret = "test-secret"

func newAuth(adminIDs ...int64) *authsvc.Service {
	return authsvc.NewService(authsvc.NewJWTManager(testSecret, time.Hour), access.NewAllowlist(adminIDs))
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(newAuth(1), zap.NewNop())

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without token")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsRevokedAdmin(t *testing.T) {
	token, err := newAuth(1).IssueAdminToken(1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	// same secret, but 1 is no longer on the allow-list
	mw := AuthMiddleware(newAuth(2), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for revoked admin")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	auth := newAuth(7)
	token, err := auth.IssueAdminToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "bearer "+token.AccessToken)
	rr := httptest.NewRecorder()
	AuthMiddleware(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.UserID != 7 || identity.Role != authsvc.RoleAdmin {
			t.Fatalf("unexpected identity: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := map[string]bool{
		"Bearer abc":   true,
		"bearer  abc ": true,
		"Basic abc":    false,
		"Bearer":       false,
		"":             false,
	}
	for header, want := range tests {
		if _, ok := extractBearerToken(header); ok != want {
			t.Fatalf("header %q: want %v got %v", header, want, ok)
		}
	}
}

type statsOnly struct{}

func (statsOnly) Panel(context.Context, int64) (model.ModerationStats, error) {
	return model.ModerationStats{PendingProfiles: 2}, nil
}

func (statsOnly) NextProfile(context.Context, int64) (modsvc.QueueItem, bool, error) {
	return modsvc.QueueItem{}, false, nil
}

func (statsOnly) DecideProfile(context.Context, int64, int64, enums.ModerationDecision, string) (model.DecisionResult, error) {
	return model.DecisionResult{}, nil
}

func (statsOnly) NextReport(context.Context, int64) (model.ReportView, bool, error) {
	return model.ReportView{}, false, nil
}

func (statsOnly) DecideReport(context.Context, int64, int64, enums.ReportDecision) (model.Report, error) {
	return model.Report{}, nil
}

func TestRoutesProtectAdminOnly(t *testing.T) {
	auth := newAuth(3)
	r := chi.NewRouter()
	RegisterRoutes(r, Dependencies{Tokens: auth, Moderation: statsOnly{}, Logger: zap.NewNop()})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("health without postgres: got %d want %d", rr.Code, http.StatusServiceUnavailable)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/moderation/next", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("admin without token: got %d want %d", rr.Code, http.StatusUnauthorized)
	}

	token, err := auth.IssueAdminToken(3)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/moderation/next", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("empty queue: got %d want %d", rr.Code, http.StatusNoContent)
	}
}
