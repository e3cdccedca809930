package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
)

func TestIssueAndValidateAdminToken(t *testing.T) {
	svc := authsvc.NewService(authsvc.NewJWTManager("test-secret", time.Hour), access.NewAllowlist([]int64{1001}))

	issued, err := svc.IssueAdminToken(1001)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := svc.ValidateAccessToken(issued.AccessToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 1001 || claims.Role != authsvc.RoleAdmin || claims.SID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssueRefusesNonAdmin(t *testing.T) {
	svc := authsvc.NewService(authsvc.NewJWTManager("test-secret", time.Hour), access.NewAllowlist([]int64{1001}))

	if _, err := svc.IssueAdminToken(2002); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.IssueAdminToken(0); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTokenOfRemovedAdminIsRejected(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", time.Hour)
	issuer := authsvc.NewService(manager, access.NewAllowlist([]int64{1001}))
	issued, err := issuer.IssueAdminToken(1001)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	checker := authsvc.NewService(manager, access.NewAllowlist([]int64{3003}))
	if _, err := checker.ValidateAccessToken(issued.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	admins := access.NewAllowlist([]int64{1001})
	issued, err := authsvc.NewService(authsvc.NewJWTManager("secret-a", time.Hour), admins).IssueAdminToken(1001)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	svc := authsvc.NewService(authsvc.NewJWTManager("secret-b", time.Hour), admins)
	if _, err := svc.ValidateAccessToken(issued.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.ValidateAccessToken("garbage"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}
}
