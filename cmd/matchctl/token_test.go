package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenIssuesValidToken(t *testing.T) {
	t.Setenv("BOT_ADMIN_IDS", "42")
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := runCmd(t, "--config", "", "token", "--admin-id", "42")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	auth := authsvc.NewService(authsvc.NewJWTManager("cli-secret", time.Hour), access.NewAllowlist([]int64{42}))
	claims, err := auth.ValidateAccessToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("unexpected subject: %d", claims.UserID)
	}
}

func TestTokenRefusesNonAdmin(t *testing.T) {
	t.Setenv("BOT_ADMIN_IDS", "42")

	if _, err := runCmd(t, "--config", "", "token", "--admin-id", "7"); err == nil {
		t.Fatalf("expected error for id outside the allow-list")
	}
}

func TestTokenRequiresAdminID(t *testing.T) {
	if _, err := runCmd(t, "--config", "", "token"); err == nil {
		t.Fatalf("expected error without --admin-id")
	}
}
