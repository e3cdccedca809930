package auth

import (
	"fmt"

	"github.com/google/uuid"
)

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// Service issues and checks admin API tokens. A token is only honoured while
// its subject is still on the admin allow-list.
type Service struct {
	jwt    *JWTManager
	admins AdminChecker
}

func NewService(jwtManager *JWTManager, admins AdminChecker) *Service {
	return &Service{jwt: jwtManager, admins: admins}
}

func (s *Service) IssueAdminToken(adminID int64) (IssuedToken, error) {
	if adminID <= 0 {
		return IssuedToken{}, ErrInvalidInput
	}
	if s.admins == nil || !s.admins.IsAdmin(adminID) {
		return IssuedToken{}, ErrUnauthorized
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(adminID, uuid.NewString(), RoleAdmin)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate access token: %w", err)
	}

	return IssuedToken{
		AccessToken:   token,
		AccessExpires: expiresAt,
		AdminID:       adminID,
	}, nil
}

func (s *Service) ValidateAccessToken(accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}
	if claims.Role != RoleAdmin {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.admins == nil || !s.admins.IsAdmin(claims.UserID) {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}
