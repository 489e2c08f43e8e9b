package api

import (
	"context"
	"net/http"

	"resume-builder/internal/domain"
)

// AuthService calls the /auth endpoints. A successful Login or Register
// stores the session cookie in the client's jar.
type AuthService struct {
	c *Client
}

func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.user(ctx, http.MethodGet, "/auth/current-user", nil)
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	return s.user(ctx, http.MethodPost, "/auth/login", creds)
}

func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return s.user(ctx, http.MethodPost, "/auth/register", reg)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (s *AuthService) user(ctx context.Context, method, path string, in any) (*domain.User, error) {
	var u domain.User
	if err := s.c.do(ctx, method, path, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
