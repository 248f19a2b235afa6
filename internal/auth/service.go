package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/camino-saas/camino/internal/shared"
	"github.com/camino-saas/camino/internal/users"
)

// Service authenticates accounts and mints bearer tokens.
type Service struct {
	users  users.Repository
	tokens *TokenManager
}

// NewService constructs the auth service.
func NewService(userRepo users.Repository, tokens *TokenManager) *Service {
	return &Service{users: userRepo, tokens: tokens}
}

// LoginResult carries the signed token plus the account it belongs to.
type LoginResult struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !user.Active {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(shared.Identity{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Name:     user.Name,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, identity *shared.Identity) error {
	if identity == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, identity.TokenID)
}
