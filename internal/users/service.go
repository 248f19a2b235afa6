package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/camino-saas/camino/internal/shared"
)

// Service provides business logic for tenant user accounts.
type Service struct {
	repo Repository
}

// NewService constructs a user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateWorker registers a worker account under the given tenant.
func (s *Service) CreateWorker(ctx context.Context, tenantID int64, req CreateWorkerRequest) (*User, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         shared.RoleWorker,
		Active:       true,
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ListWorkers returns the tenant's worker accounts.
func (s *Service) ListWorkers(ctx context.Context, tenantID int64, limit, offset int) ([]User, int, error) {
	role := shared.RoleWorker
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, ListUsersRequest{TenantID: tenantID, Role: &role, Limit: limit, Offset: offset})
}

// Deactivate disables an account without removing it.
func (s *Service) Deactivate(ctx context.Context, tenantID, id int64) error {
	return s.repo.SetActive(ctx, tenantID, id, false)
}

// Activate re-enables a previously deactivated account.
func (s *Service) Activate(ctx context.Context, tenantID, id int64) error {
	return s.repo.SetActive(ctx, tenantID, id, true)
}

// Get fetches a user and verifies tenant ownership.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return user, nil
}
