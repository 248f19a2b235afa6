// Package users manages the accounts of a tenant: the admin who runs the
// office and the workers who sign delivery notes on the road.
package users

import (
	"time"

	"github.com/camino-saas/camino/internal/shared"
)

// User is a tenant account.
type User struct {
	ID           int64       `json:"id" db:"id"`
	TenantID     int64       `json:"tenant_id" db:"tenant_id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Role         shared.Role `json:"role" db:"role"`
	Active       bool        `json:"active" db:"active"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// CreateWorkerRequest registers a worker account.
type CreateWorkerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=8"`
}

// ListUsersRequest filters the tenant account listing.
type ListUsersRequest struct {
	TenantID int64
	Role     *shared.Role
	Limit    int
	Offset   int
}
