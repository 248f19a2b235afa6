// Package tenants manages the transport companies that own all other data.
package tenants

import (
	"time"
)

// Tenant represents a transport company using the platform.
type Tenant struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TaxID        string    `json:"tax_id"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
