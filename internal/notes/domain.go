// Package notes implements the delivery note ("albarán") lifecycle: creation
// with per-tenant sequential numbering, the two-phase origin/destination
// signature capture, soft deletion with restore, and invoicing flags.
package notes

import (
	"errors"
	"time"
)

// CreatorType records which kind of account created a note.
type CreatorType string

const (
	CreatorAdmin  CreatorType = "admin"
	CreatorWorker CreatorType = "worker"
)

// Well-known status values. Status is free text for compatibility with data
// imported from the previous system, so these are conventions, not an enum.
const (
	StatusPending   = "pending"
	StatusSigned    = "signed"
	StatusConfirmed = "confirmado"
	StatusDelivered = "delivered"
)

// GeoPoint is an optional per-stop coordinate (lon/lat order, as GeoJSON).
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PickupOrigin is one stop on the note's pickup route.
type PickupOrigin struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Status    *string   `json:"status,omitempty"`
	Signature *string   `json:"signature,omitempty"`
	Location  *GeoPoint `json:"location,omitempty"`
}

// DeliveryNote is the central entity of the platform.
type DeliveryNote struct {
	ID         int64       `json:"id" db:"id"`
	NoteNumber int64       `json:"note_number" db:"note_number"`
	TenantID   int64       `json:"tenant_id" db:"tenant_id"`
	WorkerID   int64       `json:"worker_id" db:"worker_id"`
	Creator    CreatorType `json:"creator_type" db:"creator_type"`

	ClientName   string    `json:"client_name" db:"client_name"`
	Destination  string    `json:"destination" db:"destination"`
	VehicleType  *string   `json:"vehicle_type,omitempty" db:"vehicle_type"`
	Date         time.Time `json:"date" db:"note_date"`
	Time         *string   `json:"time,omitempty" db:"note_time"`
	Observations *string   `json:"observations,omitempty" db:"observations"`
	WaitTime     *int      `json:"wait_time,omitempty" db:"wait_time"`

	PickupOrigins []PickupOrigin `json:"pickup_origins" db:"pickup_origins"`

	Photo *string `json:"photo,omitempty" db:"photo"`

	OriginSignature         *string    `json:"origin_signature,omitempty" db:"origin_signature"`
	OriginSignatureDocument *string    `json:"origin_signature_document,omitempty" db:"origin_signature_document"`
	OriginSignedAt          *time.Time `json:"origin_signed_at,omitempty" db:"origin_signed_at"`

	DestinationSignature         *string    `json:"destination_signature,omitempty" db:"destination_signature"`
	DestinationSignatureDocument *string    `json:"destination_signature_document,omitempty" db:"destination_signature_document"`
	DestinationSignedAt          *time.Time `json:"destination_signed_at,omitempty" db:"destination_signed_at"`

	// Signature is the single-signature field of the pre-dual-signature
	// system. Notes imported from it carry photo+signature only.
	Signature *string `json:"signature,omitempty" db:"signature"`

	Status     string     `json:"status" db:"status"`
	IsInvoiced bool       `json:"is_invoiced" db:"is_invoiced"`
	InvoicedAt *time.Time `json:"invoiced_at,omitempty" db:"invoiced_at"`

	ArrivedAt  *time.Time `json:"arrived_at,omitempty" db:"arrived_at"`
	DepartedAt *time.Time `json:"departed_at,omitempty" db:"departed_at"`

	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeletedBy *int64     `json:"deleted_by,omitempty" db:"deleted_by"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SignedAt  *time.Time `json:"signed_at,omitempty" db:"signed_at"`
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// LifecycleState is the two-tier deletion state of a stored note. A purged
// note has no row at all, so "purged" is not representable here and invalid
// transitions out of it cannot be expressed.
type LifecycleState string

const (
	LifecycleActive  LifecycleState = "ACTIVE"
	LifecycleTrashed LifecycleState = "TRASHED"
)

var (
	ErrAlreadyTrashed = errors.New("note is already in the trash")
	ErrNotTrashed     = errors.New("note is not in the trash")
)

// Lifecycle derives the deletion state from the tombstone.
func (n *DeliveryNote) Lifecycle() LifecycleState {
	if n.DeletedAt != nil {
		return LifecycleTrashed
	}
	return LifecycleActive
}

// Trash moves an active note to the trash, recording who deleted it.
func (n *DeliveryNote) Trash(by int64, at time.Time) error {
	if n.Lifecycle() == LifecycleTrashed {
		return ErrAlreadyTrashed
	}
	n.DeletedAt = &at
	n.DeletedBy = &by
	return nil
}

// Untrash restores a trashed note to the active state.
func (n *DeliveryNote) Untrash() error {
	if n.Lifecycle() != LifecycleTrashed {
		return ErrNotTrashed
	}
	n.DeletedAt = nil
	n.DeletedBy = nil
	return nil
}
