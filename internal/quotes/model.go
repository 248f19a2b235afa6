// Package quotes manages transport quotations: drafting, sending them to the
// client, recording the outcome, and converting an accepted quote into a
// delivery note.
package quotes

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("quote not found")
	// ErrBadTransition rejects a status change the state machine forbids.
	ErrBadTransition = errors.New("invalid quote transition")
)

// Status is the quote lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// transitions lists the allowed moves. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusAccepted, StatusRejected},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Quote is a priced transport offer. Amounts are integer cents.
type Quote struct {
	ID          int64     `json:"id" db:"id"`
	QuoteNumber int64     `json:"quote_number" db:"quote_number"`
	TenantID    int64     `json:"tenant_id" db:"tenant_id"`
	ClientName  string    `json:"client_name" db:"client_name"`
	Origin      string    `json:"origin" db:"origin"`
	Destination string    `json:"destination" db:"destination"`
	VehicleType *string   `json:"vehicle_type,omitempty" db:"vehicle_type"`
	ServiceDate time.Time `json:"service_date" db:"service_date"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	Status      Status    `json:"status" db:"status"`

	// ConvertedNoteID is set once an accepted quote becomes a delivery
	// note; conversion is one-shot.
	ConvertedNoteID *int64 `json:"converted_note_id,omitempty" db:"converted_note_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Transition validates and applies a status change.
func (q *Quote) Transition(to Status) error {
	if !CanTransition(q.Status, to) {
		return fmt.Errorf("%w: %s to %s", ErrBadTransition, q.Status, to)
	}
	q.Status = to
	return nil
}

// CreateQuoteRequest drafts a new quote.
type CreateQuoteRequest struct {
	ClientName  string    `json:"client_name" validate:"required,max=200"`
	Origin      string    `json:"origin" validate:"required,max=300"`
	Destination string    `json:"destination" validate:"required,max=300"`
	VehicleType *string   `json:"vehicle_type,omitempty" validate:"omitempty,max=100"`
	ServiceDate time.Time `json:"service_date" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"gte=0"`
	Notes       *string   `json:"notes,omitempty"`
}

// UpdateQuoteRequest edits a draft quote; non-nil fields only.
type UpdateQuoteRequest struct {
	ClientName  *string    `json:"client_name,omitempty" validate:"omitempty,max=200"`
	Origin      *string    `json:"origin,omitempty" validate:"omitempty,max=300"`
	Destination *string    `json:"destination,omitempty" validate:"omitempty,max=300"`
	VehicleType *string    `json:"vehicle_type,omitempty" validate:"omitempty,max=100"`
	ServiceDate *time.Time `json:"service_date,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty" validate:"omitempty,gte=0"`
	Notes       *string    `json:"notes,omitempty"`
}

// ConvertQuoteRequest assigns the worker for the note created from an
// accepted quote.
type ConvertQuoteRequest struct {
	WorkerID int64 `json:"worker_id" validate:"required,gt=0"`
}

// ListQuotesRequest filters the tenant quote listing.
type ListQuotesRequest struct {
	TenantID int64
	Status   *Status
	Limit    int
	Offset   int
}
