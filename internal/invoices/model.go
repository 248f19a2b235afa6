// Package invoices turns fully signed delivery notes into tenant invoices.
// Creating an invoice marks its notes invoiced in the same transaction, so a
// note can never appear on two invoices.
package invoices

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound        = errors.New("invoice not found")
	ErrNoteNotBillable = errors.New("note is not billable")
)

// Invoice is a tenant invoice over one or more delivery notes. Monetary
// amounts are integer cents.
type Invoice struct {
	ID            int64     `json:"id" db:"id"`
	InvoiceNumber int64     `json:"invoice_number" db:"invoice_number"`
	TenantID      int64     `json:"tenant_id" db:"tenant_id"`
	ClientName    string    `json:"client_name" db:"client_name"`
	IssueDate     time.Time `json:"issue_date" db:"issue_date"`
	SubtotalCents int64     `json:"subtotal_cents" db:"subtotal_cents"`
	TaxRate       float64   `json:"tax_rate" db:"tax_rate"`
	TaxCents      int64     `json:"tax_cents" db:"tax_cents"`
	TotalCents    int64     `json:"total_cents" db:"total_cents"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Lines []Line `json:"lines,omitempty" db:"-"`
}

// Line bills one delivery note on an invoice.
type Line struct {
	ID          int64  `json:"id" db:"id"`
	InvoiceID   int64  `json:"invoice_id" db:"invoice_id"`
	NoteID      int64  `json:"note_id" db:"note_id"`
	NoteNumber  int64  `json:"note_number" db:"note_number"`
	Description string `json:"description" db:"description"`
	AmountCents int64  `json:"amount_cents" db:"amount_cents"`
}

// Totals recomputes subtotal, tax and total from the lines. Tax is rounded
// half away from zero to the nearest cent.
func (inv *Invoice) Totals() {
	var subtotal int64
	for _, l := range inv.Lines {
		subtotal += l.AmountCents
	}
	inv.SubtotalCents = subtotal
	inv.TaxCents = int64(math.Round(float64(subtotal) * inv.TaxRate / 100))
	inv.TotalCents = subtotal + inv.TaxCents
}

// LineRequest bills one note.
type LineRequest struct {
	NoteID      int64  `json:"note_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=300"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
}

// CreateInvoiceRequest creates an invoice from fully signed notes.
type CreateInvoiceRequest struct {
	ClientName string        `json:"client_name" validate:"required,max=200"`
	IssueDate  time.Time     `json:"issue_date" validate:"required"`
	TaxRate    float64       `json:"tax_rate" validate:"gte=0,lte=100"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ListInvoicesRequest filters the tenant invoice listing.
type ListInvoicesRequest struct {
	TenantID int64
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
