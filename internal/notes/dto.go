package notes

import (
	"time"

	"github.com/camino-saas/camino/internal/shared"
)

// PickupOriginRequest is one route stop in a create payload.
type PickupOriginRequest struct {
	Name     string    `json:"name" validate:"required,max=200"`
	Address  string    `json:"address" validate:"required,max=300"`
	Location *GeoPoint `json:"location,omitempty"`
}

// CreateNoteRequest creates a pending delivery note. The note number is
// assigned server-side and never supplied by the caller.
type CreateNoteRequest struct {
	WorkerID      int64                 `json:"worker_id" validate:"required,gt=0"`
	ClientName    string                `json:"client_name" validate:"required,max=200"`
	Destination   string                `json:"destination" validate:"required,max=300"`
	VehicleType   *string               `json:"vehicle_type,omitempty" validate:"omitempty,max=100"`
	Date          time.Time             `json:"date" validate:"required"`
	Time          *string               `json:"time,omitempty" validate:"omitempty,max=10"`
	Observations  *string               `json:"observations,omitempty"`
	WaitTime      *int                  `json:"wait_time,omitempty" validate:"omitempty,gte=0"`
	PickupOrigins []PickupOriginRequest `json:"pickup_origins" validate:"required,min=1,dive"`
}

// UpdateNoteRequest carries PATCH semantics: only non-nil fields are written.
type UpdateNoteRequest struct {
	ClientName   *string `json:"client_name,omitempty" validate:"omitempty,max=200"`
	Destination  *string `json:"destination,omitempty" validate:"omitempty,max=300"`
	VehicleType  *string `json:"vehicle_type,omitempty" validate:"omitempty,max=100"`
	Observations *string `json:"observations,omitempty"`
	WaitTime     *int    `json:"wait_time,omitempty" validate:"omitempty,gte=0"`

	Photo *string `json:"photo,omitempty"`

	OriginSignature         *string `json:"origin_signature,omitempty"`
	OriginSignatureDocument *string `json:"origin_signature_document,omitempty"`

	DestinationSignature         *string `json:"destination_signature,omitempty"`
	DestinationSignatureDocument *string `json:"destination_signature_document,omitempty"`

	Signature *string `json:"signature,omitempty"`

	Status     *string    `json:"status,omitempty" validate:"omitempty,max=50"`
	IsInvoiced *bool      `json:"is_invoiced,omitempty"`
	ArrivedAt  *time.Time `json:"arrived_at,omitempty"`
	DepartedAt *time.Time `json:"departed_at,omitempty"`
}

// Empty reports whether the PATCH carries no changes at all.
func (r UpdateNoteRequest) Empty() bool {
	return r == (UpdateNoteRequest{})
}

// ListNotesRequest filters the tenant note listing.
type ListNotesRequest struct {
	TenantID    int64      `json:"tenant_id" validate:"required,gt=0"`
	WorkerID    *int64     `json:"worker_id,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Search      *string    `json:"search,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	FullySigned *bool      `json:"fully_signed,omitempty"`
	Invoiced    *bool      `json:"invoiced,omitempty"`
	Limit       int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int        `json:"offset" validate:"gte=0"`
}

// NoteResponse decorates a note with derived, display-only data.
type NoteResponse struct {
	DeliveryNote
	Completion          CompletionInfo `json:"completion"`
	RouteDistanceMeters float64        `json:"route_distance_meters"`
}

// NewNoteResponse builds the decorated payload.
func NewNoteResponse(n *DeliveryNote) NoteResponse {
	return NoteResponse{
		DeliveryNote:        *n,
		Completion:          Completion(n),
		RouteDistanceMeters: RouteDistanceMeters(n.PickupOrigins),
	}
}

// ListNotesResponse is the paginated list payload.
type ListNotesResponse struct {
	Notes      []NoteResponse    `json:"notes"`
	Pagination shared.Pagination `json:"pagination"`
}
