package invoices

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

type memRepo struct {
	seq     int64
	nextID  int64
	created []*Invoice
	marked  map[int64]bool
}

func newMemRepo() *memRepo {
	return &memRepo{marked: map[int64]bool{}}
}

func (m *memRepo) Create(_ context.Context, inv *Invoice, markAt time.Time) error {
	m.seq++
	m.nextID++
	inv.InvoiceNumber = m.seq
	inv.ID = m.nextID
	inv.CreatedAt = markAt
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.ID
		m.marked[inv.Lines[i].NoteID] = true
	}
	m.created = append(m.created, inv)
	return nil
}

func (m *memRepo) Get(_ context.Context, _, id int64) (*Invoice, error) {
	for _, inv := range m.created {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, _ ListInvoicesRequest) ([]Invoice, int, error) {
	out := make([]Invoice, 0, len(m.created))
	for _, inv := range m.created {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

type noteStore struct {
	notes map[int64]*notes.DeliveryNote
}

func (s *noteStore) Get(_ context.Context, tenantID, id int64) (*notes.DeliveryNote, error) {
	n, ok := s.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, notes.ErrNotFound
	}
	return n, nil
}

func strptr(s string) *string { return &s }

func signedNote(id, number int64) *notes.DeliveryNote {
	return &notes.DeliveryNote{
		ID:                           id,
		NoteNumber:                   number,
		TenantID:                     1,
		Destination:                  "Valencia",
		OriginSignature:              strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignature:         strptr("data:image/png;base64,bbb"),
		DestinationSignatureDocument: strptr("87654321B"),
	}
}

func admin() *shared.Identity {
	return &shared.Identity{UserID: 1, TenantID: 1, Role: shared.RoleAdmin}
}

func newTestService(store *noteStore) (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(ServiceParams{Repo: repo, Notes: store})
	return svc, repo
}

func TestCreateComputesTotals(t *testing.T) {
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{
		10: signedNote(10, 1),
		11: signedNote(11, 2),
	}}
	svc, repo := newTestService(store)

	inv, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TaxRate:    21,
		Lines: []LineRequest{
			{NoteID: 10, AmountCents: 10_000},
			{NoteID: 11, AmountCents: 5_050, Description: "Night surcharge run"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), inv.InvoiceNumber)
	assert.Equal(t, int64(15_050), inv.SubtotalCents)
	assert.Equal(t, int64(3_161), inv.TaxCents) // 15050 * 0.21 = 3160.5, rounds up
	assert.Equal(t, int64(18_211), inv.TotalCents)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, int64(1), inv.Lines[0].NoteNumber)
	assert.True(t, strings.Contains(inv.Lines[0].Description, "#1"))
	assert.Equal(t, "Night surcharge run", inv.Lines[1].Description)
	assert.True(t, repo.marked[10])
	assert.True(t, repo.marked[11])
}

func TestCreateRejectsUnsignedNote(t *testing.T) {
	unsigned := signedNote(10, 1)
	unsigned.DestinationSignature = nil
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{10: unsigned}}
	svc, repo := newTestService(store)

	_, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Lines:      []LineRequest{{NoteID: 10, AmountCents: 100}},
	})
	assert.ErrorIs(t, err, ErrNoteNotBillable)
	assert.Empty(t, repo.created)
}

func TestCreateRejectsTrashedAndInvoicedNotes(t *testing.T) {
	trashed := signedNote(10, 1)
	now := time.Now()
	trashed.DeletedAt = &now
	invoiced := signedNote(11, 2)
	invoiced.IsInvoiced = true
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{10: trashed, 11: invoiced}}
	svc, _ := newTestService(store)

	for _, id := range []int64{10, 11} {
		_, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
			ClientName: "Logística Pérez",
			IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Lines:      []LineRequest{{NoteID: id, AmountCents: 100}},
		})
		assert.ErrorIs(t, err, ErrNoteNotBillable, "note %d", id)
	}
}

func TestCreateRejectsDuplicateLines(t *testing.T) {
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{10: signedNote(10, 1)}}
	svc, _ := newTestService(store)

	_, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Lines: []LineRequest{
			{NoteID: 10, AmountCents: 100},
			{NoteID: 10, AmountCents: 200},
		},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateLegacyNoteIsBillable(t *testing.T) {
	legacy := &notes.DeliveryNote{
		ID:         10,
		NoteNumber: 1,
		TenantID:   1,
		Photo:      strptr(strings.Repeat("x", 150)),
		Signature:  strptr("data:image/png;base64,legacy"),
	}
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{10: legacy}}
	svc, _ := newTestService(store)

	inv, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Lines:      []LineRequest{{NoteID: 10, AmountCents: 2_500}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2_500), inv.TotalCents)
}

func TestTotalsRounding(t *testing.T) {
	inv := Invoice{TaxRate: 10, Lines: []Line{{AmountCents: 5}}}
	inv.Totals()
	assert.Equal(t, int64(5), inv.SubtotalCents)
	assert.Equal(t, int64(1), inv.TaxCents) // 0.5 rounds away from zero
	assert.Equal(t, int64(6), inv.TotalCents)
}

type stubEvents struct {
	created []int64
}

func (e *stubEvents) InvoiceCreated(_ context.Context, _, invoiceID int64) {
	e.created = append(e.created, invoiceID)
}

func TestCreateFiresInvoiceCreatedEvent(t *testing.T) {
	store := &noteStore{notes: map[int64]*notes.DeliveryNote{10: signedNote(10, 1)}}
	repo := newMemRepo()
	events := &stubEvents{}
	svc := NewService(ServiceParams{Repo: repo, Notes: store, Events: events})

	inv, err := svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TaxRate:    21,
		Lines:      []LineRequest{{NoteID: 10, AmountCents: 10_000}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{inv.ID}, events.created)

	// A rejected invoice fires nothing.
	_, err = svc.Create(context.Background(), admin(), CreateInvoiceRequest{
		ClientName: "Logística Pérez",
		IssueDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TaxRate:    21,
		Lines:      []LineRequest{{NoteID: 99, AmountCents: 1_000}},
	})
	require.Error(t, err)
	assert.Len(t, events.created, 1)
}
