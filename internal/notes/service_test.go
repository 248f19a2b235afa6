package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// memRepo is an in-memory Repository mirroring the SQL semantics, including
// the set-once signature timestamps.
type memRepo struct {
	seqs   map[int64]int64
	notes  map[int64]*DeliveryNote
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{seqs: map[int64]int64{}, notes: map[int64]*DeliveryNote{}}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) NextNoteNumber(_ context.Context, tenantID int64) (int64, error) {
	m.seqs[tenantID]++
	return m.seqs[tenantID], nil
}

func (m *memRepo) Create(_ context.Context, note DeliveryNote) (int64, error) {
	m.nextID++
	note.ID = m.nextID
	note.CreatedAt = time.Now()
	m.notes[note.ID] = &note
	return note.ID, nil
}

func (m *memRepo) Get(_ context.Context, tenantID, id int64) (*DeliveryNote, error) {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, req ListNotesRequest) ([]DeliveryNote, int, error) {
	var out []DeliveryNote
	for id := m.nextID; id >= 1; id-- {
		n, ok := m.notes[id]
		if !ok || n.TenantID != req.TenantID || n.DeletedAt != nil {
			continue
		}
		if req.WorkerID != nil && n.WorkerID != *req.WorkerID {
			continue
		}
		if req.Status != nil && n.Status != *req.Status {
			continue
		}
		if req.Invoiced != nil && n.IsInvoiced != *req.Invoiced {
			continue
		}
		out = append(out, *n)
	}
	total := len(out)
	if req.Limit > 0 {
		start := req.Offset
		if start > total {
			start = total
		}
		end := start + req.Limit
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *memRepo) ListDeleted(_ context.Context, tenantID int64, limit, offset int) ([]DeliveryNote, int, error) {
	var out []DeliveryNote
	for id := int64(1); id <= m.nextID; id++ {
		n, ok := m.notes[id]
		if ok && n.TenantID == tenantID && n.DeletedAt != nil {
			out = append(out, *n)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, tenantID, id int64, updates map[string]any) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "client_name":
			n.ClientName = v.(string)
		case "destination":
			n.Destination = v.(string)
		case "vehicle_type":
			s := v.(string)
			n.VehicleType = &s
		case "observations":
			s := v.(string)
			n.Observations = &s
		case "wait_time":
			w := v.(int)
			n.WaitTime = &w
		case "photo":
			s := v.(string)
			n.Photo = &s
		case "signature":
			s := v.(string)
			n.Signature = &s
		case "origin_signature":
			s := v.(string)
			n.OriginSignature = &s
		case "origin_signature_document":
			s := v.(string)
			n.OriginSignatureDocument = &s
		case "origin_signed_at":
			if n.OriginSignedAt == nil {
				ts := v.(time.Time)
				n.OriginSignedAt = &ts
			}
		case "destination_signature":
			s := v.(string)
			n.DestinationSignature = &s
		case "destination_signature_document":
			s := v.(string)
			n.DestinationSignatureDocument = &s
		case "destination_signed_at":
			if n.DestinationSignedAt == nil {
				ts := v.(time.Time)
				n.DestinationSignedAt = &ts
			}
		case "status":
			n.Status = v.(string)
		case "signed_at":
			ts := v.(time.Time)
			n.SignedAt = &ts
		case "arrived_at":
			ts := v.(time.Time)
			n.ArrivedAt = &ts
		case "departed_at":
			ts := v.(time.Time)
			n.DepartedAt = &ts
		}
	}
	return nil
}

func (m *memRepo) SoftDelete(_ context.Context, tenantID, id, deletedBy int64, at time.Time) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID || n.DeletedAt != nil {
		return ErrNotFound
	}
	n.DeletedAt = &at
	n.DeletedBy = &deletedBy
	return nil
}

func (m *memRepo) Restore(_ context.Context, tenantID, id int64) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID || n.DeletedAt == nil {
		return ErrNotFound
	}
	n.DeletedAt = nil
	n.DeletedBy = nil
	return nil
}

func (m *memRepo) HardDelete(_ context.Context, tenantID, id int64) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID || n.DeletedAt == nil {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memRepo) ListInvoiceCandidates(_ context.Context, tenantID int64) ([]DeliveryNote, error) {
	var out []DeliveryNote
	for id := int64(1); id <= m.nextID; id++ {
		n, ok := m.notes[id]
		if ok && n.TenantID == tenantID && n.DeletedAt == nil && !n.IsInvoiced {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memRepo) SetInvoiced(_ context.Context, tenantID, id int64, invoiced bool, at *time.Time) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID || n.DeletedAt != nil {
		return ErrNotFound
	}
	n.IsInvoiced = invoiced
	n.InvoicedAt = at
	return nil
}

type stubEvents struct {
	signed []int64
}

func (e *stubEvents) NoteFullySigned(_ context.Context, _, noteID int64) {
	e.signed = append(e.signed, noteID)
}

type stubMetrics struct {
	signed int
}

func (m *stubMetrics) NoteSigned() { m.signed++ }

func adminIdent() *shared.Identity {
	return &shared.Identity{UserID: 1, TenantID: 1, Name: "Admin", Role: shared.RoleAdmin}
}

func workerIdent(userID int64) *shared.Identity {
	return &shared.Identity{UserID: userID, TenantID: 1, Name: "Worker", Role: shared.RoleWorker}
}

func newTestService(t *testing.T) (*Service, *memRepo, *stubEvents, *stubMetrics) {
	t.Helper()
	repo := newMemRepo()
	events := &stubEvents{}
	metrics := &stubMetrics{}
	svc := NewService(ServiceParams{Repo: repo, Events: events, Metrics: metrics})
	return svc, repo, events, metrics
}

func createNote(t *testing.T, svc *Service, ident *shared.Identity, workerID int64) *DeliveryNote {
	t.Helper()
	note, err := svc.Create(context.Background(), ident, CreateNoteRequest{
		WorkerID:    workerID,
		ClientName:  "Logística Pérez",
		Destination: "Calle Mayor 1, Madrid",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PickupOrigins: []PickupOriginRequest{
			{Name: "Warehouse A", Address: "Polígono Norte 5"},
		},
	})
	require.NoError(t, err)
	return note
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	first := createNote(t, svc, adminIdent(), 2)
	second := createNote(t, svc, adminIdent(), 2)

	assert.Equal(t, int64(1), first.NoteNumber)
	assert.Equal(t, int64(2), second.NoteNumber)
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, CreatorAdmin, first.Creator)
}

func TestCreateWorkerAlwaysSelfAssigns(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	note := createNote(t, svc, workerIdent(5), 99)
	assert.Equal(t, int64(5), note.WorkerID)
	assert.Equal(t, CreatorWorker, note.Creator)
}

func TestUpdateNormalizesDocumentAndSetsTimestampOnce(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	t1 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t1 }

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature:         strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument: strptr("  12345678a "),
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678A", *updated.OriginSignatureDocument)
	require.NotNil(t, updated.OriginSignedAt)
	assert.Equal(t, t1, *updated.OriginSignedAt)

	// A later partial save must not move the first timestamp.
	t2 := t1.Add(2 * time.Hour)
	svc.now = func() time.Time { return t2 }
	updated, err = svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature: strptr("data:image/png;base64,retry"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.OriginSignedAt)
	assert.Equal(t, t1, *updated.OriginSignedAt)

	stored, err := repo.Get(context.Background(), 1, note.ID)
	require.NoError(t, err)
	assert.Equal(t, t1, *stored.OriginSignedAt)
}

func TestUpdateRejectsShortDocument(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	_, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignatureDocument: strptr("1234567"),
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateFlipsSignedExactlyOnce(t *testing.T) {
	svc, _, events, metrics := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	signedAt := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return signedAt }

	_, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature:         strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument: strptr("12345678A"),
	})
	require.NoError(t, err)
	assert.Empty(t, events.signed)

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		DestinationSignature:         strptr("data:image/png;base64,bbb"),
		DestinationSignatureDocument: strptr("87654321B"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, updated.Status)
	require.NotNil(t, updated.SignedAt)
	assert.Equal(t, signedAt, *updated.SignedAt)
	assert.Equal(t, []int64{note.ID}, events.signed)
	assert.Equal(t, 1, metrics.signed)

	// Further edits do not re-fire the signed event.
	svc.now = func() time.Time { return signedAt.Add(time.Hour) }
	updated, err = svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		Observations: strptr("delivered at dock 4"),
	})
	require.NoError(t, err)
	assert.Equal(t, signedAt, *updated.SignedAt)
	assert.Len(t, events.signed, 1)
	assert.Equal(t, 1, metrics.signed)
}

func TestUpdateLegacyPairFlipsSigned(t *testing.T) {
	svc, _, events, _ := newTestService(t)
	note := createNote(t, svc, workerIdent(5), 5)

	bigPhoto := make([]byte, MinPhotoLength+1)
	for i := range bigPhoto {
		bigPhoto[i] = 'p'
	}
	updated, err := svc.Update(context.Background(), workerIdent(5), note.ID, UpdateNoteRequest{
		Photo:     strptr(string(bigPhoto)),
		Signature: strptr("data:image/png;base64,legacy"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, updated.Status)
	assert.Len(t, events.signed, 1)
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{})
	require.NoError(t, err)
	assert.Equal(t, note.ID, updated.ID)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestWorkerCannotTouchOthersNotes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, workerIdent(5), 5)

	_, err := svc.Get(context.Background(), workerIdent(6), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), workerIdent(6), note.ID, UpdateNoteRequest{
		Observations: strptr("nope"),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), workerIdent(6), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTrashedNoteRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	require.NoError(t, svc.Delete(context.Background(), adminIdent(), note.ID))

	_, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		Observations: strptr("ghost edit"),
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func signFully(t *testing.T, svc *Service, ident *shared.Identity, id int64) {
	t.Helper()
	_, err := svc.Update(context.Background(), ident, id, UpdateNoteRequest{
		OriginSignature:              strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignature:         strptr("data:image/png;base64,bbb"),
		DestinationSignatureDocument: strptr("87654321B"),
	})
	require.NoError(t, err)
}

func TestToggleInvoicedRequiresFullSignature(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	_, err := svc.ToggleInvoiced(context.Background(), adminIdent(), note.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	signFully(t, svc, adminIdent(), note.ID)

	updated, err := svc.ToggleInvoiced(context.Background(), adminIdent(), note.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsInvoiced)
	assert.NotNil(t, updated.InvoicedAt)

	// Toggling back clears the flag and the stamp.
	updated, err = svc.ToggleInvoiced(context.Background(), adminIdent(), note.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsInvoiced)
	assert.Nil(t, updated.InvoicedAt)
}

func TestTrashAndRestorePreserveEverything(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)
	signFully(t, svc, adminIdent(), note.ID)
	_, err := svc.ToggleInvoiced(context.Background(), adminIdent(), note.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), adminIdent(), note.ID))

	// Gone from the active listing and from direct access.
	list, err := svc.List(context.Background(), adminIdent(), ListNotesRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Notes)
	_, err = svc.Get(context.Background(), adminIdent(), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Present in the trash.
	trash, err := svc.ListDeleted(context.Background(), adminIdent(), 50, 0)
	require.NoError(t, err)
	require.Len(t, trash.Notes, 1)
	assert.NotNil(t, trash.Notes[0].DeletedAt)

	restored, err := svc.Restore(context.Background(), adminIdent(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.NoteNumber, restored.NoteNumber)
	assert.True(t, restored.IsInvoiced)
	assert.NotNil(t, restored.SignedAt)
	assert.NotNil(t, restored.OriginSignature)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, restored.DeletedBy)
}

func TestRestoreActiveNoteRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	_, err := svc.Restore(context.Background(), adminIdent(), note.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestPurgeOnlyFromTrash(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	err := svc.Purge(context.Background(), adminIdent(), note.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	require.NoError(t, svc.Delete(context.Background(), adminIdent(), note.ID))
	require.NoError(t, svc.Purge(context.Background(), adminIdent(), note.ID))

	_, err = repo.Get(context.Background(), 1, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Purged notes leave no trace to restore.
	_, err = svc.Restore(context.Background(), adminIdent(), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFullySignedFilterUsesPredicate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	signed := createNote(t, svc, adminIdent(), 2)
	unsigned := createNote(t, svc, adminIdent(), 2)
	signFully(t, svc, adminIdent(), signed.ID)

	yes := true
	list, err := svc.List(context.Background(), adminIdent(), ListNotesRequest{FullySigned: &yes})
	require.NoError(t, err)
	require.Len(t, list.Notes, 1)
	assert.Equal(t, signed.ID, list.Notes[0].ID)
	assert.Equal(t, 1, list.Pagination.Total)

	no := false
	list, err = svc.List(context.Background(), adminIdent(), ListNotesRequest{FullySigned: &no})
	require.NoError(t, err)
	require.Len(t, list.Notes, 1)
	assert.Equal(t, unsigned.ID, list.Notes[0].ID)
}

func TestInvoiceCandidatesApplyGate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ready := createNote(t, svc, adminIdent(), 2)
	createNote(t, svc, adminIdent(), 2) // unsigned, excluded
	invoiced := createNote(t, svc, adminIdent(), 2)
	trashed := createNote(t, svc, adminIdent(), 2)

	signFully(t, svc, adminIdent(), ready.ID)
	signFully(t, svc, adminIdent(), invoiced.ID)
	signFully(t, svc, adminIdent(), trashed.ID)

	_, err := svc.ToggleInvoiced(context.Background(), adminIdent(), invoiced.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), adminIdent(), trashed.ID))

	candidates, err := svc.InvoiceCandidates(context.Background(), adminIdent())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, ready.ID, candidates[0].ID)
	assert.True(t, candidates[0].Completion.FullySigned)
}

func TestDocumentOnlyModeSignsWithoutDrawings(t *testing.T) {
	repo := newMemRepo()
	events := &stubEvents{}
	svc := NewService(ServiceParams{Repo: repo, Events: events, Mode: CaptureDocumentOnly})
	note := createNote(t, svc, adminIdent(), 2)

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignatureDocument: strptr("87654321B"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, updated.Status)
	assert.NotNil(t, updated.SignedAt)
	assert.Len(t, events.signed, 1)
}

func TestPatchInvoicedGoesThroughGate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, adminIdent(), 2)

	yes, no := true, false

	// An unsigned note cannot be marked invoiced through PATCH.
	_, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		IsInvoiced: &yes,
	})
	assert.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature:              strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument:      strptr("12345678A"),
		DestinationSignature:         strptr("data:image/png;base64,bbb"),
		DestinationSignatureDocument: strptr("87654321B"),
	})
	require.NoError(t, err)

	invoicedAt := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return invoicedAt }

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		IsInvoiced: &yes,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsInvoiced)
	require.NotNil(t, updated.InvoicedAt)
	assert.Equal(t, invoicedAt, *updated.InvoicedAt)

	updated, err = svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		IsInvoiced: &no,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsInvoiced)
	assert.Nil(t, updated.InvoicedAt)
}

func TestPatchInvoicedAlongsideFinalSignature(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	note := createNote(t, svc, workerIdent(5), 5)

	bigPhoto := make([]byte, MinPhotoLength+1)
	for i := range bigPhoto {
		bigPhoto[i] = 'p'
	}
	yes := true

	// The invoiced flag is evaluated after the same PATCH completes the
	// signature set, so both land together.
	updated, err := svc.Update(context.Background(), workerIdent(5), note.ID, UpdateNoteRequest{
		Photo:      strptr(string(bigPhoto)),
		Signature:  strptr("data:image/png;base64,legacy"),
		IsInvoiced: &yes,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, updated.Status)
	assert.True(t, updated.IsInvoiced)
}

func TestUpdateRejectsShortPhoto(t *testing.T) {
	svc, repo, events, _ := newTestService(t)
	note := createNote(t, svc, workerIdent(5), 5)

	_, err := svc.Update(context.Background(), workerIdent(5), note.ID, UpdateNoteRequest{
		Photo:     strptr("x"),
		Signature: strptr("data:image/png;base64,legacy"),
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	stored, err := repo.Get(context.Background(), 1, note.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Photo)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Empty(t, events.signed)
}

func TestDocumentOnlyModeDropsDrawingPayloads(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(ServiceParams{Repo: repo, Mode: CaptureDocumentOnly})
	note := createNote(t, svc, adminIdent(), 2)

	updated, err := svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature:      strptr("data:image/png;base64,aaa"),
		DestinationSignature: strptr("data:image/png;base64,bbb"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.OriginSignature)
	assert.Nil(t, updated.DestinationSignature)
	assert.Nil(t, updated.OriginSignedAt)
	assert.Equal(t, StatusPending, updated.Status)

	// Document IDs alone still drive the signature timestamps.
	updated, err = svc.Update(context.Background(), adminIdent(), note.ID, UpdateNoteRequest{
		OriginSignature:         strptr("data:image/png;base64,aaa"),
		OriginSignatureDocument: strptr("12345678A"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.OriginSignature)
	assert.NotNil(t, updated.OriginSignedAt)
}
