package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/camino-saas/camino/internal/jobs"
)

// NoteSignedJob emails the tenant contact when a delivery note collects its
// full signature set. A note that disappeared before the task ran is not an
// error.
type NoteSignedJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewNoteSignedJob wires dependencies for the handler.
func NewNoteSignedJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *NoteSignedJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteSignedJob{Pool: pool, Client: client, Logger: logger, Metrics: metrics}
}

func (j *NoteSignedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// Handle processes TaskTypeNoteSigned tasks.
func (j *NoteSignedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("note signed: handler not configured")
	}
	var payload NoteSignedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeNoteSigned)
	err := j.notify(ctx, payload)
	return tracker.End(err)
}

func (j *NoteSignedJob) notify(ctx context.Context, payload NoteSignedPayload) error {
	var (
		noteNumber int64
		clientName string
		email      string
		tenantName string
	)
	err := j.Pool.QueryRow(ctx, `
		SELECT n.note_number, n.client_name, t.contact_email, t.name
		FROM delivery_notes n
		JOIN tenants t ON t.id = n.tenant_id
		WHERE n.id = $1 AND n.tenant_id = $2 AND n.deleted_at IS NULL
	`, payload.NoteID, payload.TenantID).Scan(&noteNumber, &clientName, &email, &tenantName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			j.Logger.Info("note gone before notification",
				slog.Int64("tenant_id", payload.TenantID),
				slog.Int64("note_id", payload.NoteID))
			return nil
		}
		return err
	}
	if email == "" {
		return nil
	}

	subject := fmt.Sprintf("Delivery note #%d fully signed", noteNumber)
	body := fmt.Sprintf(
		"Hello %s,\n\nDelivery note #%d for %s now carries both signatures and is ready for invoicing.\n",
		tenantName, noteNumber, clientName)

	_, err = j.Client.EnqueueSendEmail(ctx, SendEmailPayload{To: email, Subject: subject, Body: body})
	return err
}
