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

// InvoiceCreatedJob emails the tenant contact when an invoice is issued. An
// invoice that disappeared before the task ran is not an error.
type InvoiceCreatedJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewInvoiceCreatedJob wires dependencies for the handler.
func NewInvoiceCreatedJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvoiceCreatedJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceCreatedJob{Pool: pool, Client: client, Logger: logger, Metrics: metrics}
}

func (j *InvoiceCreatedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// Handle processes TaskTypeInvoiceCreated tasks.
func (j *InvoiceCreatedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("invoice created: handler not configured")
	}
	var payload InvoiceCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeInvoiceCreated)
	err := j.notify(ctx, payload)
	return tracker.End(err)
}

func (j *InvoiceCreatedJob) notify(ctx context.Context, payload InvoiceCreatedPayload) error {
	var (
		invoiceNumber int64
		clientName    string
		totalCents    int64
		email         string
		tenantName    string
	)
	err := j.Pool.QueryRow(ctx, `
		SELECT i.invoice_number, i.client_name, i.total_cents, t.contact_email, t.name
		FROM invoices i
		JOIN tenants t ON t.id = i.tenant_id
		WHERE i.id = $1 AND i.tenant_id = $2
	`, payload.InvoiceID, payload.TenantID).Scan(&invoiceNumber, &clientName, &totalCents, &email, &tenantName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			j.Logger.Info("invoice gone before notification",
				slog.Int64("tenant_id", payload.TenantID),
				slog.Int64("invoice_id", payload.InvoiceID))
			return nil
		}
		return err
	}
	if email == "" {
		return nil
	}

	subject := fmt.Sprintf("Invoice #%d issued", invoiceNumber)
	body := fmt.Sprintf(
		"Hello %s,\n\nInvoice #%d for %s was issued for a total of %.2f EUR.\n",
		tenantName, invoiceNumber, clientName, float64(totalCents)/100)

	_, err = j.Client.EnqueueSendEmail(ctx, SendEmailPayload{To: email, Subject: subject, Body: body})
	return err
}
