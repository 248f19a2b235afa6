package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeNoteSigned notifies the tenant admin that a delivery note
	// collected its full signature set.
	TaskTypeNoteSigned = "note:signed"
	// TaskTypeInvoiceCreated notifies the tenant contact that an invoice
	// was issued.
	TaskTypeInvoiceCreated = "invoice:created"
	// TaskTypeTenantBackup exports one tenant's data to the backup
	// directory.
	TaskTypeTenantBackup = "backup:tenant"
	// TaskTypeBackupAll fans out a TaskTypeTenantBackup per active
	// tenant. Scheduled nightly.
	TaskTypeBackupAll = "backup:all"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NoteSignedPayload identifies the note that just became fully signed.
type NoteSignedPayload struct {
	TenantID int64 `json:"tenant_id"`
	NoteID   int64 `json:"note_id"`
}

// NewNoteSignedTask constructs an Asynq task.
func NewNoteSignedTask(payload NoteSignedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNoteSigned, data), nil
}

// InvoiceCreatedPayload identifies the freshly issued invoice.
type InvoiceCreatedPayload struct {
	TenantID  int64 `json:"tenant_id"`
	InvoiceID int64 `json:"invoice_id"`
}

// NewInvoiceCreatedTask constructs an Asynq task.
func NewInvoiceCreatedTask(payload InvoiceCreatedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceCreated, data), nil
}

// TenantBackupPayload selects the tenant to export.
type TenantBackupPayload struct {
	TenantID int64 `json:"tenant_id"`
}

// NewTenantBackupTask constructs an Asynq task.
func NewTenantBackupTask(payload TenantBackupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTenantBackup, data), nil
}

// NewBackupAllTask constructs the nightly fan-out task.
func NewBackupAllTask() *asynq.Task {
	return asynq.NewTask(TaskTypeBackupAll, nil)
}
