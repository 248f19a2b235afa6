package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/camino-saas/camino/internal/jobs"
)

// BackupJob exports tenant data to newline-delimited JSON files under the
// configured backup directory. The nightly backup:all task fans out one
// backup:tenant task per active tenant; the three entity exports of a tenant
// run concurrently.
type BackupJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBackupJob wires dependencies for the backup handlers.
func NewBackupJob(pool *pgxpool.Pool, client *Client, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *BackupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupJob{
		Pool:    pool,
		Client:  client,
		Dir:     dir,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (j *BackupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// HandleAll processes TaskTypeBackupAll: one task per active tenant.
func (j *BackupJob) HandleAll(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("backup: handler not configured")
	}
	tracker := j.metrics().Track(TaskTypeBackupAll)

	rows, err := j.Pool.Query(ctx, `SELECT id FROM tenants WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return tracker.End(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return tracker.End(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return tracker.End(err)
	}

	for _, id := range ids {
		task, err := NewTenantBackupTask(TenantBackupPayload{TenantID: id})
		if err != nil {
			return tracker.End(err)
		}
		if _, err := j.Client.Enqueue(ctx, task); err != nil {
			return tracker.End(err)
		}
	}
	j.Logger.Info("tenant backups scheduled", slog.Int("tenants", len(ids)))
	return tracker.End(nil)
}

// HandleTenant processes TaskTypeTenantBackup.
func (j *BackupJob) HandleTenant(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("backup: handler not configured")
	}
	var payload TenantBackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeTenantBackup)
	err := j.backupTenant(ctx, payload.TenantID)
	if err != nil {
		j.Logger.Error("tenant backup",
			slog.Int64("tenant_id", payload.TenantID), slog.Any("error", err))
	}
	return tracker.End(err)
}

func (j *BackupJob) backupTenant(ctx context.Context, tenantID int64) error {
	stamp := j.clock().Format("2006-01-02")
	dir := filepath.Join(j.Dir, fmt.Sprintf("tenant-%d", tenantID), stamp)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	exports := []struct {
		file  string
		query string
	}{
		{"delivery_notes.jsonl", `
			SELECT row_to_json(n) FROM delivery_notes n
			WHERE n.tenant_id = $1 ORDER BY n.id`},
		{"invoices.jsonl", `
			SELECT row_to_json(i) FROM invoices i
			WHERE i.tenant_id = $1 ORDER BY i.id`},
		{"quotes.jsonl", `
			SELECT row_to_json(q) FROM quotes q
			WHERE q.tenant_id = $1 ORDER BY q.id`},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range exports {
		g.Go(func() error {
			return j.exportQuery(gctx, filepath.Join(dir, e.file), e.query, tenantID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	j.Logger.Info("tenant backup written",
		slog.Int64("tenant_id", tenantID), slog.String("dir", dir))
	return nil
}

func (j *BackupJob) exportQuery(ctx context.Context, path, query string, tenantID int64) error {
	rows, err := j.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return err
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for rows.Next() {
		var line []byte
		if err := rows.Scan(&line); err != nil {
			return err
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return f.Sync()
}
