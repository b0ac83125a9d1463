package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ems/ems/internal/platform/middleware"
)

// AuditLogRepo persists access audit entries to the case_audit table. It
// implements middleware.AuditRecorder.
type AuditLogRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewAuditLogRepo(pool *pgxpool.Pool) *AuditLogRepo {
	return &AuditLogRepo{pool: pool, timeout: 3 * time.Second}
}

// RecordAccess inserts one audit entry. The middleware runs this after the
// response is committed, so a fresh bounded context is used rather than the
// request context.
func (r *AuditLogRepo) RecordAccess(entry middleware.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO case_audit (crew_name, operation, case_id, action, ip_address,
			user_agent, path, method, request_id, status_code, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		entry.CrewName, entry.Operation, entry.CaseID, entry.Action, entry.IPAddress,
		entry.UserAgent, entry.Path, entry.Method, entry.RequestID, entry.StatusCode,
		entry.Timestamp)
	return err
}
