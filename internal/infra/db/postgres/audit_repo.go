package postgres

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
)

var _ repository.AuditRepository = (*auditRepo)(nil)

// auditRepo stores terminal payment outcomes keyed by cart id. Entries get
// monotonic ULID ids so the log sorts by insertion time.
type auditRepo struct{ pool *pgxpool.Pool }

func NewAuditRepo(pool *pgxpool.Pool) *auditRepo {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Record(ctx context.Context, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO payment_audit_log (id, cart_id, severity, message, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	if _, err := execSQL(ctx, r.pool, nil, q, e.ID, e.CartID, e.Severity, e.Message, e.Status, e.CreatedAt); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
