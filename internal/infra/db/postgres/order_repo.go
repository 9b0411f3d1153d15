package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

func (r *orderRepo) FindByCartID(ctx context.Context, tx repository.Tx, cartID int64) (*model.Order, error) {
	const q = `
SELECT id, cart_id, customer_id, state_id, total_minor, currency_id, module_name, reference, secure_key, created_at
FROM orders WHERE cart_id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, cartID)
	if err != nil {
		return nil, err
	}
	o := &model.Order{}
	err = row.Scan(&o.ID, &o.CartID, &o.CustomerID, &o.StateID, &o.TotalMinor, &o.CurrencyID, &o.ModuleName, &o.Reference, &o.SecureKey, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

// Create inserts the order. The orders table carries UNIQUE(cart_id); a
// duplicate insert surfaces as domain.ErrAlreadyExists so the caller can
// take the already-finalized path.
func (r *orderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) (int64, error) {
	const q = `
INSERT INTO orders (cart_id, customer_id, state_id, total_minor, currency_id, module_name, reference, secure_key, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id;`

	row, err := pickRow(ctx, r.pool, tx, q, o.CartID, o.CustomerID, o.StateID, o.TotalMinor, o.CurrencyID, o.ModuleName, o.Reference, o.SecureKey, o.CreatedAt)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, domain.ErrAlreadyExists
		}
		return 0, domain.ErrOperationFailed
	}
	return id, nil
}
