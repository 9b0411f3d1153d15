package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
)

var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepo(pool *pgxpool.Pool) *customerRepo {
	return &customerRepo{pool: pool}
}

func (r *customerRepo) Find(ctx context.Context, tx repository.Tx, id int64) (*model.Customer, error) {
	const q = `SELECT id, email, secure_key, COALESCE(locale, '') FROM customers WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{}
	err = row.Scan(&c.ID, &c.Email, &c.SecureKey, &c.Locale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
