package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"

	"iris-payments/internal/domain/model"
)

// Tx is an opaque transaction handle. Repositories accept nil (pool), a
// pgxpool handle, or a pgx.Tx started by the TransactionManager.
type Tx = any

// NoTX is passed when an operation should run outside any transaction.
var NoTX Tx = nil

type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

type CartRepository interface {
	Find(ctx context.Context, tx Tx, id int64) (*model.Cart, error)
	// OrderTotal returns the cart total in minor units, taxes included.
	OrderTotal(ctx context.Context, tx Tx, id int64) (int64, error)
}

type CustomerRepository interface {
	Find(ctx context.Context, tx Tx, id int64) (*model.Customer, error)
}

type OrderRepository interface {
	// FindByCartID returns domain.ErrNotFound when no order exists yet.
	FindByCartID(ctx context.Context, tx Tx, cartID int64) (*model.Order, error)
	// Create inserts the order and returns its id. A second insert for the
	// same cart fails with domain.ErrAlreadyExists (unique constraint on
	// cart_id); callers convert that into the already-finalized path.
	Create(ctx context.Context, tx Tx, o *model.Order) (int64, error)
}

type SettingsRepository interface {
	Load(ctx context.Context) (model.GatewaySettings, error)
	Save(ctx context.Context, s model.GatewaySettings) error
}

type AuditRepository interface {
	Record(ctx context.Context, e *model.AuditEntry) error
}

// Locker serializes concurrent callbacks for the same cart.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
