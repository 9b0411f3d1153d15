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

var _ repository.SettingsRepository = (*settingsRepo)(nil)

// settingsRepo persists the single-shop merchant settings row.
type settingsRepo struct{ pool *pgxpool.Pool }

func NewSettingsRepo(pool *pgxpool.Pool) *settingsRepo {
	return &settingsRepo{pool: pool}
}

func (r *settingsRepo) Load(ctx context.Context) (model.GatewaySettings, error) {
	const q = `
SELECT public_key, secret_key, merchant_name, order_state_id, sandbox
FROM gateway_settings WHERE id = 1;`

	row, err := pickRow(ctx, r.pool, nil, q)
	if err != nil {
		return model.GatewaySettings{}, err
	}
	var s model.GatewaySettings
	err = row.Scan(&s.PublicKey, &s.SecretKey, &s.MerchantName, &s.OrderStateID, &s.Sandbox)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.GatewaySettings{}, domain.ErrNotFound
	}
	if err != nil {
		return model.GatewaySettings{}, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s model.GatewaySettings) error {
	const q = `
INSERT INTO gateway_settings (id, public_key, secret_key, merchant_name, order_state_id, sandbox, updated_at)
VALUES (1, $1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO UPDATE SET
  public_key=$1, secret_key=$2, merchant_name=$3, order_state_id=$4, sandbox=$5, updated_at=NOW();`

	if _, err := execSQL(ctx, r.pool, nil, q, s.PublicKey, s.SecretKey, s.MerchantName, s.OrderStateID, s.Sandbox); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
