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

var _ repository.CartRepository = (*cartRepo)(nil)

type cartRepo struct{ pool *pgxpool.Pool }

func NewCartRepo(pool *pgxpool.Pool) *cartRepo {
	return &cartRepo{pool: pool}
}

func (r *cartRepo) Find(ctx context.Context, tx repository.Tx, id int64) (*model.Cart, error) {
	const q = `
SELECT c.id, c.customer_id, c.currency_id, cur.iso_code, c.created_at,
       da.id, da.country_iso, da.city, da.postal_code, da.line1, da.line2,
       ia.id, ia.country_iso, ia.city, ia.postal_code, ia.line1, ia.line2
FROM carts c
JOIN currencies cur ON cur.id = c.currency_id
LEFT JOIN addresses da ON da.id = c.delivery_address_id
LEFT JOIN addresses ia ON ia.id = c.invoice_address_id
WHERE c.id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	c := &model.Cart{}
	var delivery, invoice model.Address
	var dID, iID *int64
	var dCountry, dCity, dPostal, dLine1, dLine2 *string
	var iCountry, iCity, iPostal, iLine1, iLine2 *string
	err = row.Scan(
		&c.ID, &c.CustomerID, &c.CurrencyID, &c.Currency, &c.CreatedAt,
		&dID, &dCountry, &dCity, &dPostal, &dLine1, &dLine2,
		&iID, &iCountry, &iCity, &iPostal, &iLine1, &iLine2,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if dID != nil {
		delivery = model.Address{ID: *dID, CountryISO: deref(dCountry), City: deref(dCity), PostalCode: deref(dPostal), Line1: deref(dLine1), Line2: deref(dLine2)}
		c.DeliveryAddress = &delivery
	}
	if iID != nil {
		invoice = model.Address{ID: *iID, CountryISO: deref(iCountry), City: deref(iCity), PostalCode: deref(iPostal), Line1: deref(iLine1), Line2: deref(iLine2)}
		c.InvoiceAddress = &invoice
	}
	return c, nil
}

// OrderTotal sums the cart lines in minor units, taxes included. Prices are
// stored as integer cents; no float arithmetic happens anywhere on the
// payment path.
func (r *cartRepo) OrderTotal(ctx context.Context, tx repository.Tx, id int64) (int64, error) {
	const q = `
SELECT COALESCE(SUM(l.unit_price_minor * l.quantity + l.tax_minor), 0)
FROM cart_lines l
WHERE l.cart_id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return total, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
