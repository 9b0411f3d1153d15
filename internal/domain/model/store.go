package model

import "time"

// Cart is the storefront cart as seen by the payment flow. Totals are
// computed by the store, not here.
type Cart struct {
	ID              int64
	CustomerID      int64
	CurrencyID      int64
	Currency        string // 3-letter ISO
	DeliveryAddress *Address
	InvoiceAddress  *Address
	CreatedAt       time.Time
}

// Checkoutable reports whether the cart carries everything the session
// controller needs before talking to the gateway.
func (c *Cart) Checkoutable() bool {
	return c != nil && c.ID > 0 && c.CustomerID > 0 && c.DeliveryAddress != nil && c.InvoiceAddress != nil
}

type Address struct {
	ID         int64
	CountryISO string
	City       string
	PostalCode string
	Line1      string
	Line2      string
}

type Customer struct {
	ID        int64
	Email     string
	SecureKey string // per-customer key echoed on the confirmation redirect
	Locale    string
}

type OrderStatus string

const (
	OrderStatusPaid OrderStatus = "paid"
)

// Order is the finalized result of a verified payment callback. At most one
// order exists per cart; the store enforces this with a uniqueness
// constraint on CartID.
type Order struct {
	ID         int64
	CartID     int64
	CustomerID int64
	StateID    int
	TotalMinor int64
	CurrencyID int64
	ModuleName string
	Reference  string // opaque gateway transaction token
	SecureKey  string
	CreatedAt  time.Time
}

// AuditEntry records a terminal outcome of a session or callback request,
// keyed by cart id. Buyers only ever see the generic redirect; diagnostics
// live here.
type AuditEntry struct {
	ID        string // ULID
	CartID    int64
	Severity  int // 1 info .. 4 fatal, storefront logger convention
	Message   string
	Status    string
	CreatedAt time.Time
}
