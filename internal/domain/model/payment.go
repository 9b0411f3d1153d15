package model

import (
	"fmt"
	"strconv"
	"strings"

	"iris-payments/internal/domain"
)

const cartRefPrefix = "cart:"

// CartReference encodes a cart id into the opaque md token echoed back by
// the gateway.
func CartReference(cartID int64) string {
	return cartRefPrefix + strconv.FormatInt(cartID, 10)
}

// ParseCartReference extracts a positive cart id from an md token. Anything
// not of the form "cart:<positive int>" is rejected before any gateway
// field is trusted.
func ParseCartReference(md string) (int64, error) {
	if !strings.HasPrefix(md, cartRefPrefix) {
		return 0, domain.ErrInvalidCartReference
	}
	id, err := strconv.ParseInt(md[len(cartRefPrefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidCartReference
	}
	return id, nil
}

// GatewaySettings is the shop-scoped merchant configuration. It is loaded by
// the settings use case and injected read-only into the checkout/callback
// paths; core logic never reaches into an ambient config store.
type GatewaySettings struct {
	PublicKey    string
	SecretKey    string
	MerchantName string
	OrderStateID int
	Sandbox      bool
}

func (s GatewaySettings) Complete() bool {
	return s.PublicKey != "" && s.SecretKey != ""
}

// SessionRequest is built once per checkout attempt and sent to the
// gateway's session-creation endpoint.
type SessionRequest struct {
	AmountMinor   int64  // minor units (cents), never float
	Currency      string // 3-letter ISO, uppercase
	MerchantName  string
	Country       string // 2-letter ISO
	CorrelationID string // UUIDv4
	CallbackURL   string
	CartRef       string // "cart:<id>"
}

// Session is the gateway-side record for one checkout attempt. Consumed
// immediately to build the payform payload; never persisted.
type Session struct {
	Signature string
	UUID      string
}

// Buyer and BillingAddress carry the customer fields forwarded to the
// hosted payment form.
type Buyer struct {
	Email  string
	Locale string
}

type BillingAddress struct {
	Country    string
	City       string
	PostalCode string
	Line1      string
	Line2      string
}

// PayformRequest is the assembled hosted-payment-page request: endpoint URL
// plus the JSON body the payform API expects. Pure data, no I/O.
type PayformRequest struct {
	URL  string
	Body PayformBody
}

type PayformBody struct {
	Flow            string `json:"flow"`
	Token           string `json:"token"`
	Signature       string `json:"signature"`
	PublicKey       string `json:"pk"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	UUID            string `json:"uuid"`
	CallbackURL     string `json:"callback_url"`
	MD              string `json:"md"`
	Locale          string `json:"locale"`
	PayerEmail      string `json:"payer_email"`
	BillingCountry  string `json:"billing_country"`
	BillingCity     string `json:"billing_city"`
	BillingPostal   string `json:"billing_postal_code"`
	BillingAddress1 string `json:"billing_address_line1"`
	BillingAddress2 string `json:"billing_address_line2"`
}

// CallbackEnvelope is the raw inbound callback: either the structured
// md/token/hash fields, or a raw body fallback when they are absent.
// Transient, one per HTTP callback.
type CallbackEnvelope struct {
	MD      string
	Token   string
	Hash    string
	RawBody []byte
}

// VerifiedCallback is only constructed after the callback signature has
// been validated. No code path may read gateway-asserted fields without
// holding one of these.
type VerifiedCallback struct {
	CartID           int64
	TransactionToken string
	GatewayFields    map[string]any
}

// RedirectTarget is the terminal outcome of the callback path: either an
// order-confirmation redirect or a generic error redirect. Gateway-internal
// detail never reaches the buyer; it goes to the audit log instead.
type RedirectTarget struct {
	Confirmed bool
	CartID    int64
	OrderID   int64
	SecureKey string
}

func ErrorRedirect() RedirectTarget { return RedirectTarget{} }

func ConfirmationRedirect(cartID, orderID int64, secureKey string) RedirectTarget {
	return RedirectTarget{Confirmed: true, CartID: cartID, OrderID: orderID, SecureKey: secureKey}
}

func (r RedirectTarget) String() string {
	if !r.Confirmed {
		return "error redirect"
	}
	return fmt.Sprintf("confirmation redirect (cart %d, order %d)", r.CartID, r.OrderID)
}
