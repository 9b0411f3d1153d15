package adapter

import (
	"context"

	"iris-payments/internal/domain/model"
)

// PayformResponse is the hosted payment form document relayed verbatim to
// the buyer's browser. The core never interprets it beyond the error check.
type PayformResponse struct {
	Body        []byte
	ContentType string
}

// PaymentGateway is the hex port for the IRIS/EveryPay gateway.
type PaymentGateway interface {
	Name() string

	// CreateSession performs the single-shot session-creation exchange.
	// Transport failures map to domain.ErrGatewayUnreachable, non-2xx
	// responses to *domain.GatewayError, and 2xx bodies lacking
	// signature/uuid to domain.ErrInvalidGatewayResponse.
	CreateSession(ctx context.Context, settings model.GatewaySettings, req model.SessionRequest) (model.Session, error)

	// BuildPayformRequest assembles the hosted-payment-page request. Pure
	// data transform, no network I/O.
	BuildPayformRequest(settings model.GatewaySettings, sess model.Session, req model.SessionRequest, buyer model.Buyer, billing model.BillingAddress) model.PayformRequest

	// SubmitPayform posts the payform request and returns the raw response
	// for the boundary to stream to the browser.
	SubmitPayform(ctx context.Context, req model.PayformRequest) (PayformResponse, error)
}
