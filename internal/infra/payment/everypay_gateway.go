package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/adapter"
)

const (
	sandboxAPIBase     = "https://sandbox-api.everypay.gr"
	productionAPIBase  = "https://api.everypay.gr"
	sandboxPayformURL  = "https://sandbox-payform-api.everypay.gr/api/payment-methods/iris"
	prodPayformURL     = "https://payform-api.everypay.gr/api/payment-methods/iris"
	sessionPath        = "/iris/sessions"
	payformContentType = "application/json"
)

// Compile-time check
var _ adapter.PaymentGateway = (*EveryPayGateway)(nil)

// EveryPayGateway implements the PaymentGateway port using direct HTTP
// calls against the IRIS/EveryPay API.
type EveryPayGateway struct {
	client *http.Client
}

func NewEveryPayGateway(client *http.Client) *EveryPayGateway {
	if client == nil {
		client = &http.Client{}
	}
	return &EveryPayGateway{client: client}
}

func (g *EveryPayGateway) Name() string { return "irispayments" }

// sessionResponse represents the 2xx body of the session-creation API.
type sessionResponse struct {
	Signature string `json:"signature"`
	UUID      string `json:"uuid"`
}

// errorEnvelope is the gateway's error body shape. Status arrives as a
// string or a number depending on the endpoint, so it is captured raw.
type errorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Status  json.RawMessage `json:"status"`
	} `json:"error"`
}

func (e *errorEnvelope) toGatewayError(httpStatus int) *domain.GatewayError {
	ge := &domain.GatewayError{Status: strconv.Itoa(httpStatus)}
	if e.Error != nil {
		ge.Message = e.Error.Message
		if s := strings.Trim(string(e.Error.Status), `"`); s != "" && s != "null" {
			ge.Status = s
		}
	}
	return ge
}

func (g *EveryPayGateway) CreateSession(ctx context.Context, settings model.GatewaySettings, req model.SessionRequest) (model.Session, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency)
	form.Set("merchantName", req.MerchantName)
	form.Set("country", req.Country)
	form.Set("uuid", req.CorrelationID)
	form.Set("callback_url", req.CallbackURL)
	form.Set("md", req.CartRef)

	base := productionAPIBase
	if settings.Sandbox {
		base = sandboxAPIBase
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return model.Session{}, fmt.Errorf("create session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(settings.SecretKey, "")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env errorEnvelope
		_ = json.Unmarshal(body, &env)
		return model.Session{}, env.toGatewayError(resp.StatusCode)
	}

	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", domain.ErrInvalidGatewayResponse, err)
	}
	if sess.Signature == "" || sess.UUID == "" {
		return model.Session{}, domain.ErrInvalidGatewayResponse
	}
	return model.Session{Signature: sess.Signature, UUID: sess.UUID}, nil
}

func (g *EveryPayGateway) BuildPayformRequest(settings model.GatewaySettings, sess model.Session, req model.SessionRequest, buyer model.Buyer, billing model.BillingAddress) model.PayformRequest {
	endpoint := prodPayformURL
	if settings.Sandbox {
		endpoint = sandboxPayformURL
	}
	return model.PayformRequest{
		URL: endpoint,
		Body: model.PayformBody{
			Flow:            "direct",
			Token:           sess.Signature,
			Signature:       sess.Signature,
			PublicKey:       settings.PublicKey,
			Amount:          req.AmountMinor,
			Currency:        req.Currency,
			UUID:            sess.UUID,
			CallbackURL:     req.CallbackURL,
			MD:              req.CartRef,
			Locale:          buyer.Locale,
			PayerEmail:      buyer.Email,
			BillingCountry:  billing.Country,
			BillingCity:     billing.City,
			BillingPostal:   billing.PostalCode,
			BillingAddress1: billing.Line1,
			BillingAddress2: billing.Line2,
		},
	}
}

// SubmitPayform posts the payform request and returns the raw response for
// the boundary to stream to the browser. The hosted form arrives as an
// HTML/JS document; a body that decodes to JSON carrying an error object is
// the gateway reporting failure instead of serving the form.
func (g *EveryPayGateway) SubmitPayform(ctx context.Context, req model.PayformRequest) (adapter.PayformResponse, error) {
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return adapter.PayformResponse{}, fmt.Errorf("marshal payform body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return adapter.PayformResponse{}, fmt.Errorf("create payform request: %w", err)
	}
	httpReq.Header.Set("Content-Type", payformContentType)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.PayformResponse{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.PayformResponse{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}

	var env errorEnvelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Error != nil {
		return adapter.PayformResponse{}, env.toGatewayError(resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "text/html; charset=utf-8"
	}
	return adapter.PayformResponse{Body: body, ContentType: ct}, nil
}
