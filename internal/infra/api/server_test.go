package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/adapter"
	"iris-payments/internal/infra/api"
)

type stubCheckout struct {
	resp adapter.PayformResponse
	err  error
}

func (s stubCheckout) Begin(ctx context.Context, cartID int64) (adapter.PayformResponse, error) {
	return s.resp, s.err
}

type stubCallback struct {
	target model.RedirectTarget
	err    error
	gotEnv *model.CallbackEnvelope
}

func (s *stubCallback) Handle(ctx context.Context, env model.CallbackEnvelope) (model.RedirectTarget, error) {
	s.gotEnv = &env
	return s.target, s.err
}

func testURLs() api.RedirectURLs {
	return api.RedirectURLs{
		Confirmation: "https://shop.example/order-confirmation",
		Checkout:     "https://shop.example/order",
		ModuleID:     42,
	}
}

func newTestServer(co stubCheckout, cb *stubCallback) *api.Server {
	logger := zerolog.New(io.Discard)
	return api.NewServer(co, cb, testURLs(), &logger)
}

func TestSessionEndpointRelaysForm(t *testing.T) {
	co := stubCheckout{resp: adapter.PayformResponse{Body: []byte("<html>form</html>"), ContentType: "text/html"}}
	srv := newTestServer(co, &stubCallback{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/iris/session/7", nil)
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "<html>form</html>" {
		t.Errorf("body not relayed: %q", rec.Body.String())
	}
}

func TestSessionEndpointRedirectsOnFailure(t *testing.T) {
	cases := map[string]struct {
		path string
		co   stubCheckout
	}{
		"use case error": {"/payment/iris/session/7", stubCheckout{err: domain.ErrCartNotFound}},
		"bad cart id":    {"/payment/iris/session/abc", stubCheckout{}},
		"zero cart id":   {"/payment/iris/session/0", stubCheckout{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(tc.co, &stubCallback{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "https://shop.example/order?is_iris_error=true" {
				t.Fatalf("location = %q", loc)
			}
		})
	}
}

func TestCallbackRedirectsToConfirmation(t *testing.T) {
	cb := &stubCallback{target: model.RedirectTarget{Confirmed: true, CartID: 7, OrderID: 101, SecureKey: "sek"}}
	srv := newTestServer(stubCheckout{}, cb)

	form := url.Values{"md": {"cart:7"}, "token": {"txn"}, "hash": {"h"}}
	req := httptest.NewRequest(http.MethodPost, "/payment/iris/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("location not a url: %v", err)
	}
	q := loc.Query()
	if q.Get("id_cart") != "7" || q.Get("id_module") != "42" || q.Get("id_order") != "101" || q.Get("key") != "sek" {
		t.Fatalf("confirmation query incomplete: %q", loc.String())
	}

	if cb.gotEnv == nil || cb.gotEnv.MD != "cart:7" || cb.gotEnv.Token != "txn" || cb.gotEnv.Hash != "h" {
		t.Fatalf("form fields not passed through: %+v", cb.gotEnv)
	}
}

func TestCallbackPassesRawBodyWhenNoFormFields(t *testing.T) {
	cb := &stubCallback{target: model.ErrorRedirect(), err: domain.ErrSignatureMismatch}
	srv := newTestServer(stubCheckout{}, cb)

	body := `{"error":{"message":"declined","status":"402"}}`
	req := httptest.NewRequest(http.MethodPost, "/payment/iris/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://shop.example/order?is_iris_error=true" {
		t.Fatalf("location = %q", loc)
	}
	if cb.gotEnv == nil || string(cb.gotEnv.RawBody) != body {
		t.Fatalf("raw body not passed through: %+v", cb.gotEnv)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(stubCheckout{}, &stubCallback{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
