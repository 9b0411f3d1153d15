package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"iris-payments/internal/domain/model"
	"iris-payments/internal/infra/metrics"
	"iris-payments/internal/usecase"
)

// RedirectURLs are the storefront pages terminal outcomes resolve to.
type RedirectURLs struct {
	Confirmation string // order-confirmation page
	Checkout     string // checkout page, receives the generic error marker
	ModuleID     int    // storefront module id echoed on confirmation
}

// Server exposes the buyer-facing payment endpoints. Use cases return typed
// outcomes; this layer alone translates them into redirects, so no internal
// error detail ever reaches the browser.
type Server struct {
	checkoutUC usecase.CheckoutUseCase
	callbackUC usecase.CallbackUseCase
	urls       RedirectURLs
	log        *zerolog.Logger
}

func NewServer(checkoutUC usecase.CheckoutUseCase, callbackUC usecase.CallbackUseCase, urls RedirectURLs, logger *zerolog.Logger) *Server {
	return &Server{checkoutUC: checkoutUC, callbackUC: callbackUC, urls: urls, log: logger}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/payment/iris/session/{cartID}", s.handleSession)
	r.HandleFunc("/payment/iris/callback", s.handleCallback)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// handleSession starts a checkout: creates the gateway session and relays
// the hosted payment form document to the browser.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil || cartID <= 0 {
		s.redirectError(w, r)
		return
	}

	resp, err := s.checkoutUC.Begin(ctx, cartID)
	if err != nil {
		s.log.Error().Err(err).Int64("cart_id", cartID).Msg("session initiation failed")
		s.redirectError(w, r)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

// handleCallback accepts the gateway's server-to-server notification. The
// gateway posts either form fields or a raw JSON body; both are passed to
// the use case as a single envelope.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	_ = r.ParseForm()
	env := model.CallbackEnvelope{
		MD:    r.Form.Get("md"),
		Token: r.Form.Get("token"),
		Hash:  r.Form.Get("hash"),
	}
	if env.MD == "" && env.Token == "" && env.Hash == "" {
		env.RawBody, _ = io.ReadAll(r.Body)
	}

	target, err := s.callbackUC.Handle(ctx, env)
	result := "ok"
	if err != nil {
		result = "fail"
		s.log.Error().Err(err).Str("md", env.MD).Msg("callback rejected")
	}
	metrics.CallbackDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	http.Redirect(w, r, s.redirectURL(target), http.StatusFound)
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.redirectURL(model.ErrorRedirect()), http.StatusFound)
}

// redirectURL maps a terminal outcome to the storefront page the buyer
// lands on. Error outcomes carry only the generic marker.
func (s *Server) redirectURL(t model.RedirectTarget) string {
	if !t.Confirmed {
		return s.urls.Checkout + "?is_iris_error=true"
	}
	q := url.Values{}
	q.Set("id_cart", strconv.FormatInt(t.CartID, 10))
	q.Set("id_module", strconv.Itoa(s.urls.ModuleID))
	q.Set("id_order", strconv.FormatInt(t.OrderID, 10))
	q.Set("key", t.SecureKey)
	return fmt.Sprintf("%s?%s", s.urls.Confirmation, q.Encode())
}
