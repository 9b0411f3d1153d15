package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/adapter"
	"iris-payments/internal/domain/ports/repository"
	"iris-payments/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// Begin creates a gateway payment session for the cart and returns the
	// hosted payment form response to relay to the buyer's browser.
	Begin(ctx context.Context, cartID int64) (adapter.PayformResponse, error)
}

// CheckoutConfig carries the storefront-side constants of the session
// exchange. Injected at construction; core logic never reads ambient
// configuration.
type CheckoutConfig struct {
	CallbackURL   string
	Country       string // 2-letter ISO sent on session create
	DefaultLocale string
}

type checkoutUC struct {
	cfg       CheckoutConfig
	carts     repository.CartRepository
	customers repository.CustomerRepository
	settings  SettingsUseCase
	gateway   adapter.PaymentGateway
	audit     repository.AuditRepository
	log       *zerolog.Logger
}

func NewCheckoutUseCase(
	cfg CheckoutConfig,
	carts repository.CartRepository,
	customers repository.CustomerRepository,
	settings SettingsUseCase,
	gateway adapter.PaymentGateway,
	audit repository.AuditRepository,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		cfg:       cfg,
		carts:     carts,
		customers: customers,
		settings:  settings,
		gateway:   gateway,
		audit:     audit,
		log:       logger,
	}
}

func (u *checkoutUC) Begin(ctx context.Context, cartID int64) (adapter.PayformResponse, error) {
	resp, err := u.begin(ctx, cartID)
	if err != nil {
		metrics.SessionCreates.WithLabelValues("fail").Inc()
		recordAudit(ctx, u.audit, u.log, cartID, err)
		return adapter.PayformResponse{}, err
	}
	metrics.SessionCreates.WithLabelValues("ok").Inc()
	return resp, nil
}

func (u *checkoutUC) begin(ctx context.Context, cartID int64) (adapter.PayformResponse, error) {
	settings, err := u.settings.Current(ctx)
	if err != nil {
		return adapter.PayformResponse{}, err
	}
	if !settings.Complete() {
		return adapter.PayformResponse{}, domain.ErrConfigurationMissing
	}

	cart, err := u.carts.Find(ctx, repository.NoTX, cartID)
	if err != nil {
		return adapter.PayformResponse{}, domain.ErrCartNotFound
	}
	if !cart.Checkoutable() {
		return adapter.PayformResponse{}, domain.ErrCartNotFound
	}

	customer, err := u.customers.Find(ctx, repository.NoTX, cart.CustomerID)
	if err != nil {
		return adapter.PayformResponse{}, domain.ErrCustomerNotFound
	}

	total, err := u.carts.OrderTotal(ctx, repository.NoTX, cart.ID)
	if err != nil {
		return adapter.PayformResponse{}, err
	}

	req := model.SessionRequest{
		AmountMinor:   total,
		Currency:      strings.ToUpper(cart.Currency),
		MerchantName:  settings.MerchantName,
		Country:       u.cfg.Country,
		CorrelationID: uuid.NewString(),
		CallbackURL:   u.cfg.CallbackURL,
		CartRef:       model.CartReference(cart.ID),
	}

	sess, err := u.gateway.CreateSession(ctx, settings, req)
	if err != nil {
		return adapter.PayformResponse{}, err
	}
	u.log.Info().Int64("cart_id", cart.ID).Str("session_uuid", sess.UUID).Msg("gateway session created")

	locale := customer.Locale
	if locale == "" {
		locale = u.cfg.DefaultLocale
	}
	buyer := model.Buyer{Email: customer.Email, Locale: locale}
	billing := model.BillingAddress{
		Country:    cart.InvoiceAddress.CountryISO,
		City:       cart.InvoiceAddress.City,
		PostalCode: cart.InvoiceAddress.PostalCode,
		Line1:      cart.InvoiceAddress.Line1,
		Line2:      cart.InvoiceAddress.Line2,
	}

	payform := u.gateway.BuildPayformRequest(settings, sess, req, buyer, billing)
	return u.gateway.SubmitPayform(ctx, payform)
}
