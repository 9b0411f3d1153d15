package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
	"iris-payments/internal/infra/metrics"
	"iris-payments/internal/infra/payment"
)

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

type CallbackUseCase interface {
	// Handle authenticates a gateway callback and drives reconciliation.
	// Every outcome terminates in a RedirectTarget; the error is returned
	// alongside for logging only and never reaches the buyer.
	Handle(ctx context.Context, env model.CallbackEnvelope) (model.RedirectTarget, error)
}

const (
	callbackLockTTL = 30 * time.Second
	moduleName      = "IRIS Payments (EveryPay)"
)

type callbackUC struct {
	carts     repository.CartRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	settings  SettingsUseCase
	audit     repository.AuditRepository
	locker    repository.Locker
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewCallbackUseCase(
	carts repository.CartRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	settings SettingsUseCase,
	audit repository.AuditRepository,
	locker repository.Locker,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *callbackUC {
	return &callbackUC{
		carts:     carts,
		customers: customers,
		orders:    orders,
		settings:  settings,
		audit:     audit,
		locker:    locker,
		tm:        tm,
		log:       logger,
	}
}

func (u *callbackUC) Handle(ctx context.Context, env model.CallbackEnvelope) (model.RedirectTarget, error) {
	settings, err := u.settings.Current(ctx)
	if err == nil && settings.SecretKey == "" {
		err = domain.ErrConfigurationMissing
	}
	if err != nil {
		metrics.CallbackVerifications.WithLabelValues("fail", "no_config").Inc()
		recordAudit(ctx, u.audit, u.log, 0, err)
		return model.ErrorRedirect(), err
	}

	verified, err := Authenticate(env, []byte(settings.SecretKey))
	if err != nil {
		metrics.CallbackVerifications.WithLabelValues("fail", verifyFailReason(err)).Inc()
		// Tag the audit entry with the claimed cart id when the reference
		// parses; the claim itself is still untrusted.
		cartID, _ := model.ParseCartReference(env.MD)
		recordAudit(ctx, u.audit, u.log, cartID, err)
		return model.ErrorRedirect(), err
	}
	metrics.CallbackVerifications.WithLabelValues("ok", "").Inc()

	target, err := u.reconcile(ctx, settings, verified)
	if err != nil {
		metrics.OrderFinalizations.WithLabelValues("fail").Inc()
		recordAudit(ctx, u.audit, u.log, verified.CartID, err)
		return model.ErrorRedirect(), err
	}
	return target, nil
}

// Authenticate runs the callback authentication pipeline. It is the only
// constructor of VerifiedCallback: no gateway-asserted field is readable
// before the signature check passes. Every failure short-circuits.
func Authenticate(env model.CallbackEnvelope, secret []byte) (*model.VerifiedCallback, error) {
	md, token, hash := env.MD, env.Token, env.Hash

	// Raw-body fallback when the structured fields are absent.
	if md == "" && token == "" && hash == "" {
		if len(env.RawBody) == 0 {
			return nil, domain.ErrMissingFields
		}
		var body struct {
			MD    string `json:"md"`
			Token string `json:"token"`
			Hash  string `json:"hash"`
			Error *struct {
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		if err := json.Unmarshal(env.RawBody, &body); err != nil {
			return nil, domain.ErrInvalidPayload
		}
		// Error callbacks are not signed; they are reported before any
		// signature handling.
		if body.Error != nil && body.Error.Status != "" {
			return nil, &domain.GatewayError{Message: body.Error.Message, Status: body.Error.Status}
		}
		md, token, hash = body.MD, body.Token, body.Hash
	}

	if md == "" || token == "" || hash == "" {
		return nil, domain.ErrMissingFields
	}

	sigHex, payload, err := payment.DecodeToken(hash)
	if err != nil {
		return nil, err
	}
	if !payment.Verify(sigHex, payload, secret) {
		return nil, domain.ErrSignatureMismatch
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	cartID, err := model.ParseCartReference(md)
	if err != nil {
		return nil, err
	}

	return &model.VerifiedCallback{
		CartID:           cartID,
		TransactionToken: token,
		GatewayFields:    fields,
	}, nil
}

// reconcile finalizes the order for a verified callback exactly once.
// Duplicate callbacks for the same cart are serialized by a per-cart lock;
// the orders table's uniqueness constraint on cart_id backstops the race
// when the lock cannot be held.
func (u *callbackUC) reconcile(ctx context.Context, settings model.GatewaySettings, vc *model.VerifiedCallback) (model.RedirectTarget, error) {
	lockKey := fmt.Sprintf("iris:callback:cart:%d", vc.CartID)
	if token, err := u.locker.TryLock(ctx, lockKey, callbackLockTTL); err == nil {
		defer func() { _ = u.locker.Unlock(ctx, lockKey, token) }()
	} else {
		u.log.Warn().Int64("cart_id", vc.CartID).Msg("callback lock not acquired, relying on order uniqueness")
	}

	cart, err := u.carts.Find(ctx, repository.NoTX, vc.CartID)
	if err != nil {
		return model.ErrorRedirect(), domain.ErrCartNotFound
	}

	customer, err := u.customers.Find(ctx, repository.NoTX, cart.CustomerID)
	if err != nil {
		return model.ErrorRedirect(), domain.ErrCustomerNotFound
	}

	// Idempotency guard: an already-finalized cart redirects to its
	// existing order, with no second finalization.
	if existing, err := u.orders.FindByCartID(ctx, repository.NoTX, cart.ID); err == nil {
		return model.ConfirmationRedirect(cart.ID, existing.ID, customer.SecureKey), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return model.ErrorRedirect(), fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, err)
	}

	total, err := u.carts.OrderTotal(ctx, repository.NoTX, cart.ID)
	if err != nil {
		return model.ErrorRedirect(), fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, err)
	}

	order := &model.Order{
		CartID:     cart.ID,
		CustomerID: customer.ID,
		StateID:    settings.OrderStateID,
		TotalMinor: total,
		CurrencyID: cart.CurrencyID,
		ModuleName: moduleName,
		Reference:  vc.TransactionToken,
		SecureKey:  customer.SecureKey,
		CreatedAt:  time.Now(),
	}

	var orderID int64
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		id, err := u.orders.Create(ctx, tx, order)
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost the race to a concurrent callback; the winner's order is
		// the one to confirm.
		existing, ferr := u.orders.FindByCartID(ctx, repository.NoTX, cart.ID)
		if ferr != nil {
			return model.ErrorRedirect(), fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, ferr)
		}
		return model.ConfirmationRedirect(cart.ID, existing.ID, customer.SecureKey), nil
	}
	if err != nil {
		return model.ErrorRedirect(), fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, err)
	}

	metrics.OrderFinalizations.WithLabelValues("ok").Inc()
	u.log.Info().Int64("cart_id", cart.ID).Int64("order_id", orderID).Msg("order finalized")
	return model.ConfirmationRedirect(cart.ID, orderID, customer.SecureKey), nil
}

// verifyFailReason maps authentication failures onto a bounded label set.
func verifyFailReason(err error) string {
	var ge *domain.GatewayError
	switch {
	case errors.As(err, &ge):
		return "gateway_error"
	case errors.Is(err, domain.ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "bad_payload"
	case errors.Is(err, domain.ErrInvalidCartReference):
		return "bad_cart_ref"
	default:
		return "unknown"
	}
}
