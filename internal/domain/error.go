package domain

import (
	"errors"
	"fmt"
)

var (
	// Configuration / session initiation
	ErrConfigurationMissing   = errors.New("gateway configuration not set")
	ErrGatewayUnreachable     = errors.New("gateway unreachable")
	ErrInvalidGatewayResponse = errors.New("invalid gateway session response")

	// Callback authentication
	ErrMissingFields        = errors.New("missing required callback fields")
	ErrInvalidPayload       = errors.New("invalid callback payload")
	ErrMalformedToken       = errors.New("malformed signature token")
	ErrSignatureMismatch    = errors.New("callback signature mismatch")
	ErrInvalidCartReference = errors.New("invalid cart reference")

	// Reconciliation
	ErrCartNotFound         = errors.New("cart not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrReconciliationFailed = errors.New("order reconciliation failed")

	// Storage / infra
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrLockNotAcquired    = errors.New("could not acquire lock")
)

// GatewayError carries the message/status pair the gateway reports in its
// error envelope, both on rejected session creates and on unsigned error
// callbacks.
type GatewayError struct {
	Message string
	Status  string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway rejected request (status %s)", e.Status)
	}
	return fmt.Sprintf("gateway rejected request: %s (status %s)", e.Message, e.Status)
}
