package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
)

// recordAudit writes a terminal outcome to the audit log, tagged to the
// cart it concerns. Audit failures are logged and swallowed; they must not
// mask the original error.
func recordAudit(ctx context.Context, audit repository.AuditRepository, log *zerolog.Logger, cartID int64, err error) {
	entry := &model.AuditEntry{
		CartID:   cartID,
		Severity: 3,
		Message:  err.Error(),
		Status:   "0",
	}
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		entry.Status = ge.Status
	}
	if aerr := audit.Record(ctx, entry); aerr != nil {
		log.Error().Err(aerr).Int64("cart_id", cartID).Msg("audit record failed")
	}
}
