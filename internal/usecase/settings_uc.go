package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ SettingsUseCase = (*settingsUC)(nil)

type SettingsUseCase interface {
	// Current returns the effective gateway settings: the persisted row
	// when present, otherwise the injected file defaults.
	Current(ctx context.Context) (model.GatewaySettings, error)
	Update(ctx context.Context, s model.GatewaySettings) error
}

type settingsUC struct {
	repo     repository.SettingsRepository
	defaults model.GatewaySettings
	log      *zerolog.Logger
}

func NewSettingsUseCase(repo repository.SettingsRepository, defaults model.GatewaySettings, logger *zerolog.Logger) *settingsUC {
	return &settingsUC{repo: repo, defaults: defaults, log: logger}
}

func (u *settingsUC) Current(ctx context.Context) (model.GatewaySettings, error) {
	s, err := u.repo.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return u.defaults, nil
	}
	if err != nil {
		return model.GatewaySettings{}, err
	}
	if s.MerchantName == "" {
		s.MerchantName = u.defaults.MerchantName
	}
	if s.OrderStateID == 0 {
		s.OrderStateID = u.defaults.OrderStateID
	}
	return s, nil
}

func (u *settingsUC) Update(ctx context.Context, s model.GatewaySettings) error {
	if s.PublicKey == "" || s.SecretKey == "" || s.MerchantName == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.repo.Save(ctx, s); err != nil {
		return err
	}
	u.log.Info().Bool("sandbox", s.Sandbox).Msg("gateway settings updated")
	return nil
}
