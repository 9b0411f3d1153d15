//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/usecase"
)

func TestSettingsCurrent_FallsBackToDefaults(t *testing.T) {
	repo := &MockSettingsRepo{} // nothing persisted
	defaults := model.GatewaySettings{PublicKey: "pk_file", SecretKey: "sk_file", MerchantName: "File Shop", OrderStateID: 2}
	uc := usecase.NewSettingsUseCase(repo, defaults, newTestLogger())

	got, err := uc.Current(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != defaults {
		t.Fatalf("expected file defaults, got %+v", got)
	}
}

func TestSettingsCurrent_PersistedRowWins(t *testing.T) {
	repo := &MockSettingsRepo{Stored: &model.GatewaySettings{PublicKey: "pk_db", SecretKey: "sk_db", Sandbox: true}}
	defaults := model.GatewaySettings{PublicKey: "pk_file", SecretKey: "sk_file", MerchantName: "File Shop", OrderStateID: 2}
	uc := usecase.NewSettingsUseCase(repo, defaults, newTestLogger())

	got, err := uc.Current(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.PublicKey != "pk_db" || got.SecretKey != "sk_db" || !got.Sandbox {
		t.Fatalf("persisted keys not used: %+v", got)
	}
	// Fields the row leaves blank keep the file defaults.
	if got.MerchantName != "File Shop" || got.OrderStateID != 2 {
		t.Fatalf("blank fields not overlaid with defaults: %+v", got)
	}
}

func TestSettingsUpdate_RejectsBlankKeys(t *testing.T) {
	repo := &MockSettingsRepo{}
	uc := usecase.NewSettingsUseCase(repo, model.GatewaySettings{}, newTestLogger())

	cases := []model.GatewaySettings{
		{SecretKey: "sk", MerchantName: "m"},
		{PublicKey: "pk", MerchantName: "m"},
		{PublicKey: "pk", SecretKey: "sk"},
	}
	for _, s := range cases {
		if err := uc.Update(context.Background(), s); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for %+v, got %v", s, err)
		}
	}
	if repo.Stored != nil {
		t.Fatal("nothing may be persisted on validation failure")
	}
}

func TestSettingsUpdate_Persists(t *testing.T) {
	repo := &MockSettingsRepo{}
	uc := usecase.NewSettingsUseCase(repo, model.GatewaySettings{}, newTestLogger())

	s := model.GatewaySettings{PublicKey: "pk", SecretKey: "sk", MerchantName: "Shop", OrderStateID: 5, Sandbox: true}
	if err := uc.Update(context.Background(), s); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.Stored == nil || *repo.Stored != s {
		t.Fatalf("settings not persisted: %+v", repo.Stored)
	}
}
