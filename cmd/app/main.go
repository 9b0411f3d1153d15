package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iris-payments/internal/config"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/infra/api"
	pg "iris-payments/internal/infra/db/postgres"
	"iris-payments/internal/infra/logging"
	"iris-payments/internal/infra/metrics"
	"iris-payments/internal/infra/payment"
	red "iris-payments/internal/infra/redis"
	"iris-payments/internal/infra/web"
	"iris-payments/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	cartRepo := pg.NewCartRepo(pool)
	customerRepo := pg.NewCustomerRepo(pool)
	orderRepo := pg.NewOrderRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)
	auditRepo := pg.NewAuditRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Gateway ----
	gateway := payment.NewEveryPayGateway(&http.Client{Timeout: 30 * time.Second})

	// ---- Use cases ----
	iris := cfg.Payment.Iris
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, model.GatewaySettings{
		PublicKey:    iris.PublicKey,
		SecretKey:    iris.SecretKey,
		MerchantName: iris.MerchantName,
		OrderStateID: iris.OrderStateID,
		Sandbox:      iris.Sandbox,
	}, logger)

	checkoutUC := usecase.NewCheckoutUseCase(usecase.CheckoutConfig{
		CallbackURL:   iris.CallbackURL,
		Country:       iris.Country,
		DefaultLocale: iris.Locale,
	}, cartRepo, customerRepo, settingsUC, gateway, auditRepo, logger)

	callbackUC := usecase.NewCallbackUseCase(cartRepo, customerRepo, orderRepo, settingsUC, auditRepo, locker, tm, logger)

	// ---- Public HTTP server ----
	apiSrv := api.NewServer(checkoutUC, callbackUC, api.RedirectURLs{
		Confirmation: iris.ConfirmationURL,
		Checkout:     iris.CheckoutURL,
		ModuleID:     1,
	}, logger)
	publicServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiSrv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("payment server listening")
		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("payment server stopped")
		}
	}()

	// ---- Admin settings server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, 30*time.Minute)
	adminSrv := web.NewServer(settingsUC, auth, cfg.Admin.Password, logger)
	adminMux := http.NewServeMux()
	adminSrv.RegisterRoutes(adminMux)
	adminServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminMux,
	}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin server listening")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = publicServer.Shutdown(shutdownCtx)
	_ = adminServer.Shutdown(shutdownCtx)
	cancel()
}
