package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
	"iris-payments/internal/usecase"
)

// Server is the back-office settings API, the module's replacement for the
// storefront admin form.
type Server struct {
	settingsUC usecase.SettingsUseCase
	auth       *AuthManager
	password   string
	log        *zerolog.Logger
}

func NewServer(settingsUC usecase.SettingsUseCase, auth *AuthManager, password string, logger *zerolog.Logger) *Server {
	return &Server{settingsUC: settingsUC, auth: auth, password: password, log: logger}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/api/v1/login", s.handleLogin)
	mux.Handle("/admin/api/v1/settings", s.authMiddleware(s.settingsRouter()))
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.password == "" {
		s.log.Error().Msg("admin password is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.password)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type settingsPayload struct {
	PublicKey    string `json:"public_key"`
	SecretKey    string `json:"secret_key"`
	MerchantName string `json:"merchant_name"`
	OrderStateID int    `json:"order_state_id"`
	Sandbox      bool   `json:"sandbox"`
}

func (s *Server) settingsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleSettingsGet(w, r)
		case http.MethodPut:
			s.handleSettingsPut(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsUC.Current(r.Context())
	if err != nil {
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	// The secret key never leaves the admin API in full.
	resp := settingsPayload{
		PublicKey:    settings.PublicKey,
		SecretKey:    redactKey(settings.SecretKey),
		MerchantName: settings.MerchantName,
		OrderStateID: settings.OrderStateID,
		Sandbox:      settings.Sandbox,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.settingsUC.Update(r.Context(), model.GatewaySettings{
		PublicKey:    req.PublicKey,
		SecretKey:    req.SecretKey,
		MerchantName: req.MerchantName,
		OrderStateID: req.OrderStateID,
		Sandbox:      req.Sandbox,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func redactKey(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}
