package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Port         int    `yaml:"port"`
	JWTSecret    string `yaml:"jwt_secret"`
	Password     string `yaml:"password"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// IrisConfig holds the file-level defaults for the gateway settings. The
// database settings row, when present, overrides them.
type IrisConfig struct {
	PublicKey    string `yaml:"public_key"`
	SecretKey    string `yaml:"secret_key"`
	MerchantName string `yaml:"merchant_name"`
	OrderStateID int    `yaml:"order_state_id"`
	Sandbox      bool   `yaml:"sandbox"`
	CallbackURL  string `yaml:"callback_url"`
	Country      string `yaml:"country"`
	Locale       string `yaml:"locale"`
	// URLs the buyer's browser is sent to on terminal outcomes.
	ConfirmationURL string `yaml:"confirmation_url"`
	CheckoutURL     string `yaml:"checkout_url"`
}

type PaymentConfig struct {
	Iris IrisConfig `yaml:"iris"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse unmarshals, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Payment.Iris.Country == "" {
		cfg.Payment.Iris.Country = "GR"
	}
	if cfg.Payment.Iris.Locale == "" {
		cfg.Payment.Iris.Locale = "el"
	}
	if cfg.Payment.Iris.MerchantName == "" {
		cfg.Payment.Iris.MerchantName = "EveryPay Merchant"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Payment.Iris.CallbackURL == "" {
		return nil, errors.New("payment.iris.callback_url is required")
	}
	return &cfg, nil
}
