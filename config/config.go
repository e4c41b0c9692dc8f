package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"aurum-payment-api/database"
)

type Config struct {
	Database database.DatabaseConfig
	CardGate CardGateConfig
	BankNet  BankNetConfig
	Server   ServerConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Billing  BillingConfig
}

type CardGateConfig struct {
	MerchantID      string
	TerminalID      string
	APIKey          string
	SignatureSecret string
	Environment     string
}

type BankNetConfig struct {
	ClientID        string
	ClientSecret    string
	SignatureSecret string
	Environment     string
}

type ServerConfig struct {
	Port    string
	BaseURL string // public base URL used for gateway callback/return URLs
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type BillingConfig struct {
	PendingTopupTimeout time.Duration // PENDING top-ups older than this fail
	ReconcileInterval   time.Duration
	SweepInterval       time.Duration
	MaxChargeRetries    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		CardGate: CardGateConfig{
			MerchantID:      os.Getenv("CARDGATE_MERCHANT_ID"),
			TerminalID:      os.Getenv("CARDGATE_TERMINAL_ID"),
			APIKey:          os.Getenv("CARDGATE_API_KEY"),
			SignatureSecret: os.Getenv("CARDGATE_SIGNATURE_SECRET"),
			Environment:     os.Getenv("CARDGATE_ENVIRONMENT"),
		},
		BankNet: BankNetConfig{
			ClientID:        os.Getenv("BANKNET_CLIENT_ID"),
			ClientSecret:    os.Getenv("BANKNET_CLIENT_SECRET"),
			SignatureSecret: os.Getenv("BANKNET_SIGNATURE_SECRET"),
			Environment:     os.Getenv("BANKNET_ENVIRONMENT"),
		},
		Server: ServerConfig{
			Port:    os.Getenv("SERVER_PORT"),
			BaseURL: os.Getenv("SERVER_BASE_URL"),
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			WorkerConcurrency: envInt("WORKER_CONCURRENCY", 2),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: "aurum-payment-api",
		},
		Billing: BillingConfig{
			PendingTopupTimeout: envDuration("PENDING_TOPUP_TIMEOUT", 30*time.Minute),
			ReconcileInterval:   envDuration("RECONCILE_INTERVAL", 5*time.Minute),
			SweepInterval:       envDuration("BILLING_SWEEP_INTERVAL", 15*time.Minute),
			MaxChargeRetries:    envInt("MAX_CHARGE_RETRIES", 3),
		},
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
		log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	return cfg
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s, using default %d", key, def)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s, using default %v", key, def)
	}
	return def
}
