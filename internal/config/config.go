package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr          string
	PostgresDSN         string
	RedisAddr           string
	KafkaBrokers        []string
	JWTSecret           string
	StripeAPIKey        string
	StripeWebhookSecret string
	CDNBaseURL          string
	MigrationsPath      string
	ProviderTimeout     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		ListenAddr:          os.Getenv("LISTEN_ADDR"),
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		KafkaBrokers:        []string{os.Getenv("KAFKA_BROKER")},
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CDNBaseURL:          os.Getenv("CDN_BASE_URL"),
		MigrationsPath:      os.Getenv("MIGRATIONS_PATH"),
		ProviderTimeout:     10 * time.Second,
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = "host=localhost user=postgres password=postgres dbname=lumina sslmode=disable"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if len(cfg.KafkaBrokers) == 1 && cfg.KafkaBrokers[0] == "" {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "supersecret"
	}
	if cfg.CDNBaseURL == "" {
		cfg.CDNBaseURL = "https://res.cloudinary.com/lumina/image/upload"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ProviderTimeout = d
		} else {
			slog.Warn("invalid PROVIDER_TIMEOUT, using default", "value", v, "error", err)
		}
	}

	slog.Info("config loaded", "listen_addr", cfg.ListenAddr, "redis_addr", cfg.RedisAddr, "kafka_brokers", cfg.KafkaBrokers)
	return cfg
}
