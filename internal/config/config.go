package config

import (
	"fmt"
	"strings"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	// PushProvider selects the gateway implementation: "fcm" or "webhook".
	PushProvider        string `env:"PUSH_PROVIDER,default=fcm"`
	FCMCredentialsFile  string `env:"FCM_CREDENTIALS_FILE"`
	PushWebhookURL      string `env:"PUSH_WEBHOOK_URL"`
	PushTimeoutMillis   int    `env:"PUSH_TIMEOUT_MS,default=5000"`
	PushRateLimitPerSec int    `env:"PUSH_RATE_LIMIT_PER_SEC,default=100"`
	PushMaxAttempts     int    `env:"PUSH_MAX_ATTEMPTS,default=3"`

	// Comma-separated provider error codes that override the default
	// transient/permanent classification.
	PushPermanentCodes string `env:"PUSH_PERMANENT_CODES"`
	PushTransientCodes string `env:"PUSH_TRANSIENT_CODES"`

	BroadcastConcurrency int    `env:"BROADCAST_CONCURRENCY,default=8"`
	APIPort              int    `env:"API_PORT,default=8080"`
	LogLevel             string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.PushProvider = strings.ToLower(strings.TrimSpace(cfg.PushProvider))
	switch cfg.PushProvider {
	case "fcm", "webhook":
	default:
		return nil, fmt.Errorf("invalid PUSH_PROVIDER %q: must be fcm or webhook", cfg.PushProvider)
	}
	if cfg.PushProvider == "webhook" && strings.TrimSpace(cfg.PushWebhookURL) == "" {
		return nil, fmt.Errorf("PUSH_WEBHOOK_URL is required when PUSH_PROVIDER=webhook")
	}

	return &cfg, nil
}

// SplitCodes parses a comma-separated code list from the environment, e.g.
// "QUOTA_EXCEEDED, THIRD_PARTY_AUTH_ERROR".
func SplitCodes(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}
