package config

import (
	"os"
	"time"
)

// Server captures service-level configuration.
type Server struct {
	Addr        string
	MetricsAddr string

	// Owner is the global registry-owner identity; the only caller allowed
	// to mutate the institution allowlist and revoke any credential.
	Owner string
	// OwnerTokenHash is the bcrypt hash of the X-Owner-Token admin header.
	OwnerTokenHash string

	JWTSigningKey string
	TokenTTL      time.Duration

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers    string
	KafkaEventTopic string

	EventBuffer int
}

var defaultTokenTTL = 1 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("SOULBOUND_ADDR", ":8080"),
		MetricsAddr:     getenv("SOULBOUND_METRICS_ADDR", ":9090"),
		Owner:           os.Getenv("SOULBOUND_OWNER"),
		OwnerTokenHash:  os.Getenv("SOULBOUND_OWNER_TOKEN_HASH"),
		JWTSigningKey:   getenv("SOULBOUND_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:        defaultTokenTTL,
		DatabaseURL:     os.Getenv("SOULBOUND_DATABASE_URL"),
		RedisAddr:       os.Getenv("SOULBOUND_REDIS_ADDR"),
		KafkaBrokers:    os.Getenv("SOULBOUND_KAFKA_BROKERS"),
		KafkaEventTopic: getenv("SOULBOUND_KAFKA_EVENT_TOPIC", "soulbound.events"),
		EventBuffer:     256,
	}

	if ttl := os.Getenv("SOULBOUND_TOKEN_TTL"); ttl != "" {
		if duration, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = duration
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
