package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Defaults for the ledger TTL windows. The in-progress window only needs to
// outlive one invocation; the completed window must exceed the channel's
// worst-case redelivery latency.
const (
	DefaultInProgressTTL = time.Minute
	DefaultCompletedTTL  = 24 * time.Hour
	DefaultServiceName   = "big-mouth"
)

// Config contains runtime configuration resolved from the environment. The
// bus, topic and table identifiers are provisioned by the platform; they
// arrive here as already-resolved strings.
type Config struct {
	BusName          string
	TopicARN         string
	IdempotencyTable string
	QueueURL         string // optional, local envelope injection only
	ServiceName      string
	InProgressTTL    time.Duration
	CompletedTTL     time.Duration
}

// Load reads the notifier configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		BusName:          strings.TrimSpace(os.Getenv("BUS_NAME")),
		TopicARN:         strings.TrimSpace(os.Getenv("RESTAURANT_NOTIFICATION_TOPIC")),
		IdempotencyTable: strings.TrimSpace(os.Getenv("IDEMPOTENCY_TABLE")),
		QueueURL:         strings.TrimSpace(os.Getenv("NOTIFIER_QUEUE_URL")),
		ServiceName:      strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		InProgressTTL:    DefaultInProgressTTL,
		CompletedTTL:     DefaultCompletedTTL,
	}

	if cfg.BusName == "" {
		return Config{}, errors.New("BUS_NAME required")
	}
	if cfg.TopicARN == "" {
		return Config{}, errors.New("RESTAURANT_NOTIFICATION_TOPIC required")
	}
	if cfg.IdempotencyTable == "" {
		return Config{}, errors.New("IDEMPOTENCY_TABLE required")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	var err error
	if cfg.InProgressTTL, err = parseTTL("IN_PROGRESS_TTL", DefaultInProgressTTL); err != nil {
		return Config{}, err
	}
	if cfg.CompletedTTL, err = parseTTL("COMPLETED_TTL", DefaultCompletedTTL); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseTTL(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New(name + ` must be a duration like "1m" or "24h"`)
	}
	if d <= 0 {
		return 0, errors.New(name + " must be positive")
	}
	return d, nil
}
