package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BUS_NAME", "big-mouth-dev-order-events")
	t.Setenv("RESTAURANT_NOTIFICATION_TOPIC", "arn:aws:sns:us-east-1:123456789012:restaurant-notifications")
	t.Setenv("IDEMPOTENCY_TABLE", "idempotency")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("IN_PROGRESS_TTL", "")
	t.Setenv("COMPLETED_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ServiceName != DefaultServiceName {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.InProgressTTL != DefaultInProgressTTL || cfg.CompletedTTL != DefaultCompletedTTL {
		t.Fatalf("expected default TTLs, got %v / %v", cfg.InProgressTTL, cfg.CompletedTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVICE_NAME", "big-mouth-dev")
	t.Setenv("IN_PROGRESS_TTL", "90s")
	t.Setenv("COMPLETED_TTL", "48h")
	t.Setenv("NOTIFIER_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123456789012/notifier")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.InProgressTTL != 90*time.Second {
		t.Fatalf("IN_PROGRESS_TTL not honored: %v", cfg.InProgressTTL)
	}
	if cfg.CompletedTTL != 48*time.Hour {
		t.Fatalf("COMPLETED_TTL not honored: %v", cfg.CompletedTTL)
	}
	if cfg.ServiceName != "big-mouth-dev" || cfg.QueueURL == "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("IDEMPOTENCY_TABLE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing IDEMPOTENCY_TABLE")
	}
}

func TestLoad_BadTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("IN_PROGRESS_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable TTL")
	}

	t.Setenv("IN_PROGRESS_TTL", "-1m")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive TTL")
	}
}
