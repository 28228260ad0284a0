package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "benesafe" || cfg.Mongo.MaxPoolSize != 50 || cfg.Redis.PoolSize != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.VerifyTokenTTL != 48*time.Hour {
		t.Fatalf("unexpected ttl defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Fatalf("expected development secret")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                  "9090",
		"TOKEN_TTL":             "2h",
		"MAIL_WORKERS":          "2",
		"RATE_LIMIT_PER_MINUTE": "5",
		"OTEL_SAMPLE_RATE":      "0.5",
		"REDIS_PASSWORD":        "s3cret",
		"REDIS_POOL_SIZE":       "3",
		"MONGO_MAX_POOL_SIZE":   "7",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Auth.TokenTTL != 2*time.Hour || cfg.Mail.Workers != 2 ||
		cfg.Auth.RateLimitPerMinute != 5 || cfg.Otel.SampleRate != 0.5 ||
		cfg.Redis.Password != "s3cret" || cfg.Redis.PoolSize != 3 || cfg.Mongo.MaxPoolSize != 7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidate_Production(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail in production")
	}

	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret to fail in production")
	}

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestValidate_OtelEndpoint(t *testing.T) {
	cfg, _ := load(context.Background(), envconfig.MapLookuper(map[string]string{"OTEL_ENABLED": "true"}))
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tracing without endpoint")
	}
}
