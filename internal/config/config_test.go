package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	for _, k := range []string{"DB_PATH", "HTTP_ADDRESS", "GRPC_ADDRESS", "JWT_SECRET", "STORE_TIMEOUT", "EVENTS_BACKEND", "EVENTS_WORKERS", "EVENTS_QUEUE_SIZE", "KAFKA_BROKERS", "TOKEN_TTL"} {
		os.Unsetenv(k)
	}
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.HTTP.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Database.Timeout != 3*time.Second {
		t.Fatalf("default store timeout = %s", cfg.Database.Timeout)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("default token ttl = %s", cfg.Auth.TokenTTL)
	}
	if cfg.Events.Backend != "none" || len(cfg.Events.KafkaBrokers) != 1 {
		t.Fatalf("unexpected events defaults: %+v", cfg.Events)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	// Clear JWT_SECRET ensures error
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	// When set, it should succeed
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("EVENTS_BACKEND", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("EVENTS_WORKERS", "4")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Timeout != 750*time.Millisecond {
		t.Fatalf("timeout = %s", cfg.Database.Timeout)
	}
	if cfg.Events.Backend != "kafka" || cfg.Events.Workers != 4 {
		t.Fatalf("events = %+v", cfg.Events)
	}
	if len(cfg.Events.KafkaBrokers) != 2 || cfg.Events.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.Events.KafkaBrokers)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	cases := map[string]string{
		"STORE_TIMEOUT":  "soon",
		"EVENTS_BACKEND": "carrier-pigeon",
		"EVENTS_WORKERS": "zero",
		"TOKEN_TTL":      "-1h",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestString_MasksSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s := cfg.String(); strings.Contains(s, "super-secret") {
		t.Fatalf("secret leaked: %s", s)
	}
}
