package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour || cfg.Auth.BcryptCost != 10 || cfg.Auth.LoginLockout != 15*time.Minute {
		t.Fatalf("unexpected auth defaults %+v", cfg.Auth)
	}
	if cfg.Mongo.Database != "tasktrack" || cfg.Cleanup.Workers != 4 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Mongo, cfg.Cleanup)
	}
	if !cfg.InsecureSecret() {
		t.Fatalf("expected the development secret to be flagged")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                "production",
		"JWT_SECRET":         "s3cr3t-value",
		"TOKEN_TTL":          "30m",
		"LOGIN_MAX_ATTEMPTS": "3",
		"REDIS_DB":           "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute || cfg.Auth.LoginMaxAttempts != 3 || cfg.Redis.DB != 2 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Auth, cfg.Redis)
	}
	if cfg.InsecureSecret() {
		t.Fatalf("custom secret flagged as insecure")
	}
}

func TestLoadWith_RejectsDevSecretInProduction(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadWith_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero ttl":     {"TOKEN_TTL": "0s"},
		"bad duration": {"TOKEN_TTL": "soon"},
		"no attempts":  {"LOGIN_MAX_ATTEMPTS": "0"},
	}
	for name, env := range cases {
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
