package config

import (
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"auth": map[string]any{
			"accessTokenTTL": "15m",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "AUTH_ACCESSTOKENTTL", want: "auth.accessTokenTTL"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyAuthDefaults(t *testing.T) {
	cfg := &Config{}

	applyAuthDefaults(cfg)

	if cfg.Auth == nil {
		t.Fatal("applyAuthDefaults left Auth nil")
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL = %v, want 168h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.EmailTokenTTL != 24*time.Hour {
		t.Fatalf("EmailTokenTTL = %v, want 24h", cfg.Auth.EmailTokenTTL)
	}
	if cfg.Auth.ResetTokenTTL != 15*time.Minute {
		t.Fatalf("ResetTokenTTL = %v, want 15m", cfg.Auth.ResetTokenTTL)
	}
	if cfg.Auth.OTPTTL != 5*time.Minute {
		t.Fatalf("OTPTTL = %v, want 5m", cfg.Auth.OTPTTL)
	}
	if cfg.Auth.MaxActiveSessions != 5 {
		t.Fatalf("MaxActiveSessions = %d, want 5", cfg.Auth.MaxActiveSessions)
	}
}

func TestApplyAuthDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Auth: &AuthConfig{AccessTokenTTL: time.Minute},
	}

	applyAuthDefaults(cfg)

	if cfg.Auth.AccessTokenTTL != time.Minute {
		t.Fatalf("AccessTokenTTL = %v, want explicit 1m preserved", cfg.Auth.AccessTokenTTL)
	}
}
