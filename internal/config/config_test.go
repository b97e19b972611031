package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SourceDomain != DefaultSourceDomain {
		t.Errorf("Expected source domain %q, got %q", DefaultSourceDomain, cfg.SourceDomain)
	}
	if cfg.ResolverDomain != DefaultResolverDomain {
		t.Errorf("Expected resolver domain %q, got %q", DefaultResolverDomain, cfg.ResolverDomain)
	}
	if cfg.Origin != cfg.SourceDomain {
		t.Errorf("Expected origin to default to source domain, got %q", cfg.Origin)
	}
	if cfg.Fingerprint != DefaultFingerprint {
		t.Errorf("Expected fingerprint %q, got %q", DefaultFingerprint, cfg.Fingerprint)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected server port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Resolver.RedirectConcurrency != 1 {
		t.Errorf("Expected sequential redirects by default, got %d", cfg.Resolver.RedirectConcurrency)
	}
	if cfg.Cache.Type != "" {
		t.Errorf("Expected page cache to be disabled by default, got %q", cfg.Cache.Type)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("APP_RESOLVER_DOMAIN", "http://resolver.test")
	t.Setenv("APP_FINGERPRINT", "fixed-fp")
	t.Setenv("APP_SERVER_PORT", "8081")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ResolverDomain != "http://resolver.test" {
		t.Errorf("Expected resolver domain from env, got %q", cfg.ResolverDomain)
	}
	if cfg.Fingerprint != "fixed-fp" {
		t.Errorf("Expected fingerprint from env, got %q", cfg.Fingerprint)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Expected server port 8081 from env, got %d", cfg.Server.Port)
	}
}

func TestApplyDefaults_OriginFollowsSourceDomain(t *testing.T) {
	cfg := &Config{SourceDomain: "http://source.test/"}
	cfg.ApplyDefaults()

	if cfg.Origin != "http://source.test/" {
		t.Errorf("Expected origin %q, got %q", "http://source.test/", cfg.Origin)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", cfg.UserAgent)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "empty uses fallback", value: "", expected: 7 * time.Second},
		{name: "valid value", value: "250ms", expected: 250 * time.Millisecond},
		{name: "invalid uses fallback", value: "soon", expected: 7 * time.Second},
		{name: "zero is kept", value: "0", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration("test", tt.value, 7*time.Second); got != tt.expected {
				t.Errorf("Duration(%q) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}
