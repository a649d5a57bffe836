package internal

import (
	"strings"
	"testing"
)

func TestConfigValidate_RequiresVaultPath(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure without vault path")
	}

	cfg.Vault.Path = "/data/vault"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPConfigValidate(t *testing.T) {
	cases := []struct {
		port int
		ok   bool
	}{
		{8080, true},
		{1, true},
		{65535, true},
		{0, false},
		{-1, false},
		{70000, false},
	}
	for _, tc := range cases {
		c := HTTPConfig{Port: tc.port}
		err := c.Validate()
		if tc.ok && err != nil {
			t.Errorf("port %d: unexpected error %v", tc.port, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("port %d: expected error", tc.port)
		}
	}
}

func TestHTTPConfigAddress(t *testing.T) {
	c := HTTPConfig{Port: 9000}
	if got := c.Address(); got != ":9000" {
		t.Errorf("Address = %q", got)
	}
}

func TestAuthConfigValidate(t *testing.T) {
	t.Run("empty mode normalizes to disabled", func(t *testing.T) {
		c := AuthConfig{}
		if err := c.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Mode != AuthModeDisabled {
			t.Errorf("mode = %q", c.Mode)
		}
		if c.AuthEnabled() {
			t.Error("auth should be disabled")
		}
	})

	t.Run("token mode requires a token", func(t *testing.T) {
		c := AuthConfig{Mode: AuthModeToken}
		err := c.Validate()
		if err == nil || !strings.Contains(err.Error(), "token is empty") {
			t.Fatalf("err = %v", err)
		}

		c.Token = "secret"
		if err := c.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !c.AuthEnabled() {
			t.Error("auth should be enabled")
		}
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		c := AuthConfig{Mode: "basic"}
		if err := c.Validate(); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})
}
