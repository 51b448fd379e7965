package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "127.0.0.1:8645" {
		t.Fatalf("default RPCAddress %q", cfg.RPCAddress)
	}
	if cfg.FeeBps != 30 {
		t.Fatalf("default FeeBps %d, want 30", cfg.FeeBps)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}

	// Loading the generated file again must round-trip cleanly.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again != *cfg {
		t.Fatalf("reload mismatch: %+v != %+v", again, cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("NotAKey = true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected rejection of unknown key")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg = defaultConfig()
	cfg.RPCAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty RPCAddress rejected")
	}

	cfg = defaultConfig()
	cfg.FeeBps = 10_000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected out-of-range fee rejected")
	}

	cfg = defaultConfig()
	cfg.RateBurst = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative burst rejected")
	}
}
