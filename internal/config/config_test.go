package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("9280")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "9280" {
		t.Errorf("expected default port, got %s", cfg.Port)
	}
	if cfg.VoiceDir != "voices" {
		t.Errorf("unexpected voice dir: %s", cfg.VoiceDir)
	}
	if cfg.WorkDir != "/tmp/open-tts" {
		t.Errorf("unexpected work dir: %s", cfg.WorkDir)
	}
	if cfg.MaxConcurrentInference != 1 {
		t.Errorf("expected 1 inference permit, got %d", cfg.MaxConcurrentInference)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("unexpected cache ttl: %s", cfg.CacheTTL)
	}
	if cfg.F5Command != "f5-tts_infer-cli" {
		t.Errorf("unexpected f5 command: %s", cfg.F5Command)
	}
	if cfg.OpenVoiceCommand != "openvoice-runner" {
		t.Errorf("unexpected openvoice command: %s", cfg.OpenVoiceCommand)
	}
	if cfg.OpenVoiceLanguage != "EN" {
		t.Errorf("unexpected default language: %s", cfg.OpenVoiceLanguage)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8000")
	t.Setenv("VOICE_DIR", "/data/voices")
	t.Setenv("DEVICE", "cuda:0")
	t.Setenv("MAX_CONCURRENT_INFERENCE", "4")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("OPENVOICE_LANGUAGE", "ZH")

	cfg, err := Load("9280")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected PORT override, got %s", cfg.Port)
	}
	if cfg.VoiceDir != "/data/voices" {
		t.Errorf("expected VOICE_DIR override, got %s", cfg.VoiceDir)
	}
	if cfg.Device != "cuda:0" {
		t.Errorf("expected DEVICE override, got %s", cfg.Device)
	}
	if cfg.MaxConcurrentInference != 4 {
		t.Errorf("expected 4 permits, got %d", cfg.MaxConcurrentInference)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("unexpected cache ttl: %s", cfg.CacheTTL)
	}
	if cfg.OpenVoiceLanguage != "ZH" {
		t.Errorf("expected language override, got %s", cfg.OpenVoiceLanguage)
	}
}

func TestLoadRejectsZeroPermits(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_INFERENCE", "0")
	if _, err := Load("9280"); err == nil {
		t.Error("expected error for zero inference permits")
	}
}

func TestLoadRejectsNegativeTTL(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "-5")
	if _, err := Load("9280"); err == nil {
		t.Error("expected error for negative cache ttl")
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_INFERENCE", "not-a-number")
	cfg, err := Load("9280")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.MaxConcurrentInference != 1 {
		t.Errorf("expected fallback to default, got %d", cfg.MaxConcurrentInference)
	}
}
