package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.OpenAIChatModel != "gpt-4o-mini" {
		t.Fatalf("expected default chat model, got %s", cfg.OpenAIChatModel)
	}
	if cfg.ChatMaxToolRounds != 5 {
		t.Fatalf("expected 5 tool rounds, got %d", cfg.ChatMaxToolRounds)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_MAX_TOOL_ROUNDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.ChatMaxToolRounds != 3 {
		t.Fatalf("expected tool round override, got %d", cfg.ChatMaxToolRounds)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CHAT_MAX_TOOL_ROUNDS", "not-a-number")

	cfg := Load()
	if cfg.ChatMaxToolRounds != 5 {
		t.Fatalf("expected fallback to default, got %d", cfg.ChatMaxToolRounds)
	}
}
