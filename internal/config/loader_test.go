package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Kind != "anthropic" {
		t.Errorf("default provider kind = %q", cfg.Provider.Kind)
	}
	if cfg.Provider.Temperature != 0.2 {
		t.Errorf("default temperature = %f", cfg.Provider.Temperature)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("default session backend = %q", cfg.Session.Backend)
	}
	if cfg.Media.Language != "pt" {
		t.Errorf("default language = %q", cfg.Media.Language)
	}
	if cfg.Recorder.QueueSize != 256 {
		t.Errorf("default recorder queue = %d", cfg.Recorder.QueueSize)
	}
	if cfg.Dispatch.BusBufferSize != 100 {
		t.Errorf("default bus buffer = %d", cfg.Dispatch.BusBufferSize)
	}
}

func TestLoadFromReader(t *testing.T) {
	raw := `{
		"provider": {"kind": "openai", "apiKey": "sk-test", "model": "gpt-4o-mini"},
		"session": {"backend": "sqlite", "sqlitePath": "/tmp/sessions.db", "ttlMinutes": 120},
		"media": {"whisperUrl": "https://stt.example/v1/transcribe"},
		"channels": {
			"whatsapp": {"enabled": true, "instanceId": "I1", "clientToken": "T1"}
		},
		"dispatch": {"asyncAudio": true}
	}`

	cfg, err := LoadFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Provider.Kind != "openai" || cfg.Provider.APIKey != "sk-test" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Session.Backend != "sqlite" || cfg.Session.TTLMinutes != 120 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if !cfg.Channels.WhatsApp.Enabled || cfg.Channels.WhatsApp.InstanceID != "I1" {
		t.Errorf("whatsapp = %+v", cfg.Channels.WhatsApp)
	}
	if !cfg.Dispatch.AsyncAudio {
		t.Error("asyncAudio not set")
	}

	// Untouched sections keep their defaults.
	if cfg.Media.Language != "pt" {
		t.Errorf("language = %q, want default kept", cfg.Media.Language)
	}
	if cfg.Geo.BaseURL == "" {
		t.Error("geo baseURL default lost")
	}
}

func TestLoadFromReaderInvalidJSON(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ATENDE_PROVIDER_APIKEY", "sk-env")
	t.Setenv("ATENDE_SESSION_BACKEND", "sqlite")
	t.Setenv("ATENDE_SESSION_TTL_MINUTES", "45")
	t.Setenv("ATENDE_DISPATCH_ASYNC_AUDIO", "true")

	cfg, err := LoadFromReader(strings.NewReader(`{"provider": {"apiKey": "sk-file"}}`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Provider.APIKey != "sk-env" {
		t.Errorf("apiKey = %q, want env to win over file", cfg.Provider.APIKey)
	}
	if cfg.Session.Backend != "sqlite" {
		t.Errorf("session backend = %q", cfg.Session.Backend)
	}
	if cfg.Session.TTLMinutes != 45 {
		t.Errorf("ttl = %d", cfg.Session.TTLMinutes)
	}
	if !cfg.Dispatch.AsyncAudio {
		t.Error("asyncAudio env override not applied")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ATENDE_PROVIDER_APIKEY", "sk-env")

	cfg, err := Load("/nonexistent/atende.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Kind != "anthropic" {
		t.Errorf("kind = %q, want default", cfg.Provider.Kind)
	}
	if cfg.Provider.APIKey != "sk-env" {
		t.Errorf("apiKey = %q, want env override", cfg.Provider.APIKey)
	}
}
