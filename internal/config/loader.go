package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads config from path, falling back to defaults plus
// environment overrides when the file does not exist. A .env file in
// the working directory is read first if present.
func Load(path string) (*Config, error) {
	godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader loads config from an io.Reader, applying defaults and env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies ATENDE_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envMap := map[string]*string{
		"ATENDE_PROVIDER_KIND":          &cfg.Provider.Kind,
		"ATENDE_PROVIDER_APIKEY":        &cfg.Provider.APIKey,
		"ATENDE_PROVIDER_BASEURL":       &cfg.Provider.BaseURL,
		"ATENDE_PROVIDER_MODEL":         &cfg.Provider.Model,
		"ATENDE_PROVIDER_VISION_APIKEY": &cfg.Provider.VisionAPIKey,
		"ATENDE_SESSION_BACKEND":        &cfg.Session.Backend,
		"ATENDE_SESSION_SQLITE_PATH":    &cfg.Session.SQLitePath,
		"ATENDE_MEDIA_ACCOUNT_SID":      &cfg.Media.AccountSID,
		"ATENDE_MEDIA_AUTH_TOKEN":       &cfg.Media.AuthToken,
		"ATENDE_MEDIA_WHISPER_URL":      &cfg.Media.WhisperURL,
		"ATENDE_MEDIA_WHISPER_KEY":      &cfg.Media.WhisperKey,
		"ATENDE_GEO_APIKEY":             &cfg.Geo.APIKey,
		"ATENDE_RECORDER_PATH":          &cfg.Recorder.Path,
		"ATENDE_WHATSAPP_INSTANCE_ID":   &cfg.Channels.WhatsApp.InstanceID,
		"ATENDE_WHATSAPP_CLIENT_TOKEN":  &cfg.Channels.WhatsApp.ClientToken,
		"ATENDE_WHATSAPP_BASEURL":       &cfg.Channels.WhatsApp.BaseURL,
		"ATENDE_TELEGRAM_TOKEN":         &cfg.Channels.Telegram.Token,
	}

	for env, ptr := range envMap {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}

	if val := os.Getenv("ATENDE_SESSION_TTL_MINUTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Session.TTLMinutes = n
		}
	}
	if val := os.Getenv("ATENDE_DISPATCH_ASYNC_AUDIO"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Dispatch.AsyncAudio = b
		}
	}
}
