package config

// Config is the top-level configuration
type Config struct {
	Provider Provider       `json:"provider"`
	Session  Session        `json:"session"`
	Media    Media          `json:"media"`
	Geo      Geo            `json:"geo"`
	Recorder Recorder       `json:"recorder"`
	Channels ChannelsConfig `json:"channels"`
	Dispatch Dispatch       `json:"dispatch"`
}

// Provider selects and configures the language model backing the agent.
type Provider struct {
	Kind             string  `json:"kind"` // openai | anthropic | openai-compatible
	APIKey           string  `json:"apiKey"`
	BaseURL          string  `json:"baseUrl"`
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	SystemPromptFile string  `json:"systemPromptFile"`
	VisionAPIKey     string  `json:"visionApiKey"`
	VisionModel      string  `json:"visionModel"`
}

// Session configures the conversation history store.
type Session struct {
	Backend    string `json:"backend"` // memory | sqlite
	SQLitePath string `json:"sqlitePath"`
	TTLMinutes int    `json:"ttlMinutes"` // 0 disables eviction
}

// Media configures the audio and image transform chains.
type Media struct {
	AccountSID string `json:"accountSid"`
	AuthToken  string `json:"authToken"`
	WhisperURL string `json:"whisperUrl"`
	WhisperKey string `json:"whisperKey"`
	Language   string `json:"language"`
	ArchiveDir string `json:"archiveDir"`
	FFmpegPath string `json:"ffmpegPath"`
}

// Geo configures reverse geocoding.
type Geo struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl"`
}

// Recorder configures interaction analytics storage.
type Recorder struct {
	Backend   string `json:"backend"` // sqlite | ndjson | none
	Path      string `json:"path"`
	QueueSize int    `json:"queueSize"`
}

type ChannelsConfig struct {
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	Telegram TelegramConfig `json:"telegram"`
}

type WhatsAppConfig struct {
	Enabled      bool     `json:"enabled"`
	InstanceID   string   `json:"instanceId"`
	ClientToken  string   `json:"clientToken"`
	BaseURL      string   `json:"baseUrl"`
	WebhookPort  int      `json:"webhookPort"`
	AllowedUsers []string `json:"allowedUsers"`
}

type TelegramConfig struct {
	Enabled      bool     `json:"enabled"`
	Token        string   `json:"token"`
	AllowedUsers []string `json:"allowedUsers"`
}

// Dispatch tunes the request pipeline.
type Dispatch struct {
	AsyncAudio     bool `json:"asyncAudio"`
	BusBufferSize  int  `json:"busBufferSize"`
	TimeoutSeconds int  `json:"timeoutSeconds"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Provider: Provider{
			Kind:        "anthropic",
			Model:       "claude-3-5-haiku-20241022",
			Temperature: 0.2,
			VisionModel: "gpt-4o-mini",
		},
		Session: Session{
			Backend:    "memory",
			SQLitePath: "atende.db",
			TTLMinutes: 0,
		},
		Media: Media{
			Language:   "pt",
			ArchiveDir: "data",
			FFmpegPath: "ffmpeg",
		},
		Geo: Geo{
			BaseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		},
		Recorder: Recorder{
			Backend:   "sqlite",
			Path:      "interactions.db",
			QueueSize: 256,
		},
		Dispatch: Dispatch{
			BusBufferSize:  100,
			TimeoutSeconds: 60,
		},
	}
}
