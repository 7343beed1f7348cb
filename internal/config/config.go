package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string `env:"PORT"`
	ListenAddr string `env:"LISTEN_ADDR"`
	LogLevel   string `env:"LOG_LEVEL"`
	LogFile    string `env:"LOG_FILE"`

	ReasoningBackend string `env:"REASONING_BACKEND"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel      string `env:"OPENAI_MODEL"`
	OpenAIImageModel string `env:"OPENAI_IMAGE_MODEL"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	ClaudeModel      string `env:"CLAUDE_MODEL"`
	OllamaHost       string `env:"OLLAMA_HOST"`
	OllamaModel      string `env:"OLLAMA_MODEL"`

	SerperAPIKey   string `env:"SERPER_API_KEY"`
	ReviewFallback string `env:"REVIEW_FALLBACK"`

	TwilioAccountSID        string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken         string `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber    string `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioValidateSignature bool   `env:"TWILIO_VALIDATE_SIGNATURE"`
	PublicBaseURL           string `env:"PUBLIC_BASE_URL"`

	PendingTTL        time.Duration `env:"PENDING_TTL"`
	PendingMaxEntries int           `env:"PENDING_MAX_ENTRIES"`

	ReasoningTimeout time.Duration `env:"REASONING_TIMEOUT"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT"`
	ImageGenTimeout  time.Duration `env:"IMAGEGEN_TIMEOUT"`
	MediaTimeout     time.Duration `env:"MEDIA_TIMEOUT"`
	VerifyTimeout    time.Duration `env:"VERIFY_TIMEOUT"`
	SendTimeout      time.Duration `env:"SEND_TIMEOUT"`
	PipelineTimeout  time.Duration `env:"PIPELINE_TIMEOUT"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

func Defaults() *Config {
	return &Config{
		Port:                 "8000",
		LogLevel:             "info",
		ReasoningBackend:     "openai",
		OpenAIModel:          "gpt-4o",
		OpenAIImageModel:     "dall-e-3",
		ClaudeModel:          "claude-sonnet-4-5",
		OllamaHost:           "http://localhost:11434",
		OllamaModel:          "llava",
		ReviewFallback:       "cuisine",
		TwilioWhatsAppNumber: "whatsapp:+14155238886",
		PendingTTL:           600 * time.Second,
		PendingMaxEntries:    10000,
		ReasoningTimeout:     30 * time.Second,
		SearchTimeout:        10 * time.Second,
		ImageGenTimeout:      60 * time.Second,
		MediaTimeout:         30 * time.Second,
		VerifyTimeout:        10 * time.Second,
		SendTimeout:          15 * time.Second,
		PipelineTimeout:      3 * time.Minute,
		ShutdownTimeout:      30 * time.Second,
	}
}

// Load starts from Defaults, then applies a .env file when one exists and
// finally the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		slog.Warn("failed to parse environment, keeping defaults for invalid values", "error", err)
	}
	return cfg
}

// Addr is the address the HTTP server listens on. LISTEN_ADDR wins over PORT.
func (c *Config) Addr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return fmt.Sprintf(":%s", c.Port)
}
