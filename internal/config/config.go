package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed down explicitly.
type Config struct {
	// Discord
	ClientID     string `env:"CLIENT_ID"`
	GuildID      string `env:"GUILD_ID"`
	DiscordToken string `env:"TOKEN"`

	// Holders listing API
	APIKey          string        `env:"API_KEY"`
	BaseURL         string        `env:"BASE_URL"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	APIRateLimit    float64       `env:"API_RATE_LIMIT" envDefault:"5"`
	APIMaxRateLimit float64       `env:"API_MAX_RATE_LIMIT" envDefault:"10"`
	MaxResponseSize int64         `env:"MAX_RESPONSE_SIZE" envDefault:"10485760"`

	// Runtime
	ReportDir   string `env:"REPORT_DIR" envDefault:"."`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load reads an optional .env file and parses the environment into a Config.
// It does not validate; callers pick Validate or ValidateDiscord.
func Load(files ...string) (*Config, error) {
	// A missing .env is normal in containers; the environment still applies.
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed to take a snapshot.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.HTTPTimeout, validation.Required),
		validation.Field(&c.APIRateLimit, validation.Required, validation.Min(1.0)),
		validation.Field(&c.APIMaxRateLimit, validation.Required, validation.Min(c.APIRateLimit)),
		validation.Field(&c.MaxResponseSize, validation.Required, validation.Min(int64(1024))),
		validation.Field(&c.ReportDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("console", "json")),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateDiscord checks everything Validate does plus the Discord settings.
func (c *Config) ValidateDiscord() error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.ClientID, validation.Required, is.Digit),
		validation.Field(&c.GuildID, validation.Required, is.Digit),
		validation.Field(&c.DiscordToken, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid discord config: %w", err)
	}
	return nil
}
