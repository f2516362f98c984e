package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_KEY", "key")
	t.Setenv("BASE_URL", "https://api.example.com/v1")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5.0, cfg.APIRateLimit)
	assert.Equal(t, 10.0, cfg.APIMaxRateLimit)
	assert.Equal(t, int64(10<<20), cfg.MaxResponseSize)
	assert.Equal(t, ".", cfg.ReportDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "API_KEY=fromfile\nBASE_URL=https://file.example.com\nGUILD_ID=42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("API_KEY")
		os.Unsetenv("BASE_URL")
		os.Unsetenv("GUILD_ID")
	})
	// Keys already in the environment win over the file.
	t.Setenv("BASE_URL", "https://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.APIKey)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "42", cfg.GuildID)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIKey:          "key",
			BaseURL:         "https://api.example.com",
			HTTPTimeout:     time.Second,
			APIRateLimit:    5,
			APIMaxRateLimit: 10,
			MaxResponseSize: 1 << 20,
			ReportDir:       ".",
			LogLevel:        "info",
			LogFormat:       "console",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, true},
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, true},
		{"max rate below initial", func(c *Config) { c.APIMaxRateLimit = 2 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDiscord(t *testing.T) {
	cfg := &Config{
		APIKey:          "key",
		BaseURL:         "https://api.example.com",
		HTTPTimeout:     time.Second,
		APIRateLimit:    5,
		APIMaxRateLimit: 10,
		MaxResponseSize: 1 << 20,
		ReportDir:       ".",
	}
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateDiscord())

	cfg.ClientID = "123456789"
	cfg.GuildID = "987654321"
	cfg.DiscordToken = "token"
	assert.NoError(t, cfg.ValidateDiscord())

	cfg.GuildID = "not-a-snowflake"
	assert.Error(t, cfg.ValidateDiscord())
}
