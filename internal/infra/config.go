package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent on every outbound HTTP and WebSocket handshake.
const DefaultUserAgent = "tradelink/1.0 (+https://github.com/tradelink/tradelink_go)"

// Config holds all application settings.
// Secrets may come from the YAML file but environment variables take precedence.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	OKX struct {
		RestURL    string `yaml:"rest_url"`
		WSURL      string `yaml:"ws_private_url"`
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"passphrase"`

		// SecretsFile points at a SecretConfig YAML merged over these fields.
		SecretsFile string `yaml:"secrets_file"`
	} `yaml:"okx"`

	Gateway struct {
		URL              string `yaml:"url"`
		PollIntervalMS   int    `yaml:"poll_interval_ms"`
		PingTimeoutMS    int    `yaml:"ping_timeout_ms"`
		RequestTimeoutMS int    `yaml:"request_timeout_ms"`
	} `yaml:"gateway"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// PollInterval is the pause between gateway probes.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Gateway.PollIntervalMS) * time.Millisecond
}

// PingTimeout bounds a single gateway probe.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.Gateway.PingTimeoutMS) * time.Millisecond
}

// RequestTimeout bounds every other gateway call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Gateway.RequestTimeoutMS) * time.Millisecond
}

// DefaultConfig returns the settings used when a field is left empty.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = AppName
	cfg.App.Version = "dev"
	cfg.OKX.RestURL = "https://www.okx.com"
	cfg.OKX.WSURL = "wss://ws.okx.com:8443/ws/v5/private"
	cfg.Gateway.URL = "http://localhost:15888"
	cfg.Gateway.PollIntervalMS = 2000
	cfg.Gateway.PingTimeoutMS = 1000
	cfg.Gateway.RequestTimeoutMS = 10000
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads path over DefaultConfig, applies .env and environment
// overrides, then validates. A missing .env is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.OKX.SecretsFile != "" {
		sec, err := LoadSecretConfig(cfg.OKX.SecretsFile)
		if err != nil {
			return nil, err
		}
		mergeSecrets(cfg, sec)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env", slog.Any("error", err))
	}
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.OKX.RestURL, "https://") && !strings.HasPrefix(c.OKX.RestURL, "http://") {
		return fmt.Errorf("invalid OKX REST URL: %s", c.OKX.RestURL)
	}
	if c.OKX.WSURL != "" && !strings.HasPrefix(c.OKX.WSURL, "wss://") && !strings.HasPrefix(c.OKX.WSURL, "ws://") {
		return fmt.Errorf("invalid OKX WS URL: %s", c.OKX.WSURL)
	}
	if !strings.HasPrefix(c.Gateway.URL, "https://") && !strings.HasPrefix(c.Gateway.URL, "http://") {
		return fmt.Errorf("invalid gateway URL: %s", c.Gateway.URL)
	}
	if c.Gateway.PollIntervalMS <= 0 {
		return fmt.Errorf("gateway poll interval must be positive")
	}
	if c.Gateway.PingTimeoutMS <= 0 {
		return fmt.Errorf("gateway ping timeout must be positive")
	}
	if c.Gateway.RequestTimeoutMS <= 0 {
		return fmt.Errorf("gateway request timeout must be positive")
	}
	return nil
}

// HasCredentials reports whether all three OKX secrets are present.
func (c *Config) HasCredentials() bool {
	return c.OKX.APIKey != "" && c.OKX.APISecret != "" && c.OKX.Passphrase != ""
}

// overrideWithEnv lets environment variables win over the config file.
func overrideWithEnv(cfg *Config) {
	if cfg.OKX.APISecret != "" && cfg.OKX.SecretsFile == "" {
		slog.Warn("API secret found in config file; prefer TRADELINK_OKX_SECRET")
	}

	if v := os.Getenv("TRADELINK_OKX_KEY"); v != "" {
		cfg.OKX.APIKey = v
	}
	if v := os.Getenv("TRADELINK_OKX_SECRET"); v != "" {
		cfg.OKX.APISecret = v
	}
	if v := os.Getenv("TRADELINK_OKX_PASSPHRASE"); v != "" {
		cfg.OKX.Passphrase = v
	}
	if v := os.Getenv("TRADELINK_GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv("TRADELINK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
