package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig is a separate YAML file holding only OKX credentials, so the
// main config can be shared without them.
type SecretConfig struct {
	OKX struct {
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"passphrase"`
	} `yaml:"okx"`
}

// LoadSecretConfig loads credentials from path. A missing file is an error.
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}
	return &cfg, nil
}

// mergeSecrets copies non-empty secret fields into cfg.
func mergeSecrets(cfg *Config, sec *SecretConfig) {
	if sec.OKX.APIKey != "" {
		cfg.OKX.APIKey = sec.OKX.APIKey
	}
	if sec.OKX.APISecret != "" {
		cfg.OKX.APISecret = sec.OKX.APISecret
	}
	if sec.OKX.Passphrase != "" {
		cfg.OKX.Passphrase = sec.OKX.Passphrase
	}
}
