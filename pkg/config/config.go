package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. It is built once at process
// start and passed by reference into the wizard; nothing in the core reads
// configuration through package state.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	WebhookURL      string
	Tiers           *TierConfig
	ConfigDir       string
}

// FileConfig represents the structure of ~/.scribewise/config.yaml
type FileConfig struct {
	APIKeys APIKeysConfig `yaml:"api_keys"`
	Webhook WebhookFile   `yaml:"webhook"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// WebhookFile holds the research endpoint from file.
type WebhookFile struct {
	URL string `yaml:"url"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		WebhookURL:      getEnvOrDefault("SCRIBEWISE_WEBHOOK_URL", fileConfig.Webhook.URL),
		ConfigDir:       configDir,
	}

	tiersPath := filepath.Join(configDir, "tiers.yaml")
	if _, err := os.Stat(tiersPath); err == nil {
		tiers, err := LoadTierConfig(tiersPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load tier config: %w", err)
		}
		cfg.Tiers = tiers
	} else {
		cfg.Tiers = DefaultTierConfig()
	}

	return cfg, nil
}

// LoadWithTierFile loads config with a specific tier file.
func LoadWithTierFile(tiersPath string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	tiers, err := LoadTierConfig(tiersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier config from %s: %w", tiersPath, err)
	}
	cfg.Tiers = tiers

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".scribewise")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
