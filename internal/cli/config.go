package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/ledgerrules/internal/money"
)

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "RULECTL_CONFIG"

// Config represents the CLI configuration
type Config struct {
	DefaultProfile string             `yaml:"default_profile"`
	NumberFormat   string             `yaml:"number_format,omitempty"`
	Language       string             `yaml:"language,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one ledgerrules server the CLI can talk to.
type Profile struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// Format returns the configured number format, or the default.
func (c *Config) Format() money.NumberFormat {
	return money.ParseNumberFormat(c.NumberFormat)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ledgerrules", "config.yaml"), nil
}

// LoadConfig loads the configuration from file. A missing file yields an
// empty config.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{
				DefaultProfile: "local",
				Profiles:       make(map[string]Profile),
			}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProfile resolves the server to talk to.
// Priority: command flags > environment variables > config file
// Returns the profile and its effective name.
func GetProfile(name, baseURLFlag, apiKeyFlag string) (*Profile, string, error) {
	envBaseURL := os.Getenv("LEDGERRULES_BASE_URL")
	envAPIKey := os.Getenv("LEDGERRULES_API_KEY")

	cfg, err := LoadConfig()
	if err != nil {
		return nil, "", err
	}

	if name == "" {
		name = cfg.DefaultProfile
	}
	p := cfg.Profiles[name]

	if baseURLFlag != "" {
		p.BaseURL = baseURLFlag
	} else if envBaseURL != "" {
		p.BaseURL = envBaseURL
	}

	if apiKeyFlag != "" {
		p.APIKey = apiKeyFlag
	} else if envAPIKey != "" {
		p.APIKey = envAPIKey
	}

	if p.BaseURL == "" {
		return nil, "", fmt.Errorf("base_url must be configured for profile '%s' (or use --base-url)", name)
	}

	return &p, name, nil
}

// InitConfig creates a default config file
func InitConfig() error {
	cfg := &Config{
		DefaultProfile: "local",
		NumberFormat:   string(money.DefaultFormat),
		Language:       "en",
		Profiles: map[string]Profile{
			"local": {
				BaseURL: "http://localhost:8080",
				APIKey:  "admin-123",
			},
			"prod": {
				BaseURL: "https://rules.example.com",
			},
		},
	}

	return SaveConfig(cfg)
}
