package settler

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/apptracker/settler/settler/database"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	DB     database.DBConfig `toml:"db"`
	OpenAI OpenAIConfig      `toml:"openai"`
	Settle SettleConfig      `toml:"settle"`
	Spaces SpacesConfig      `toml:"spaces"`
	Mongo  MongoConfig       `toml:"mongo"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SettleConfig struct {
	Timezone    string `toml:"timezone"`
	Concurrency int    `toml:"concurrency"`
}

type SpacesConfig struct {
	Key        string `toml:"key"`
	Secret     string `toml:"secret"`
	Region     string `toml:"region"`
	Bucket     string `toml:"bucket"`
	ReportRoot string `toml:"reportroot"`
}

// MongoConfig points at the legacy document store; only the migrate path uses it.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

func (c *Config) applyDefaults() {
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = 30
	}
	if c.Settle.Timezone == "" {
		c.Settle.Timezone = "Asia/Seoul"
	}
	if c.Settle.Concurrency <= 0 {
		c.Settle.Concurrency = 4
	}
}

// validate hard-fails the run on missing credentials before any processing.
func (c *Config) validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key not set (config [openai].api_key or OPENAI_API_KEY)")
	}
	if c.DB.Host == "" || c.DB.Database == "" {
		return fmt.Errorf("database configuration incomplete")
	}
	return nil
}

// ArchiveEnabled reports whether report archiving is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Spaces.Key != "" && c.Spaces.Secret != "" && c.Spaces.Bucket != ""
}
