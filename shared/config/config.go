package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	AI        AIConfig        `yaml:"ai"`
	Extractor ExtractorConfig `yaml:"extractor"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Summary   SummaryConfig   `yaml:"summary"`
}

type ServerConfig struct {
	Addr          string        `yaml:"addr" env:"LISTEN_ADDR"`
	StreamTimeout time.Duration `yaml:"stream_timeout"`
}

type AIConfig struct {
	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model         string `yaml:"model"`
	VerifyOnStart bool   `yaml:"verify_on_start"`
}

type ExtractorConfig struct {
	YtdlpPath      string        `yaml:"ytdlp_path" env:"YTDLP_PATH"`
	Timeout        time.Duration `yaml:"timeout"`
	CaptionTimeout time.Duration `yaml:"caption_timeout"`
	// UpdateSchedule is a cron expression (with seconds) for yt-dlp self-updates. Empty disables it.
	UpdateSchedule string `yaml:"update_schedule"`
}

// YouTubeConfig enables the Data API as the title/thumbnail source when an API key is set
type YouTubeConfig struct {
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
}

type SummaryConfig struct {
	DefaultLanguage string `yaml:"default_language"`
}

var ErrMissingGeminiKey = errors.New("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")

// Load reads .env, then the YAML file named by CONFIG_FILE (default config.yaml).
// The default file is optional; an explicitly named one must exist.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		c.Extractor.YtdlpPath = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.StreamTimeout == 0 {
		c.Server.StreamTimeout = 5 * time.Minute
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Extractor.YtdlpPath == "" {
		c.Extractor.YtdlpPath = "yt-dlp"
	}
	if c.Extractor.Timeout == 0 {
		c.Extractor.Timeout = 60 * time.Second
	}
	if c.Extractor.CaptionTimeout == 0 {
		c.Extractor.CaptionTimeout = 30 * time.Second
	}
	if c.Summary.DefaultLanguage == "" {
		c.Summary.DefaultLanguage = "English"
	}
}

// Validate checks settings every command needs. The Gemini key is checked by ValidateAI.
func (c *Config) Validate() error {
	if c.Server.StreamTimeout < 0 {
		return fmt.Errorf("server.stream_timeout must not be negative")
	}
	if c.Extractor.Timeout < 0 || c.Extractor.CaptionTimeout < 0 {
		return fmt.Errorf("extractor timeouts must not be negative")
	}
	if c.Extractor.YtdlpPath == "" {
		return fmt.Errorf("extractor.ytdlp_path is required (set YTDLP_PATH or extractor.ytdlp_path)")
	}
	return nil
}

// ValidateAI checks the summarization settings required by serve and summarize
func (c *Config) ValidateAI() error {
	if c.AI.GeminiAPIKey == "" {
		return ErrMissingGeminiKey
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	return nil
}
