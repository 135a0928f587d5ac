package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LISTEN_ADDR", "GEMINI_API_KEY", "YOUTUBE_API_KEY", "YTDLP_PATH"} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  addr: ":9000"
  stream_timeout: 2m
ai:
  gemini_api_key: file-key
  model: gemini-test
extractor:
  ytdlp_path: /opt/bin/yt-dlp
  timeout: 45s
  update_schedule: "0 0 4 * * *"
summary:
  default_language: French
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %s, want :9000", cfg.Server.Addr)
	}
	if cfg.Server.StreamTimeout != 2*time.Minute {
		t.Errorf("Server.StreamTimeout = %v, want 2m", cfg.Server.StreamTimeout)
	}
	if cfg.AI.GeminiAPIKey != "file-key" || cfg.AI.Model != "gemini-test" {
		t.Errorf("AI = %+v, want file-key/gemini-test", cfg.AI)
	}
	if cfg.Extractor.YtdlpPath != "/opt/bin/yt-dlp" || cfg.Extractor.Timeout != 45*time.Second {
		t.Errorf("Extractor = %+v", cfg.Extractor)
	}
	if cfg.Extractor.CaptionTimeout != 30*time.Second {
		t.Errorf("Extractor.CaptionTimeout = %v, want default 30s", cfg.Extractor.CaptionTimeout)
	}
	if cfg.Summary.DefaultLanguage != "French" {
		t.Errorf("Summary.DefaultLanguage = %s, want French", cfg.Summary.DefaultLanguage)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "ai:\n  model: gemini-test\n"))
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("YTDLP_PATH", "/usr/local/bin/yt-dlp")
	t.Setenv("LISTEN_ADDR", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.GeminiAPIKey != "env-key" {
		t.Errorf("AI.GeminiAPIKey = %s, want env-key", cfg.AI.GeminiAPIKey)
	}
	if cfg.YouTube.APIKey != "yt-key" {
		t.Errorf("YouTube.APIKey = %s, want yt-key", cfg.YouTube.APIKey)
	}
	if cfg.Extractor.YtdlpPath != "/usr/local/bin/yt-dlp" {
		t.Errorf("Extractor.YtdlpPath = %s", cfg.Extractor.YtdlpPath)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %s, want :7000", cfg.Server.Addr)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":5000" {
		t.Errorf("Server.Addr = %s, want :5000", cfg.Server.Addr)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Errorf("AI.Model = %s, want gemini-2.5-flash", cfg.AI.Model)
	}
	if cfg.Extractor.YtdlpPath != "yt-dlp" {
		t.Errorf("Extractor.YtdlpPath = %s, want yt-dlp", cfg.Extractor.YtdlpPath)
	}
	if cfg.Summary.DefaultLanguage != "English" {
		t.Errorf("Summary.DefaultLanguage = %s, want English", cfg.Summary.DefaultLanguage)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := Load(); err == nil {
			t.Error("Expected error for missing explicit config file")
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeConfig(t, "server: [unterminated"))
		if _, err := Load(); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("NegativeTimeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeConfig(t, "extractor:\n  timeout: -5s\n"))
		if _, err := Load(); err == nil {
			t.Error("Expected validation error for negative timeout")
		}
	})
}

func TestValidateAI(t *testing.T) {
	cfg := &Config{AI: AIConfig{Model: "gemini-2.5-flash"}}
	if err := cfg.ValidateAI(); !errors.Is(err, ErrMissingGeminiKey) {
		t.Errorf("ValidateAI() error = %v, want ErrMissingGeminiKey", err)
	}

	cfg.AI.GeminiAPIKey = "key"
	if err := cfg.ValidateAI(); err != nil {
		t.Errorf("ValidateAI() unexpected error: %v", err)
	}
}
