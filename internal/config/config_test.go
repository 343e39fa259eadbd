package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"artidicia/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("ARTIDICIA_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "artidicia")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Sampling.Strategy != "interval" || cfg.Sampling.Value != 2 {
		t.Fatalf("unexpected sampling defaults: %+v", cfg.Sampling)
	}
	if cfg.Stream.MinDetectLength != 20 {
		t.Fatalf("expected min detect length 20, got %d", cfg.Stream.MinDetectLength)
	}
	if cfg.Stream.JSONExtraction != "greedy" {
		t.Fatalf("expected greedy extraction default, got %q", cfg.Stream.JSONExtraction)
	}
	if cfg.Media.FallbackFPS != 30 {
		t.Fatalf("expected fallback fps 30, got %v", cfg.Media.FallbackFPS)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ARTIDICIA_API_KEY", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "~/data"
export_dir = "~/out"

[sampling]
strategy = "COUNT"
value = 8

[stream]
json_extraction = "balanced"

[logging]
format = "json"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.ExportDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected export dir: %q", cfg.Paths.ExportDir)
	}
	if cfg.Sampling.Strategy != "count" || cfg.Sampling.Value != 8 {
		t.Fatalf("unexpected sampling: %+v", cfg.Sampling)
	}
	if cfg.Stream.JSONExtraction != "balanced" {
		t.Fatalf("unexpected extraction: %q", cfg.Stream.JSONExtraction)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestConfigFileAPIKeyWinsOverEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARTIDICIA_API_KEY", "env-key")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[llm]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected config file key, got %q", cfg.LLM.APIKey)
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	os.Unsetenv("ARTIDICIA_API_KEY")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "openai-key" {
		t.Fatalf("expected OPENAI_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[sampling]") {
		t.Fatal("sample config missing sampling section")
	}

	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if cfg.Stream.MinDetectLength != 20 {
		t.Fatalf("sample min_detect_length = %d", cfg.Stream.MinDetectLength)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"strategy", func(c *config.Config) { c.Sampling.Strategy = "random" }, "sampling.strategy"},
		{"interval value", func(c *config.Config) { c.Sampling.Value = 0 }, "sampling.value"},
		{"count fractional", func(c *config.Config) { c.Sampling.Strategy = "count"; c.Sampling.Value = 2.5 }, "sampling.value"},
		{"jpeg quality", func(c *config.Config) { c.Media.JPEGQuality = 101 }, "media.jpeg_quality"},
		{"max dimension", func(c *config.Config) { c.Media.MaxDimension = -1 }, "media.max_dimension"},
		{"temperature", func(c *config.Config) { c.LLM.Temperature = -1 }, "llm.temperature"},
		{"extraction", func(c *config.Config) { c.Stream.JSONExtraction = "lazy" }, "stream.json_extraction"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
