package preflight

import (
	"context"
	"strings"

	"artidicia/internal/config"
	"artidicia/internal/services/llm"
)

// LLMConfig maps the [llm] section onto the client configuration.
func LLMConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTemperature: cfg.LLM.MaxTemperature,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}
}

// LLMStatusFromConfig evaluates endpoint status from config and connectivity.
func LLMStatusFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Generation endpoint"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.LLM.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		return Result{Name: name, Detail: "Missing model"}
	}
	return CheckLLM(ctx, name, LLMConfig(cfg))
}
