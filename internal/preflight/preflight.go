package preflight

import (
	"context"
	"strings"

	"artidicia/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects optional checks.
type Options struct {
	// SkipLLM omits the endpoint check (offline commands).
	SkipLLM bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if strings.TrimSpace(cfg.Paths.ExportDir) != "" {
		results = append(results, CheckCreatable("Export directory", cfg.Paths.ExportDir))
	}
	results = append(results, CheckPromptCatalog(cfg.Paths.PromptsFile))
	if !opts.SkipLLM {
		results = append(results, LLMStatusFromConfig(ctx, cfg))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
